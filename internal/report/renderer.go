package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/famechasepro/genewell-new/internal/models"
)

type RenderedReport struct {
	Bytes     []byte
	Filename  string
	PageCount int
}

// Render lays the composed sections onto paginated output. The cover gets
// its own page; everything after flows, with the builder inserting page
// breaks as blocks are measured. Output is stable for identical input.
func Render(sections []Section, p *models.PersonalizationProfile, cfg models.ReportConfiguration) (*RenderedReport, error) {
	return RenderWith(NewPDFBuilder(), sections, p, cfg)
}

// RenderWith renders against a caller-supplied builder.
func RenderWith(builder DocumentBuilder, sections []Section, p *models.PersonalizationProfile, cfg models.ReportConfiguration) (*RenderedReport, error) {
	for i, section := range sections {
		if i > 0 && sections[i-1].Kind == SectionCover {
			builder.PageBreak()
		}
		for _, block := range section.Blocks {
			drawBlock(builder, block)
		}
	}

	payload, err := builder.Output()
	if err != nil {
		return nil, &RenderError{Err: err}
	}

	return &RenderedReport{
		Bytes:     payload,
		Filename:  Filename(p.Name, cfg.Tier, cfg.OrderID),
		PageCount: builder.PageCount(),
	}, nil
}

func drawBlock(builder DocumentBuilder, block Block) {
	switch block.Kind {
	case BlockHeading:
		builder.AddHeading(block.Text)
	case BlockParagraph:
		builder.AddParagraph(block.Text)
	case BlockBulletList:
		builder.AddBulletList(block.Items)
	case BlockLabeledValue:
		builder.AddLabeledValue(block.Label, block.Value)
	}
}

var nonWordChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Filename derives the deterministic download name:
// <sanitized-name>_<tier>_blueprint_<orderId>.pdf
func Filename(name string, tier models.Tier, orderID string) string {
	return fmt.Sprintf("%s_%s_blueprint_%s.pdf", sanitizeNamePart(name), tier, orderID)
}

func sanitizeNamePart(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.Join(strings.Fields(value), "_")
	value = nonWordChars.ReplaceAllString(value, "")
	value = strings.Trim(value, "_")
	// Names outside the ASCII range sanitize away entirely.
	if value == "" {
		return "report"
	}
	return value
}
