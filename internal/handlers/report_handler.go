package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/report"
	"github.com/famechasepro/genewell-new/internal/services"
	adminws "github.com/famechasepro/genewell-new/internal/websocket"
)

type reportPipeline interface {
	Generate(ctx context.Context, orderID string) (*models.Report, error)
	Download(ctx context.Context, orderID string) (string, *report.RenderedReport, error)
}

type ReportHandler struct {
	service reportPipeline
	feed    activityFeed
}

func NewReportHandler(service reportPipeline, feed activityFeed) *ReportHandler {
	return &ReportHandler{service: service, feed: feed}
}

func (h *ReportHandler) GenerateReport(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order id is required"})
	}

	stored, err := h.service.Generate(c.Context(), orderID)
	if err != nil {
		return h.mapPipelineError(c, err)
	}

	if h.feed != nil {
		h.feed.Publish(adminws.EventReportGenerated, "", stored.OrderID, 0)
	}

	return c.JSON(fiber.Map{"report": stored})
}

func (h *ReportHandler) DownloadReport(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order id is required"})
	}

	signedURL, rendered, err := h.service.Download(c.Context(), orderID)
	if err != nil {
		return h.mapPipelineError(c, err)
	}
	if signedURL != "" {
		return c.Redirect(signedURL, fiber.StatusFound)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	return c.Send(rendered.Bytes)
}

// mapPipelineError keeps the two user-visible failure kinds distinct:
// missing prerequisite data (finish the quiz / pay first) versus a
// generation failure worth retrying.
func (h *ReportHandler) mapPipelineError(c *fiber.Ctx, err error) error {
	var validationErr *report.ValidationError
	var renderErr *report.RenderError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	case errors.Is(err, services.ErrOrderNotPaid):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Order is not paid"})
	case errors.Is(err, services.ErrProfileMissing), errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete the quiz before generating a report"})
	case errors.As(err, &renderErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Report generation failed, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}
}
