package report

import (
	"fmt"
	"strings"

	"github.com/famechasepro/genewell-new/internal/models"
)

type SectionKind string

const (
	SectionCover            SectionKind = "cover"
	SectionTopActions       SectionKind = "top-actions"
	SectionExecutiveSummary SectionKind = "executive-summary"
	SectionScienceUpdates   SectionKind = "science-updates"
	SectionMetabolicProfile SectionKind = "metabolic-profile"
	SectionNutritionPlan    SectionKind = "nutrition-plan"
	SectionMealPlanDetail   SectionKind = "meal-plan-detail"
	SectionSleepProtocol    SectionKind = "sleep-protocol"
	SectionMovementPlan     SectionKind = "movement-plan"
	SectionStressManagement SectionKind = "stress-management"
	SectionSupplements      SectionKind = "supplements"
	SectionProgressTracking SectionKind = "progress-tracking"
	SectionActionPlan       SectionKind = "action-plan"
	SectionClosing          SectionKind = "closing"
)

// sectionOrder is the fixed, total ordering of core sections. Skipped
// sections never change the relative order of the rest.
var sectionOrder = []SectionKind{
	SectionCover,
	SectionTopActions,
	SectionExecutiveSummary,
	SectionScienceUpdates,
	SectionMetabolicProfile,
	SectionNutritionPlan,
	SectionMealPlanDetail,
	SectionSleepProtocol,
	SectionMovementPlan,
	SectionStressManagement,
	SectionSupplements,
	SectionProgressTracking,
	SectionActionPlan,
	SectionClosing,
}

// sectionMinTier is the static eligibility table: the minimum purchased
// tier at which each section appears.
var sectionMinTier = map[SectionKind]models.Tier{
	SectionCover:            models.TierFree,
	SectionTopActions:       models.TierFree,
	SectionExecutiveSummary: models.TierFree,
	SectionScienceUpdates:   models.TierPremium,
	SectionMetabolicProfile: models.TierEssential,
	SectionNutritionPlan:    models.TierEssential,
	SectionMealPlanDetail:   models.TierPremium,
	SectionSleepProtocol:    models.TierEssential,
	SectionMovementPlan:     models.TierEssential,
	SectionStressManagement: models.TierEssential,
	SectionSupplements:      models.TierPremium,
	SectionProgressTracking: models.TierEssential,
	SectionActionPlan:       models.TierEssential,
	SectionClosing:          models.TierPremium,
}

// addOnAnchors maps a purchasable add-on to the core section its extra
// content is appended after. New add-ons need an entry here, a slot in
// addOnOrder and a builder case in buildAddOnSection.
var addOnAnchors = map[string]SectionKind{
	"grocery-list": SectionNutritionPlan,
}

var addOnOrder = []string{"grocery-list"}

type BlockKind string

const (
	BlockHeading      BlockKind = "heading"
	BlockParagraph    BlockKind = "paragraph"
	BlockBulletList   BlockKind = "bullets"
	BlockLabeledValue BlockKind = "labeled-value"
)

type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
	Label string
	Value string
}

type Section struct {
	Kind   SectionKind
	Title  string
	Blocks []Block
}

func heading(text string) Block { return Block{Kind: BlockHeading, Text: text} }

func paragraph(text string) Block { return Block{Kind: BlockParagraph, Text: text} }

func bullets(items ...string) Block { return Block{Kind: BlockBulletList, Items: items} }

func labeled(label, v string) Block { return Block{Kind: BlockLabeledValue, Label: label, Value: v} }

// Compose produces the ordered section sequence for one report. Inclusion
// is decided purely by the eligibility table against cfg.Tier; add-ons
// inject extra sections directly after their anchor.
func Compose(p *models.PersonalizationProfile, insights *models.PersonalizationInsights, cfg models.ReportConfiguration) []Section {
	selectedAddOns := make(map[string]struct{}, len(cfg.AddOns))
	for _, addOn := range cfg.AddOns {
		selectedAddOns[addOn] = struct{}{}
	}

	sections := make([]Section, 0, len(sectionOrder))
	for _, kind := range sectionOrder {
		if !cfg.Tier.AtLeast(sectionMinTier[kind]) {
			continue
		}
		sections = append(sections, buildSection(kind, p, insights, cfg))

		for _, addOn := range sortedAddOns(selectedAddOns) {
			if addOnAnchors[addOn] != kind {
				continue
			}
			if extra, ok := buildAddOnSection(addOn, p, insights); ok {
				sections = append(sections, extra)
			}
		}
	}
	return sections
}

// sortedAddOns keeps add-on injection order deterministic regardless of
// the order the identifiers arrived in.
func sortedAddOns(selected map[string]struct{}) []string {
	ordered := make([]string, 0, len(selected))
	for _, addOn := range addOnOrder {
		if _, ok := selected[addOn]; ok {
			ordered = append(ordered, addOn)
		}
	}
	return ordered
}

func buildSection(kind SectionKind, p *models.PersonalizationProfile, in *models.PersonalizationInsights, cfg models.ReportConfiguration) Section {
	switch kind {
	case SectionCover:
		return Section{Kind: kind, Title: "Your Wellness Blueprint", Blocks: []Block{
			heading("Your Wellness Blueprint"),
			paragraph(fmt.Sprintf("Prepared for %s", p.Name)),
			labeled("Plan", titleCase(string(cfg.Tier))),
			labeled("Generated", cfg.GeneratedAt.UTC().Format("2 January 2006")),
			labeled("Report ID", cfg.OrderID),
		}}

	case SectionTopActions:
		return Section{Kind: kind, Title: "Your Top 3 Actions", Blocks: []Block{
			heading("Your Top 3 Actions"),
			paragraph("Start here. These three changes carry the most leverage for your profile."),
			bullets(topActions(p, in)...),
		}}

	case SectionExecutiveSummary:
		return Section{Kind: kind, Title: "Executive Summary", Blocks: []Block{
			heading("Executive Summary"),
			paragraph(in.MetabolicNarrative),
			paragraph(fmt.Sprintf(
				"Across the four dimensions we score, you land at stress %d, sleep %d, activity %d and energy %d out of 100. The sections that follow turn those numbers into a daily structure.",
				p.StressScore, p.SleepScore, p.ActivityScore, p.EnergyScore,
			)),
		}}

	case SectionScienceUpdates:
		return Section{Kind: kind, Title: "What the Science Says", Blocks: []Block{
			heading("What the Science Says"),
			paragraph("Recent findings relevant to your profile, summarized without the jargon."),
			bullets(
				"Protein distribution across meals beats total intake alone for preserving lean mass.",
				"Morning daylight exposure within an hour of waking measurably advances sleep onset.",
				"Consistent meal timing improves glucose response independent of food choice.",
			),
		}}

	case SectionMetabolicProfile:
		return Section{Kind: kind, Title: "Your Metabolic Profile", Blocks: []Block{
			heading("Your Metabolic Profile"),
			labeled("Basal metabolic rate", fmt.Sprintf("%d kcal/day", p.BMR)),
			labeled("Daily energy expenditure", fmt.Sprintf("%d kcal/day", p.TDEE)),
			labeled("Protein target", fmt.Sprintf("%d g/day", p.ProteinG)),
			labeled("Carbohydrate target", fmt.Sprintf("%d g/day", p.CarbsG)),
			labeled("Fat target", fmt.Sprintf("%d g/day", p.FatsG)),
			paragraph(in.MetabolicNarrative),
		}}

	case SectionNutritionPlan:
		return Section{Kind: kind, Title: "Nutrition Plan", Blocks: []Block{
			heading("Nutrition Plan"),
			labeled("Daily calorie range", fmt.Sprintf("%d - %d kcal", in.CalorieMin, in.CalorieMax)),
			labeled("Macro split", fmt.Sprintf("%d%% protein / %d%% carbs / %d%% fats",
				in.Macros.ProteinPct, in.Macros.CarbsPct, in.Macros.FatsPct)),
			labeled("Meals per day", fmt.Sprintf("%d", p.MealFrequency)),
			bullets(
				fmt.Sprintf("Breakfast around %s", in.BreakfastTime),
				fmt.Sprintf("Lunch around %s", in.LunchTime),
				fmt.Sprintf("Dinner around %s", in.DinnerTime),
			),
		}}

	case SectionMealPlanDetail:
		return Section{Kind: kind, Title: "Meal Plan In Detail", Blocks: buildMealPlanBlocks(p, in)}

	case SectionSleepProtocol:
		return Section{Kind: kind, Title: "Sleep Optimization Protocol", Blocks: []Block{
			heading("Sleep Optimization Protocol"),
			paragraph(in.SleepStrategy),
			bullets(
				fmt.Sprintf("Fixed wake time at %s, weekends included", p.WakeTime),
				"No caffeine within 9 hours of bedtime",
				fmt.Sprintf("Last full meal by %s", in.DinnerTime),
			),
		}}

	case SectionMovementPlan:
		return Section{Kind: kind, Title: "Movement Plan", Blocks: []Block{
			heading("Movement Plan"),
			paragraph(in.WorkoutStrategy),
			labeled("Recommended intensity", titleCase(p.ExerciseIntensity)),
		}}

	case SectionStressManagement:
		return Section{Kind: kind, Title: "Stress Management", Blocks: []Block{
			heading("Stress Management"),
			paragraph(in.StressStrategy),
		}}

	case SectionSupplements:
		return Section{Kind: kind, Title: "Supplement Stack", Blocks: buildSupplementBlocks(in)}

	case SectionProgressTracking:
		return Section{Kind: kind, Title: "Tracking Your Progress", Blocks: []Block{
			heading("Tracking Your Progress"),
			paragraph("Measure weekly, adjust monthly. Small consistent signals beat daily noise."),
			bullets(
				"Morning weight, averaged over the week",
				"Energy score, self-rated each Sunday",
				"Workout sessions completed vs planned",
			),
		}}

	case SectionActionPlan:
		return Section{Kind: kind, Title: "Your 30-Day Action Plan", Blocks: []Block{
			heading("Your 30-Day Action Plan"),
			bullets(
				"Week 1: lock in wake time and meal times",
				"Week 2: hit the protein target on 5 of 7 days",
				fmt.Sprintf("Week 3: complete every planned %s-intensity session", p.ExerciseIntensity),
				"Week 4: review scores and book the recommended tests",
			),
			paragraph(fmt.Sprintf("Recommended tests to discuss with your physician: %s.",
				strings.Join(humanizeAll(p.RecommendedTests), ", "))),
		}}

	case SectionClosing:
		return Section{Kind: kind, Title: "A Final Word", Blocks: []Block{
			heading("A Final Word"),
			paragraph(fmt.Sprintf(
				"%s, this blueprint is a starting structure, not a verdict. Re-take the assessment in 90 days and the plan will move with you.",
				firstName(p.Name),
			)),
		}}
	}

	return Section{Kind: kind, Title: string(kind)}
}

func buildAddOnSection(addOn string, p *models.PersonalizationProfile, in *models.PersonalizationInsights) (Section, bool) {
	switch addOn {
	case "grocery-list":
		return Section{Kind: SectionKind("addon-" + addOn), Title: "Weekly Grocery List", Blocks: []Block{
			heading("Weekly Grocery List"),
			paragraph(fmt.Sprintf("Staples sized for a %s eating pattern at %d-%d kcal/day.",
				strings.ReplaceAll(p.DietPreference, "_", " "), in.CalorieMin, in.CalorieMax)),
			bullets(groceryStaples(p.DietPreference)...),
		}}, true
	}
	return Section{}, false
}

func buildMealPlanBlocks(p *models.PersonalizationProfile, in *models.PersonalizationInsights) []Block {
	meals := p.MealFrequency
	if meals <= 0 {
		meals = 3
	}
	perMealProtein := p.ProteinG / meals
	blocks := []Block{
		heading("Meal Plan In Detail"),
		paragraph(fmt.Sprintf(
			"Each of your %d daily meals targets roughly %d g of protein so the day's total arrives without a single oversized sitting.",
			meals, perMealProtein,
		)),
		labeled("Breakfast", fmt.Sprintf("%s - protein anchor plus slow carbs", in.BreakfastTime)),
		labeled("Lunch", fmt.Sprintf("%s - largest meal of the day", in.LunchTime)),
		labeled("Dinner", fmt.Sprintf("%s - lighter, at least 3 hours before bed", in.DinnerTime)),
	}
	if len(p.FoodIntolerances) > 0 {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"All suggestions exclude your flagged intolerances: %s.",
			strings.Join(humanizeAll(p.FoodIntolerances), ", "),
		)))
	}
	return blocks
}

func buildSupplementBlocks(in *models.PersonalizationInsights) []Block {
	items := make([]string, 0, len(in.Supplements))
	for _, s := range in.Supplements {
		items = append(items, fmt.Sprintf("%s - %s (%s)", s.Name, s.Dosage, s.Reason))
	}
	return []Block{
		heading("Supplement Stack"),
		paragraph("Ordered by priority for your profile. Introduce one at a time, a week apart."),
		bullets(items...),
	}
}

func topActions(p *models.PersonalizationProfile, in *models.PersonalizationInsights) []string {
	type scored struct {
		score  int
		action string
	}
	candidates := []scored{
		{p.SleepScore, fmt.Sprintf("Anchor your wake time at %s every day", p.WakeTime)},
		{p.StressScore, "Block two 10-minute decompression breaks into your calendar"},
		{p.ActivityScore, fmt.Sprintf("Schedule your %s-intensity sessions for the week ahead", p.ExerciseIntensity)},
		{p.EnergyScore, fmt.Sprintf("Front-load protein: %d g before %s", p.ProteinG/2, in.LunchTime)},
	}
	// Lowest scores first: the weakest dimensions carry the most leverage.
	// Equal scores keep the declaration order, so output stays stable.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score < candidates[i].score {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	actions := make([]string, 0, 3)
	for _, c := range candidates[:3] {
		actions = append(actions, c.action)
	}
	return actions
}

func groceryStaples(diet string) []string {
	switch diet {
	case "vegan":
		return []string{"Tofu and tempeh", "Lentils and chickpeas", "Rolled oats", "Mixed nuts and seeds", "Leafy greens and seasonal vegetables"}
	case "vegetarian":
		return []string{"Paneer and Greek yogurt", "Lentils and chickpeas", "Eggs", "Rolled oats", "Leafy greens and seasonal vegetables"}
	case "keto", "low_carb":
		return []string{"Eggs and fatty fish", "Chicken thighs", "Avocados and olive oil", "Nuts and seeds", "Low-carb vegetables"}
	default:
		return []string{"Chicken breast and fish", "Eggs and Greek yogurt", "Rice and rolled oats", "Olive oil and nuts", "Leafy greens and seasonal vegetables"}
	}
}

func humanizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ReplaceAll(v, "_", " "))
	}
	return out
}

func titleCase(value string) string {
	value = strings.ReplaceAll(value, "_", " ")
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
