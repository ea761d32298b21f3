package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/famechasepro/genewell-new/internal/models"
)

// Fixed offsets from the preferred wake time, in minutes.
const (
	breakfastOffsetMin = 60
	lunchOffsetMin     = 6 * 60
	dinnerOffsetMin    = 11 * 60
)

// supplementCatalog maps a priority seed to the stack entry rendered in the
// report.
var supplementCatalog = map[string]models.SupplementRecommendation{
	"vitamin_d3": {Name: "Vitamin D3", Reason: "baseline micronutrient support", Dosage: "2000 IU with breakfast"},
	"omega_3":    {Name: "Omega-3 (EPA/DHA)", Reason: "inflammation and cardiovascular support", Dosage: "1000 mg with a meal"},
	"magnesium":  {Name: "Magnesium Glycinate", Reason: "nervous-system recovery and sleep quality", Dosage: "300 mg before bed"},
	"probiotic":  {Name: "Multi-strain Probiotic", Reason: "gut flora support for digestive comfort", Dosage: "1 capsule on an empty stomach"},
	"b_complex":  {Name: "B-Complex", Reason: "cellular energy production", Dosage: "1 capsule with breakfast"},
	"collagen":   {Name: "Collagen Peptides", Reason: "skin elasticity and repair", Dosage: "10 g in any beverage"},
}

var workoutTemplates = map[string]string{
	"low":      "Your current activity base is light, so the plan starts with low-impact sessions: daily walks and two short strength circuits per week, building consistency before intensity.",
	"moderate": "You already move regularly. The plan alternates strength and conditioning across the week, with one full recovery day to consolidate gains.",
	"high":     "Your activity level is high, so the plan focuses on structured progression: periodized strength blocks with deliberate deload weeks to keep adaptation ahead of fatigue.",
}

var sleepTemplates = map[string]string{
	"low":      "Your sleep markers point to disrupted recovery. The protocol anchors a fixed wake time, moves screens out of the last hour, and keeps the bedroom cool and dark.",
	"moderate": "Your sleep is serviceable but inconsistent. The protocol tightens your sleep window and front-loads caffeine before noon to deepen the second half of the night.",
	"high":     "Your sleep foundation is strong. The protocol protects it: keep the current schedule on weekends and treat late meals as the main remaining risk.",
}

var stressTemplates = map[string]string{
	"low":      "Your resilience markers are low right now. The plan schedules two daily decompression breaks and a ten-minute breathing practice to move your baseline before adding anything else.",
	"moderate": "Your stress load is managed but close to the line. A short evening wind-down and one weekly screen-free block keep it from creeping upward.",
	"high":     "You handle pressure well. Keep the habits that got you here and use the weekly check-in to catch drift early.",
}

// DeriveInsights maps a profile into the human-facing recommendations.
// Pure function of the profile; a valid profile cannot fail.
func DeriveInsights(p *models.PersonalizationProfile) *models.PersonalizationInsights {
	wake, _ := parseClock(p.WakeTime)

	return &models.PersonalizationInsights{
		MetabolicNarrative: metabolicNarrative(p),

		BreakfastTime: formatClock(wake + breakfastOffsetMin),
		LunchTime:     formatClock(wake + lunchOffsetMin),
		DinnerTime:    formatClock(wake + dinnerOffsetMin),

		CalorieMin: p.TDEE - 200,
		CalorieMax: p.TDEE + 150,
		Macros:     macroPercentages(p),

		Supplements: supplementStack(p.SupplementPriority),

		WorkoutStrategy: workoutTemplates[scoreBucket(p.ActivityScore)],
		SleepStrategy:   sleepTemplates[scoreBucket(p.SleepScore)],
		StressStrategy:  stressTemplates[scoreBucket(p.StressScore)],
	}
}

// macroPercentages recomputes percentages from the gram targets so the
// report always reflects the numbers it prints elsewhere.
func macroPercentages(p *models.PersonalizationProfile) models.MacroSplit {
	if p.TDEE <= 0 {
		return models.MacroSplit{}
	}
	return models.MacroSplit{
		ProteinPct: int(math.Round(float64(p.ProteinG) * 4 / float64(p.TDEE) * 100)),
		CarbsPct:   int(math.Round(float64(p.CarbsG) * 4 / float64(p.TDEE) * 100)),
		FatsPct:    int(math.Round(float64(p.FatsG) * 9 / float64(p.TDEE) * 100)),
	}
}

func metabolicNarrative(p *models.PersonalizationProfile) string {
	pace := "steady"
	if p.TDEE >= 2400 {
		pace = "fast"
	} else if p.TDEE < 1800 {
		pace = "conservative"
	}
	return fmt.Sprintf(
		"At %d, your body burns roughly %d kcal at rest and about %d kcal across a typical day, a %s metabolic rate for your build. The targets below are calibrated to that number, not to a population average.",
		p.Age, p.BMR, p.TDEE, pace,
	)
}

func supplementStack(priority []string) []models.SupplementRecommendation {
	stack := make([]models.SupplementRecommendation, 0, len(priority))
	for _, key := range priority {
		if entry, ok := supplementCatalog[key]; ok {
			stack = append(stack, entry)
		}
	}
	return stack
}

func scoreBucket(score int) string {
	switch {
	case score < 40:
		return "low"
	case score < 70:
		return "moderate"
	default:
		return "high"
	}
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func formatClock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
