package report

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/famechasepro/genewell-new/internal/models"
)

// activityMultipliers maps weekly exercise frequency buckets to the TDEE
// multiplier applied on top of BMR.
var activityMultipliers = []struct {
	minDays    int
	multiplier float64
}{
	{6, 1.725},
	{4, 1.55},
	{2, 1.375},
	{0, 1.2},
}

// macroSplits maps dietary preference to percentage of TDEE assigned to
// protein/carbs/fats when deriving gram targets.
var macroSplits = map[string][3]int{
	"balanced":     {30, 40, 30},
	"keto":         {25, 10, 65},
	"low_carb":     {30, 25, 45},
	"high_protein": {35, 35, 30},
	"vegetarian":   {25, 50, 25},
	"vegan":        {25, 50, 25},
}

// likert weights per scored dimension. Keys marked inverted are
// negatively phrased questions (a 5 means "bad"), flipped before scoring.
var stressWeights = []likertWeight{
	{key: "stress_level", weight: 2, inverted: true},
	{key: "work_pressure", weight: 1, inverted: true},
	{key: "relaxation_time", weight: 1},
}

var sleepWeights = []likertWeight{
	{key: "sleep_quality", weight: 2},
	{key: "sleep_duration", weight: 1},
	{key: "wake_freshness", weight: 1},
}

var energyWeights = []likertWeight{
	{key: "morning_energy", weight: 2},
	{key: "afternoon_dip", weight: 1, inverted: true},
	{key: "overall_energy", weight: 2},
}

type likertWeight struct {
	key      string
	weight   int
	inverted bool
}

// Analyze transforms raw quiz answers into a PersonalizationProfile.
// Pure and deterministic: identical answers always yield an identical
// profile. Returns *ValidationError when required fields are absent or
// malformed.
func Analyze(answers models.QuizAnswers) (*models.PersonalizationProfile, error) {
	if len(answers) == 0 {
		return nil, validationErr("answers", "are required")
	}

	name := strings.TrimSpace(stringAnswer(answers, "name"))
	if name == "" {
		return nil, validationErr("name", "is required")
	}

	age, ok := intAnswer(answers, "age")
	if !ok {
		return nil, validationErr("age", "must be a number")
	}
	if age <= 0 || age > 120 {
		return nil, validationErr("age", "must be between 1 and 120")
	}

	gender, err := parseGender(stringAnswer(answers, "gender"))
	if err != nil {
		return nil, err
	}

	heightCM, ok := floatAnswer(answers, "height_cm")
	if !ok || heightCM < 50 || heightCM > 250 {
		return nil, validationErr("height_cm", "must be between 50 and 250")
	}
	weightKG, ok := floatAnswer(answers, "weight_kg")
	if !ok || weightKG < 20 || weightKG > 300 {
		return nil, validationErr("weight_kg", "must be between 20 and 300")
	}

	exerciseDays, ok := intAnswer(answers, "exercise_frequency")
	if !ok || exerciseDays < 0 || exerciseDays > 7 {
		return nil, validationErr("exercise_frequency", "must be between 0 and 7")
	}

	bmr := computeBMR(gender, age, weightKG, heightCM)
	tdee := int(math.Round(float64(bmr) * multiplierForDays(exerciseDays)))

	diet := normalizeValue(stringAnswer(answers, "diet_preference"))
	if _, known := macroSplits[diet]; !known {
		diet = "balanced"
	}
	proteinG, carbsG, fatsG := macroGrams(tdee, diet)

	profile := &models.PersonalizationProfile{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(stringAnswer(answers, "email"))),
		Age:      age,
		Gender:   gender,
		HeightCM: heightCM,
		WeightKG: weightKG,
		BMR:      bmr,
		TDEE:     tdee,
		ProteinG: proteinG,
		CarbsG:   carbsG,
		FatsG:    fatsG,

		StressScore:   likertScore(answers, stressWeights),
		SleepScore:    likertScore(answers, sleepWeights),
		ActivityScore: activityScore(answers, exerciseDays),
		EnergyScore:   likertScore(answers, energyWeights),

		MedicalConditions: normalizeSet(stringSliceAnswer(answers, "medical_conditions")),
		DigestiveIssues:   normalizeSet(stringSliceAnswer(answers, "digestive_issues")),
		FoodIntolerances:  normalizeSet(stringSliceAnswer(answers, "food_intolerances")),
		SkinConcerns:      normalizeSet(stringSliceAnswer(answers, "skin_concerns")),

		DietPreference:      diet,
		ExercisePreferences: normalizeSet(stringSliceAnswer(answers, "exercise_preference")),
		WorkSchedule:        normalizeValue(stringAnswer(answers, "work_schedule")),
		Region:              normalizeValue(stringAnswer(answers, "region")),
		WakeTime:            wakeTimeOrDefault(stringAnswer(answers, "wake_time")),

		MealFrequency: 3,
		EmailConsent:  boolAnswer(answers, "email_consent"),
	}

	if len(profile.DigestiveIssues) > 0 {
		profile.MealFrequency = 4
	}
	profile.ExerciseIntensity = intensityForScore(profile.ActivityScore)
	profile.RecommendedTests = recommendTests(profile)
	profile.SupplementPriority = supplementPriority(profile)

	return profile, nil
}

// minBMR floors the estimate so edge-of-range builds still get positive
// calorie and macro targets.
const minBMR = 500.0

// computeBMR applies Mifflin-St Jeor. Unspecified gender uses the midpoint
// of the male/female constants.
func computeBMR(gender models.Gender, age int, weightKG, heightCM float64) int {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	switch gender {
	case models.GenderMale:
		bmr += 5
	case models.GenderFemale:
		bmr -= 161
	default:
		bmr -= 78
	}
	if bmr < minBMR {
		bmr = minBMR
	}
	return int(math.Round(bmr))
}

func multiplierForDays(days int) float64 {
	for _, bucket := range activityMultipliers {
		if days >= bucket.minDays {
			return bucket.multiplier
		}
	}
	return 1.2
}

func macroGrams(tdee int, diet string) (proteinG, carbsG, fatsG int) {
	split := macroSplits[diet]
	proteinG = int(math.Round(float64(tdee) * float64(split[0]) / 100 / 4))
	carbsG = int(math.Round(float64(tdee) * float64(split[1]) / 100 / 4))
	fatsG = int(math.Round(float64(tdee) * float64(split[2]) / 100 / 9))
	return proteinG, carbsG, fatsG
}

// likertScore maps weighted 1-5 answers onto 0-100. Missing answers count
// as neutral so a sparse quiz still scores.
func likertScore(answers models.QuizAnswers, weights []likertWeight) int {
	weightedSum := 0.0
	totalWeight := 0
	for _, lw := range weights {
		value, ok := intAnswer(answers, lw.key)
		if !ok || value < 1 || value > 5 {
			value = 3
		}
		if lw.inverted {
			value = 6 - value
		}
		weightedSum += float64(value) * float64(lw.weight)
		totalWeight += lw.weight
	}
	avg := weightedSum / float64(totalWeight)
	return clampScore(int(math.Round((avg - 1) / 4 * 100)))
}

func activityScore(answers models.QuizAnswers, exerciseDays int) int {
	frequency := float64(exerciseDays) / 7 * 100

	movement, ok := intAnswer(answers, "daily_movement")
	if !ok || movement < 1 || movement > 5 {
		movement = 3
	}
	sitting, ok := intAnswer(answers, "sitting_hours")
	if !ok || sitting < 1 || sitting > 5 {
		sitting = 3
	}
	sitting = 6 - sitting

	score := frequency*0.6 +
		float64(movement-1)/4*100*0.25 +
		float64(sitting-1)/4*100*0.15
	return clampScore(int(math.Round(score)))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func intensityForScore(activityScore int) string {
	switch {
	case activityScore < 35:
		return "low"
	case activityScore < 70:
		return "moderate"
	default:
		return "high"
	}
}

func recommendTests(p *models.PersonalizationProfile) []string {
	tests := []string{"cbc", "vitamin_d", "thyroid_panel"}
	if hasValue(p.MedicalConditions, "diabetes") || hasValue(p.MedicalConditions, "prediabetes") {
		tests = append(tests, "hba1c")
	}
	if p.Age >= 35 || hasValue(p.MedicalConditions, "hypertension") {
		tests = append(tests, "lipid_profile")
	}
	if p.StressScore < 40 {
		tests = append(tests, "cortisol")
	}
	if p.EnergyScore < 40 {
		tests = append(tests, "ferritin")
	}
	if len(p.FoodIntolerances) > 0 {
		tests = append(tests, "food_sensitivity_panel")
	}
	return tests
}

func supplementPriority(p *models.PersonalizationProfile) []string {
	priority := []string{"vitamin_d3", "omega_3"}
	if p.StressScore < 60 || p.SleepScore < 60 {
		priority = append(priority, "magnesium")
	}
	if len(p.DigestiveIssues) > 0 {
		priority = append(priority, "probiotic")
	}
	if p.EnergyScore < 50 {
		priority = append(priority, "b_complex")
	}
	if len(p.SkinConcerns) > 0 {
		priority = append(priority, "collagen")
	}
	return priority
}

func parseGender(raw string) (models.Gender, error) {
	switch normalizeValue(raw) {
	case "male":
		return models.GenderMale, nil
	case "female":
		return models.GenderFemale, nil
	case "other", "non_binary", "prefer_not_to_say":
		return models.GenderOther, nil
	case "":
		return "", validationErr("gender", "is required")
	default:
		return "", validationErr("gender", "is not a recognized value")
	}
}

func wakeTimeOrDefault(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, ok := parseClock(raw); !ok {
		return "07:00"
	}
	return raw
}

func normalizeValue(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "_")
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		v := normalizeValue(value)
		if v == "" || v == "none" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		normalized = append(normalized, v)
	}
	sort.Strings(normalized)
	return normalized
}

func hasValue(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func stringAnswer(answers models.QuizAnswers, key string) string {
	switch v := answers[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func floatAnswer(answers models.QuizAnswers, key string) (float64, bool) {
	switch v := answers[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func intAnswer(answers models.QuizAnswers, key string) (int, bool) {
	value, ok := floatAnswer(answers, key)
	if !ok || value != math.Trunc(value) {
		return 0, false
	}
	return int(value), true
}

func boolAnswer(answers models.QuizAnswers, key string) bool {
	switch v := answers[key].(type) {
	case bool:
		return v
	case string:
		return normalizeValue(v) == "yes" || normalizeValue(v) == "true"
	default:
		return false
	}
}

func stringSliceAnswer(answers models.QuizAnswers, key string) []string {
	switch v := answers[key].(type) {
	case []string:
		return v
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
