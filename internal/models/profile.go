package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// PersonalizationProfile is the normalized snapshot derived from one quiz
// submission. It is produced once and treated as read-only by every
// downstream stage.
type PersonalizationProfile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`

	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
	BMR      int     `json:"bmr"`
	TDEE     int     `json:"tdee"`
	ProteinG int     `json:"protein_g"`
	CarbsG   int     `json:"carbs_g"`
	FatsG    int     `json:"fats_g"`

	// Scored dimensions, 0-100.
	StressScore   int `json:"stress_score"`
	SleepScore    int `json:"sleep_score"`
	ActivityScore int `json:"activity_score"`
	EnergyScore   int `json:"energy_score"`

	MedicalConditions []string `json:"medical_conditions"`
	DigestiveIssues   []string `json:"digestive_issues"`
	FoodIntolerances  []string `json:"food_intolerances"`
	SkinConcerns      []string `json:"skin_concerns"`

	DietPreference      string   `json:"diet_preference"`
	ExercisePreferences []string `json:"exercise_preferences"`
	WorkSchedule        string   `json:"work_schedule"`
	Region              string   `json:"region"`
	WakeTime            string   `json:"wake_time"`

	RecommendedTests   []string `json:"recommended_tests"`
	SupplementPriority []string `json:"supplement_priority"`
	ExerciseIntensity  string   `json:"exercise_intensity"`
	MealFrequency      int      `json:"meal_frequency"`
	EmailConsent       bool     `json:"email_consent"`
}
