package models

type MacroSplit struct {
	ProteinPct int `json:"protein_pct"`
	CarbsPct   int `json:"carbs_pct"`
	FatsPct    int `json:"fats_pct"`
}

type SupplementRecommendation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Dosage string `json:"dosage"`
}

// PersonalizationInsights is a pure function of the profile: the
// human-facing recommendations rendered into the report.
type PersonalizationInsights struct {
	MetabolicNarrative string `json:"metabolic_narrative"`

	BreakfastTime string `json:"breakfast_time"`
	LunchTime     string `json:"lunch_time"`
	DinnerTime    string `json:"dinner_time"`

	CalorieMin int        `json:"calorie_min"`
	CalorieMax int        `json:"calorie_max"`
	Macros     MacroSplit `json:"macros"`

	Supplements []SupplementRecommendation `json:"supplements"`

	WorkoutStrategy string `json:"workout_strategy"`
	SleepStrategy   string `json:"sleep_strategy"`
	StressStrategy  string `json:"stress_strategy"`
}
