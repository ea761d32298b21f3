package models

import "time"

// QuizAnswers is the raw question-key to answer mapping as submitted by the
// quiz frontend. Values are strings, numbers, or lists of strings depending
// on the question type.
type QuizAnswers map[string]any

type QuizSubmission struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Answers   QuizAnswers             `json:"answers"`
	Profile   *PersonalizationProfile `json:"profile"`
	CreatedAt time.Time               `json:"created_at"`
}
