package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/repository"
)

type stubSubmissionStore struct {
	createResult    *models.QuizSubmission
	createErr       error
	getResult       *models.QuizSubmission
	getErr          error
	lastCreateInput repository.CreateSubmissionInput
	lastGetID       string
}

func (s *stubSubmissionStore) Create(_ context.Context, input repository.CreateSubmissionInput) (*models.QuizSubmission, error) {
	s.lastCreateInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &models.QuizSubmission{
		ID:      input.ID,
		Name:    input.Name,
		Email:   input.Email,
		Answers: input.Answers,
		Profile: input.Profile,
	}, nil
}

func (s *stubSubmissionStore) GetByID(_ context.Context, id string) (*models.QuizSubmission, error) {
	s.lastGetID = id
	return s.getResult, s.getErr
}

type recordingFeed struct {
	events []string
}

func (f *recordingFeed) Publish(eventType, tier, orderID string, amountPaise int64) {
	f.events = append(f.events, eventType)
}

const validQuizBody = `{"answers":{
	"name": "Priya Sharma",
	"email": "priya@example.com",
	"age": 30,
	"gender": "female",
	"height_cm": 162,
	"weight_kg": 58,
	"exercise_frequency": 3,
	"wake_time": "07:00",
	"diet_preference": "vegetarian",
	"email_consent": true
}}`

func TestSubmitQuizReturnsProfile(t *testing.T) {
	store := &stubSubmissionStore{}
	feed := &recordingFeed{}
	handler := NewQuizHandler(store, feed)

	app := fiber.New()
	app.Post("/api/quiz", handler.SubmitQuiz)

	req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(validQuizBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body struct {
		SubmissionID string                         `json:"submission_id"`
		Profile      *models.PersonalizationProfile `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.SubmissionID == "" {
		t.Errorf("expected submission id")
	}
	if body.Profile == nil || body.Profile.Name != "Priya Sharma" {
		t.Errorf("expected analyzed profile, got %+v", body.Profile)
	}
	if store.lastCreateInput.Email != "priya@example.com" {
		t.Errorf("expected normalized email stored, got %q", store.lastCreateInput.Email)
	}
	if len(feed.events) != 1 || feed.events[0] != "quiz.submitted" {
		t.Errorf("expected quiz.submitted event, got %v", feed.events)
	}
}

func TestSubmitQuizRejectsIncompleteAnswers(t *testing.T) {
	store := &stubSubmissionStore{}
	handler := NewQuizHandler(store, nil)

	app := fiber.New()
	app.Post("/api/quiz", handler.SubmitQuiz)

	req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(`{"answers":{"name":"Priya"}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if store.lastCreateInput.ID != "" {
		t.Errorf("expected nothing stored for invalid answers")
	}
}

func TestSubmitQuizRejectsMalformedBody(t *testing.T) {
	handler := NewQuizHandler(&stubSubmissionStore{}, nil)

	app := fiber.New()
	app.Post("/api/quiz", handler.SubmitQuiz)

	req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetSubmissionReturnsNotFound(t *testing.T) {
	handler := NewQuizHandler(&stubSubmissionStore{getErr: pgx.ErrNoRows}, nil)

	app := fiber.New()
	app.Get("/api/quiz/:id", handler.GetSubmission)

	req := httptest.NewRequest(http.MethodGet, "/api/quiz/missing-id", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetSubmissionReturnsStoredRow(t *testing.T) {
	store := &stubSubmissionStore{
		getResult: &models.QuizSubmission{ID: "sub-1", Name: "Priya Sharma"},
	}
	handler := NewQuizHandler(store, nil)

	app := fiber.New()
	app.Get("/api/quiz/:id", handler.GetSubmission)

	req := httptest.NewRequest(http.MethodGet, "/api/quiz/sub-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastGetID != "sub-1" {
		t.Errorf("expected lookup by sub-1, got %q", store.lastGetID)
	}
}
