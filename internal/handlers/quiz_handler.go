package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/report"
	"github.com/famechasepro/genewell-new/internal/repository"
	adminws "github.com/famechasepro/genewell-new/internal/websocket"
)

type quizSubmissionStore interface {
	Create(ctx context.Context, input repository.CreateSubmissionInput) (*models.QuizSubmission, error)
	GetByID(ctx context.Context, id string) (*models.QuizSubmission, error)
}

type activityFeed interface {
	Publish(eventType, tier, orderID string, amountPaise int64)
}

type QuizHandler struct {
	submissionRepo quizSubmissionStore
	feed           activityFeed
}

func NewQuizHandler(submissionRepo quizSubmissionStore, feed activityFeed) *QuizHandler {
	return &QuizHandler{submissionRepo: submissionRepo, feed: feed}
}

type submitQuizRequest struct {
	Answers models.QuizAnswers `json:"answers"`
}

func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req submitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	profile, err := report.Analyze(req.Answers)
	if err != nil {
		var validationErr *report.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to analyze quiz"})
	}

	submission, err := h.submissionRepo.Create(c.Context(), repository.CreateSubmissionInput{
		ID:      uuid.NewString(),
		Name:    profile.Name,
		Email:   profile.Email,
		Answers: req.Answers,
		Profile: profile,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save submission"})
	}

	if h.feed != nil {
		h.feed.Publish(adminws.EventQuizSubmitted, "", "", 0)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"submission_id": submission.ID,
		"profile":       submission.Profile,
	})
}

func (h *QuizHandler) GetSubmission(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Submission id is required"})
	}

	submission, err := h.submissionRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submission"})
	}

	return c.JSON(fiber.Map{"submission": submission})
}
