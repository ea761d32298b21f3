package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/famechasepro/genewell-new/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CreateSubmissionInput struct {
	ID      string
	Name    string
	Email   string
	Answers models.QuizAnswers
	Profile *models.PersonalizationProfile
}

type SubmissionRepository struct {
	db DBTX
}

func NewSubmissionRepository(db DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, input CreateSubmissionInput) (*models.QuizSubmission, error) {
	answersJSON, err := json.Marshal(input.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	profileJSON, err := json.Marshal(input.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	query := `
		INSERT INTO quiz_submissions (id, name, email, answers, profile)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, answers, profile, created_at
	`
	return scanSubmission(r.db.QueryRow(ctx, query, input.ID, input.Name, input.Email, answersJSON, profileJSON))
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.QuizSubmission, error) {
	query := `
		SELECT id, name, email, answers, profile, created_at
		FROM quiz_submissions
		WHERE id = $1
	`
	return scanSubmission(r.db.QueryRow(ctx, query, id))
}

func (r *SubmissionRepository) List(ctx context.Context, limit, offset int) ([]models.QuizSubmission, error) {
	query := `
		SELECT id, name, email, answers, profile, created_at
		FROM quiz_submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]models.QuizSubmission, 0, limit)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}
	return submissions, rows.Err()
}

func (r *SubmissionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_submissions`).Scan(&count)
	return count, err
}

func scanSubmission(row pgx.Row) (*models.QuizSubmission, error) {
	var submission models.QuizSubmission
	var answersJSON, profileJSON []byte
	err := row.Scan(
		&submission.ID,
		&submission.Name,
		&submission.Email,
		&answersJSON,
		&profileJSON,
		&submission.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &submission.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &submission.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	return &submission, nil
}
