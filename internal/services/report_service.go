package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/report"
	"github.com/famechasepro/genewell-new/internal/repository"
)

var (
	ErrOrderNotPaid   = errors.New("order is not paid")
	ErrProfileMissing = errors.New("submission has no profile")
)

type reportOrderStore interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

type reportSubmissionStore interface {
	GetByID(ctx context.Context, id string) (*models.QuizSubmission, error)
}

type reportStore interface {
	Create(ctx context.Context, input repository.CreateReportInput) (*models.Report, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Report, error)
}

type reportMailer interface {
	SendReportReady(ctx context.Context, to, name, downloadURL string) error
}

type ReportService struct {
	orderRepo      reportOrderStore
	submissionRepo reportSubmissionStore
	reportRepo     reportStore
	storage        StorageService
	mailer         reportMailer
	publicBaseURL  string
}

func NewReportService(
	orderRepo reportOrderStore,
	submissionRepo reportSubmissionStore,
	reportRepo reportStore,
	storage StorageService,
	mailer reportMailer,
	publicBaseURL string,
) *ReportService {
	return &ReportService{
		orderRepo:      orderRepo,
		submissionRepo: submissionRepo,
		reportRepo:     reportRepo,
		storage:        storage,
		mailer:         mailer,
		publicBaseURL:  publicBaseURL,
	}
}

// Build runs the full pipeline for an order and returns the rendered
// document without persisting anything. The pipeline is pure, so building
// twice for the same order yields an identical structure and filename.
func (s *ReportService) Build(ctx context.Context, orderID string) (*report.RenderedReport, *models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Tier != models.TierFree && order.Status != models.OrderStatusPaid {
		return nil, nil, ErrOrderNotPaid
	}

	submission, err := s.submissionRepo.GetByID(ctx, order.SubmissionID)
	if err != nil {
		return nil, nil, err
	}

	profile := submission.Profile
	if profile == nil {
		// Older rows predate profile snapshots; the analyzer is
		// deterministic so recomputing gives the same profile.
		profile, err = report.Analyze(submission.Answers)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrProfileMissing, err)
		}
	}

	cfg := models.ReportConfiguration{
		Tier:        order.Tier,
		AddOns:      order.AddOns,
		OrderID:     order.ID,
		GeneratedAt: order.CreatedAt,
		Language:    order.Language,
	}

	insights := report.DeriveInsights(profile)
	sections := report.Compose(profile, insights, cfg)
	rendered, err := report.Render(sections, profile, cfg)
	if err != nil {
		return nil, nil, err
	}
	return rendered, order, nil
}

// Download serves a previously generated report from storage via a signed
// URL when one exists, and otherwise re-renders the PDF on demand. Exactly
// one of the return values is set on success.
func (s *ReportService) Download(ctx context.Context, orderID string) (string, *report.RenderedReport, error) {
	if s.storage != nil {
		stored, err := s.reportRepo.GetByOrderID(ctx, orderID)
		switch {
		case err == nil && stored.StorageURL != "":
			signed, signErr := s.storage.GetSignedURL(ctx, stored.StorageURL)
			if signErr == nil {
				return signed, nil, nil
			}
			// Fall through to a fresh render when signing fails.
			log.Printf("sign stored report for order %s: %v", orderID, signErr)
		case err != nil && !errors.Is(err, pgx.ErrNoRows):
			log.Printf("load stored report for order %s: %v", orderID, err)
		}
	}

	rendered, _, err := s.Build(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	return "", rendered, nil
}

// Generate builds the report, stores the PDF, records the metadata row and
// notifies the user when they consented to email.
func (s *ReportService) Generate(ctx context.Context, orderID string) (*models.Report, error) {
	rendered, order, err := s.Build(ctx, orderID)
	if err != nil {
		return nil, err
	}

	storageURL := ""
	if s.storage != nil {
		storageURL, err = s.storage.UploadReport(ctx, rendered.Bytes, rendered.Filename)
		if err != nil {
			// The PDF regenerates on demand; a failed upload should not
			// block the purchase flow.
			log.Printf("upload report for order %s: %v", order.ID, err)
			storageURL = ""
		}
	}

	stored, err := s.reportRepo.Create(ctx, repository.CreateReportInput{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		Filename:   rendered.Filename,
		PageCount:  rendered.PageCount,
		StorageURL: storageURL,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, order)
	return stored, nil
}

func (s *ReportService) notify(ctx context.Context, order *models.Order) {
	if s.mailer == nil {
		return
	}
	submission, err := s.submissionRepo.GetByID(ctx, order.SubmissionID)
	if err != nil || submission.Profile == nil || !submission.Profile.EmailConsent || submission.Email == "" {
		return
	}
	downloadURL := fmt.Sprintf("%s/api/reports/%s/download", s.publicBaseURL, order.ID)
	if err := s.mailer.SendReportReady(ctx, submission.Email, submission.Name, downloadURL); err != nil {
		log.Printf("send report email for order %s: %v", order.ID, err)
	}
}
