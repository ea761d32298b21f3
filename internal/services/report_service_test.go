package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
	"github.com/famechasepro/genewell-new/internal/report"
	"github.com/famechasepro/genewell-new/internal/repository"
)

type stubReportStore struct {
	createFn        func(ctx context.Context, input repository.CreateReportInput) (*models.Report, error)
	getByOrderIDFn  func(ctx context.Context, orderID string) (*models.Report, error)
	lastCreateInput *repository.CreateReportInput
}

func (s *stubReportStore) Create(ctx context.Context, input repository.CreateReportInput) (*models.Report, error) {
	s.lastCreateInput = &input
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Report{
		ID:         input.ID,
		OrderID:    input.OrderID,
		Filename:   input.Filename,
		PageCount:  input.PageCount,
		StorageURL: input.StorageURL,
	}, nil
}

func (s *stubReportStore) GetByOrderID(ctx context.Context, orderID string) (*models.Report, error) {
	if s.getByOrderIDFn != nil {
		return s.getByOrderIDFn(ctx, orderID)
	}
	return nil, pgx.ErrNoRows
}

type stubStorage struct {
	uploadFn    func(ctx context.Context, payload []byte, filename string) (string, error)
	uploadCalls int
	signErr     error
	signCalls   int
}

func (s *stubStorage) UploadReport(ctx context.Context, payload []byte, filename string) (string, error) {
	s.uploadCalls++
	if s.uploadFn != nil {
		return s.uploadFn(ctx, payload, filename)
	}
	return "https://storage.example.com/reports/" + filename, nil
}

func (s *stubStorage) DeleteReport(ctx context.Context, fileURL string) error { return nil }

func (s *stubStorage) GetSignedURL(ctx context.Context, fileURL string) (string, error) {
	s.signCalls++
	if s.signErr != nil {
		return "", s.signErr
	}
	return fileURL + "?signed", nil
}

type stubMailer struct {
	sent [][3]string
	err  error
}

func (m *stubMailer) SendReportReady(ctx context.Context, to, name, downloadURL string) error {
	m.sent = append(m.sent, [3]string{to, name, downloadURL})
	return m.err
}

func quizAnswers() models.QuizAnswers {
	return models.QuizAnswers{
		"name":               "Priya Sharma",
		"email":              "priya@example.com",
		"age":                30,
		"gender":             "female",
		"height_cm":          162.0,
		"weight_kg":          58.0,
		"exercise_frequency": 3,
		"wake_time":          "07:00",
		"diet_preference":    "vegetarian",
		"email_consent":      true,
	}
}

func paidOrder(tier models.Tier) *models.Order {
	return &models.Order{
		ID:           "ord-1",
		SubmissionID: "sub-1",
		Tier:         tier,
		Status:       models.OrderStatusPaid,
		Language:     "en",
		CreatedAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func submissionWithProfile(t *testing.T) *models.QuizSubmission {
	t.Helper()
	profile, err := report.Analyze(quizAnswers())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return &models.QuizSubmission{
		ID:      "sub-1",
		Name:    profile.Name,
		Email:   profile.Email,
		Answers: quizAnswers(),
		Profile: profile,
	}
}

func newReportService(t *testing.T, order *models.Order, submission *models.QuizSubmission, reports *stubReportStore, storage StorageService, mailer reportMailer) *ReportService {
	t.Helper()
	orders := &stubOrderStore{
		getByIDFn: func(ctx context.Context, id string) (*models.Order, error) {
			if order == nil || id != order.ID {
				return nil, pgx.ErrNoRows
			}
			return order, nil
		},
	}
	submissions := &stubSubmissionStore{
		getByIDFn: func(ctx context.Context, id string) (*models.QuizSubmission, error) {
			if submission == nil || id != submission.ID {
				return nil, pgx.ErrNoRows
			}
			return submission, nil
		},
	}
	return NewReportService(orders, submissions, reports, storage, mailer, "https://wellness.example.com")
}

func TestBuildRejectsUnpaidOrder(t *testing.T) {
	order := paidOrder(models.TierEssential)
	order.Status = models.OrderStatusPending
	service := newReportService(t, order, submissionWithProfile(t), &stubReportStore{}, nil, nil)

	_, _, err := service.Build(context.Background(), "ord-1")
	if !errors.Is(err, ErrOrderNotPaid) {
		t.Errorf("expected ErrOrderNotPaid, got %v", err)
	}
}

func TestBuildAllowsFreeTierWithoutPayment(t *testing.T) {
	order := paidOrder(models.TierFree)
	order.Status = models.OrderStatusPending
	service := newReportService(t, order, submissionWithProfile(t), &stubReportStore{}, nil, nil)

	rendered, _, err := service.Build(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasSuffix(rendered.Filename, "_free_blueprint_ord-1.pdf") {
		t.Errorf("unexpected filename %s", rendered.Filename)
	}
}

func TestBuildMissingOrder(t *testing.T) {
	service := newReportService(t, nil, nil, &stubReportStore{}, nil, nil)

	_, _, err := service.Build(context.Background(), "ord-404")
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestBuildRecomputesProfileFromAnswers(t *testing.T) {
	submission := submissionWithProfile(t)
	submission.Profile = nil
	service := newReportService(t, paidOrder(models.TierEssential), submission, &stubReportStore{}, nil, nil)

	rendered, order, err := service.Build(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rendered.Filename != "priya_sharma_essential_blueprint_ord-1.pdf" {
		t.Errorf("unexpected filename %s", rendered.Filename)
	}
	if order.ID != "ord-1" {
		t.Errorf("unexpected order %s", order.ID)
	}
}

func TestBuildFailsWhenAnswersInvalid(t *testing.T) {
	submission := &models.QuizSubmission{ID: "sub-1", Answers: models.QuizAnswers{"name": "X"}}
	service := newReportService(t, paidOrder(models.TierEssential), submission, &stubReportStore{}, nil, nil)

	_, _, err := service.Build(context.Background(), "ord-1")
	if !errors.Is(err, ErrProfileMissing) {
		t.Errorf("expected ErrProfileMissing, got %v", err)
	}
}

func TestBuildIsDeterministicPerOrder(t *testing.T) {
	service := newReportService(t, paidOrder(models.TierPremium), submissionWithProfile(t), &stubReportStore{}, nil, nil)

	first, _, err := service.Build(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, _, err := service.Build(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first.Filename != second.Filename || first.PageCount != second.PageCount {
		t.Errorf("expected identical rebuild, got %s/%d vs %s/%d",
			first.Filename, first.PageCount, second.Filename, second.PageCount)
	}
}

func TestDownloadServesStoredCopyViaSignedURL(t *testing.T) {
	reports := &stubReportStore{
		getByOrderIDFn: func(ctx context.Context, orderID string) (*models.Report, error) {
			return &models.Report{
				ID:         "rep-1",
				OrderID:    orderID,
				StorageURL: "https://storage.example.com/reports/stored.pdf",
			}, nil
		},
	}
	storage := &stubStorage{}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), reports, storage, nil)

	signedURL, rendered, err := service.Download(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if signedURL != "https://storage.example.com/reports/stored.pdf?signed" {
		t.Errorf("unexpected signed url %s", signedURL)
	}
	if rendered != nil {
		t.Errorf("expected no fresh render when stored copy serves")
	}
}

func TestDownloadRendersWhenNothingStored(t *testing.T) {
	storage := &stubStorage{}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), &stubReportStore{}, storage, nil)

	signedURL, rendered, err := service.Download(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if signedURL != "" {
		t.Errorf("expected no signed url, got %s", signedURL)
	}
	if rendered == nil || !strings.HasSuffix(rendered.Filename, "_essential_blueprint_ord-1.pdf") {
		t.Errorf("expected fresh render, got %+v", rendered)
	}
}

// A signing outage degrades to an on-demand render instead of failing the
// download.
func TestDownloadFallsBackToRenderWhenSigningFails(t *testing.T) {
	reports := &stubReportStore{
		getByOrderIDFn: func(ctx context.Context, orderID string) (*models.Report, error) {
			return &models.Report{OrderID: orderID, StorageURL: "https://storage.example.com/reports/stored.pdf"}, nil
		},
	}
	storage := &stubStorage{signErr: errors.New("token service down")}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), reports, storage, nil)

	signedURL, rendered, err := service.Download(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if storage.signCalls != 1 {
		t.Errorf("expected 1 sign attempt, got %d", storage.signCalls)
	}
	if signedURL != "" || rendered == nil {
		t.Errorf("expected render fallback, got url=%q rendered=%v", signedURL, rendered)
	}
}

func TestDownloadPropagatesBuildErrors(t *testing.T) {
	order := paidOrder(models.TierEssential)
	order.Status = models.OrderStatusPending
	service := newReportService(t, order, submissionWithProfile(t), &stubReportStore{}, nil, nil)

	_, _, err := service.Download(context.Background(), "ord-1")
	if !errors.Is(err, ErrOrderNotPaid) {
		t.Errorf("expected ErrOrderNotPaid, got %v", err)
	}
}

func TestGenerateStoresReportWithUpload(t *testing.T) {
	reports := &stubReportStore{}
	storage := &stubStorage{}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), reports, storage, nil)

	stored, err := service.Generate(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if storage.uploadCalls != 1 {
		t.Errorf("expected 1 upload, got %d", storage.uploadCalls)
	}
	if stored.OrderID != "ord-1" {
		t.Errorf("expected order id ord-1, got %s", stored.OrderID)
	}
	if stored.PageCount < 2 {
		t.Errorf("expected multi-page report, got %d", stored.PageCount)
	}
	if !strings.HasPrefix(stored.StorageURL, "https://storage.example.com/reports/") {
		t.Errorf("unexpected storage url %s", stored.StorageURL)
	}
	if reports.lastCreateInput.Filename != stored.Filename {
		t.Errorf("stored filename mismatch")
	}
}

// A storage outage must not block the purchase flow; the PDF regenerates
// on demand.
func TestGenerateToleratesUploadFailure(t *testing.T) {
	reports := &stubReportStore{}
	storage := &stubStorage{
		uploadFn: func(ctx context.Context, payload []byte, filename string) (string, error) {
			return "", errors.New("bucket unavailable")
		},
	}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), reports, storage, nil)

	stored, err := service.Generate(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if stored.StorageURL != "" {
		t.Errorf("expected empty storage url, got %s", stored.StorageURL)
	}
}

func TestGenerateEmailsWithConsent(t *testing.T) {
	mailer := &stubMailer{}
	service := newReportService(t, paidOrder(models.TierEssential), submissionWithProfile(t), &stubReportStore{}, nil, mailer)

	if _, err := service.Generate(context.Background(), "ord-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	if mailer.sent[0][0] != "priya@example.com" {
		t.Errorf("expected recipient priya@example.com, got %s", mailer.sent[0][0])
	}
	if !strings.Contains(mailer.sent[0][2], "/api/reports/ord-1/download") {
		t.Errorf("expected download link, got %s", mailer.sent[0][2])
	}
}

func TestGenerateSkipsEmailWithoutConsent(t *testing.T) {
	submission := submissionWithProfile(t)
	submission.Profile.EmailConsent = false
	mailer := &stubMailer{}
	service := newReportService(t, paidOrder(models.TierEssential), submission, &stubReportStore{}, nil, mailer)

	if _, err := service.Generate(context.Background(), "ord-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("expected no email without consent, got %d", len(mailer.sent))
	}
}
