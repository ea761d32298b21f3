package services

import (
	"context"
	"log"
	"time"

	"github.com/famechasepro/genewell-new/internal/models"
)

type cleanupReportStore interface {
	ListGeneratedBefore(ctx context.Context, cutoff time.Time) ([]models.Report, error)
	ClearStorageURL(ctx context.Context, id string) error
}

// CleanupService purges stored report PDFs past the retention window. The
// metadata row survives, so re-downloads regenerate on demand.
type CleanupService struct {
	reportRepo cleanupReportStore
	storage    StorageService
	retention  time.Duration
	interval   time.Duration
}

func NewCleanupService(reportRepo cleanupReportStore, storage StorageService, retentionDays int) *CleanupService {
	return &CleanupService{
		reportRepo: reportRepo,
		storage:    storage,
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
		interval:   6 * time.Hour,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.Printf("report cleanup sweep: %v", err)
			}
		}
	}
}

func (s *CleanupService) SweepOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention)
	expired, err := s.reportRepo.ListGeneratedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, stale := range expired {
		if s.storage != nil {
			if err := s.storage.DeleteReport(ctx, stale.StorageURL); err != nil {
				log.Printf("delete stored report %s: %v", stale.ID, err)
				continue
			}
		}
		if err := s.reportRepo.ClearStorageURL(ctx, stale.ID); err != nil {
			log.Printf("clear storage url for report %s: %v", stale.ID, err)
		}
	}
	return nil
}
