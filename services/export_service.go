package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/peladahub/pelada-system/report"
	"github.com/peladahub/pelada-system/repositories"
	"github.com/peladahub/pelada-system/storage"
)

type ExportService interface {
	StandingsPDF(ctx context.Context, ownerID int, query StandingsQuery) (string, []byte, error)
	ShareStandings(ctx context.Context, ownerID int, query StandingsQuery) (string, error)
}

type exportService struct {
	standings    StandingsService
	settingsRepo repositories.SettingsRepository
	builder      report.Builder
	uploader     storage.FileUploader
}

// NewExportService builds the export service. The uploader may be nil, in
// which case sharing is disabled and only direct downloads work.
func NewExportService(
	standings StandingsService,
	settingsRepo repositories.SettingsRepository,
	builder report.Builder,
	uploader storage.FileUploader,
) ExportService {
	return &exportService{
		standings:    standings,
		settingsRepo: settingsRepo,
		builder:      builder,
		uploader:     uploader,
	}
}

// StandingsPDF renders the period's tables into a PDF and returns a
// suggested filename alongside the content.
func (s *exportService) StandingsPDF(ctx context.Context, ownerID int, query StandingsQuery) (string, []byte, error) {
	tables, err := s.standings.Compute(ctx, ownerID, query)
	if err != nil {
		return "", nil, err
	}
	if len(tables.FieldPlayers) == 0 && len(tables.Goalkeepers) == 0 {
		return "", nil, ErrNothingToExport
	}

	settings, err := s.settingsRepo.Get(ctx, ownerID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load settings: %w", err)
	}

	now := time.Now()
	content, err := s.builder.StandingsPDF(settings.LeagueName, query.Label(), now, tables, settings.UseCards)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("classificacao-%s.pdf", now.Format("2006-01-02"))
	return filename, content, nil
}

// ShareStandings uploads the rendered PDF to the public bucket and returns
// the share URL.
func (s *exportService) ShareStandings(ctx context.Context, ownerID int, query StandingsQuery) (string, error) {
	if s.uploader == nil {
		return "", ErrSharingDisabled
	}

	filename, content, err := s.StandingsPDF(ctx, ownerID, query)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/%d/%d-%s", ownerID, time.Now().UnixNano(), filename)
	result, err := s.uploader.Upload(ctx, key, "application/pdf", bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return result.Location, nil
}
