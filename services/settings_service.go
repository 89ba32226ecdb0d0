package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

type SettingsService interface {
	Get(ctx context.Context, ownerID int) (*models.LeagueSettings, error)
	Update(ctx context.Context, ownerID int, settings *models.LeagueSettings) (*models.LeagueSettings, error)
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
}

func NewSettingsService(settingsRepo repositories.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context, ownerID int) (*models.LeagueSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, ownerID int, settings *models.LeagueSettings) (*models.LeagueSettings, error) {
	settings.OwnerID = ownerID
	settings.LeagueName = strings.TrimSpace(settings.LeagueName)
	if settings.LeagueName == "" {
		settings.LeagueName = "Pelada"
	}
	if settings.MonthlyFee < 0 || settings.WalkInFee < 0 || settings.CourtRent < 0 ||
		settings.RefereeFee < 0 || settings.YellowCardFee < 0 || settings.RedCardFee < 0 {
		return nil, ErrValidationFailed
	}
	if settings.PlayersPerTeamLine <= 0 {
		settings.PlayersPerTeamLine = 5
	}

	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
