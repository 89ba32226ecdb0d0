package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

type CashService interface {
	CreateEntry(ctx context.Context, ownerID int, input CashEntryInput) (*models.CashEntry, error)
	ListEntries(ctx context.Context, ownerID int, season string) ([]*models.CashEntry, error)
	DeleteEntry(ctx context.Context, ownerID, entryID int) error
	SetMonthlyFlag(ctx context.Context, ownerID int, flag *models.MonthlyFeeFlag) error
	ListMonthlyFlags(ctx context.Context, ownerID int, season string) ([]*models.MonthlyFeeFlag, error)
	SetOpeningBalance(ctx context.Context, ownerID int, season string, amount float64) error
	MonthSummary(ctx context.Context, ownerID int, season string, month int) (*models.MonthSummary, error)
	SeasonSummary(ctx context.Context, ownerID int, season string) (*SeasonSummary, error)
}

type CashEntryInput struct {
	Season      string    `json:"season"`
	Date        time.Time `json:"date"`
	RoundID     *int      `json:"round_id,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// SeasonSummary is the season ledger: the opening balance followed by the
// twelve month summaries with a running balance.
type SeasonSummary struct {
	Season         string                `json:"season"`
	OpeningBalance float64               `json:"opening_balance"`
	Months         []models.MonthSummary `json:"months"`
	FinalBalance   float64               `json:"final_balance"`
}

type cashService struct {
	cashRepo     repositories.CashRepository
	entryRepo    repositories.RoundEntryRepository
	roundRepo    repositories.RoundRepository
	settingsRepo repositories.SettingsRepository
}

func NewCashService(
	cashRepo repositories.CashRepository,
	entryRepo repositories.RoundEntryRepository,
	roundRepo repositories.RoundRepository,
	settingsRepo repositories.SettingsRepository,
) CashService {
	return &cashService{
		cashRepo:     cashRepo,
		entryRepo:    entryRepo,
		roundRepo:    roundRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *cashService) CreateEntry(ctx context.Context, ownerID int, input CashEntryInput) (*models.CashEntry, error) {
	if input.Season == "" {
		return nil, ErrSeasonRequired
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidCashAmount
	}
	category := models.CashCategory(input.Category)
	if category != models.CashManualIn && category != models.CashManualOut {
		return nil, ErrUnknownCashFlow
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	entry := &models.CashEntry{
		OwnerID:     ownerID,
		Season:      input.Season,
		Date:        input.Date,
		RoundID:     input.RoundID,
		Category:    category,
		Description: input.Description,
		Amount:      input.Amount,
	}
	if err := s.cashRepo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create cash entry: %w", err)
	}
	return entry, nil
}

func (s *cashService) ListEntries(ctx context.Context, ownerID int, season string) ([]*models.CashEntry, error) {
	if season == "" {
		return nil, ErrSeasonRequired
	}
	entries, err := s.cashRepo.ListEntries(ctx, ownerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash entries: %w", err)
	}
	return entries, nil
}

func (s *cashService) DeleteEntry(ctx context.Context, ownerID, entryID int) error {
	err := s.cashRepo.DeleteEntry(ctx, ownerID, entryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCashEntryNotFound) {
			return ErrCashEntryNotFound
		}
		return fmt.Errorf("failed to delete cash entry: %w", err)
	}
	return nil
}

func (s *cashService) SetMonthlyFlag(ctx context.Context, ownerID int, flag *models.MonthlyFeeFlag) error {
	if flag.Season == "" {
		return ErrSeasonRequired
	}
	if flag.Month < 1 || flag.Month > 12 {
		return ErrInvalidMonth
	}
	if err := s.cashRepo.SetMonthlyFlag(ctx, ownerID, flag); err != nil {
		return fmt.Errorf("failed to set monthly fee flag: %w", err)
	}
	return nil
}

func (s *cashService) ListMonthlyFlags(ctx context.Context, ownerID int, season string) ([]*models.MonthlyFeeFlag, error) {
	if season == "" {
		return nil, ErrSeasonRequired
	}
	flags, err := s.cashRepo.ListMonthlyFlags(ctx, ownerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly fee flags: %w", err)
	}
	return flags, nil
}

func (s *cashService) SetOpeningBalance(ctx context.Context, ownerID int, season string, amount float64) error {
	if season == "" {
		return ErrSeasonRequired
	}
	if err := s.cashRepo.SetOpeningBalance(ctx, ownerID, season, amount); err != nil {
		return fmt.Errorf("failed to set opening balance: %w", err)
	}
	return nil
}

// MonthSummary derives a month of cash flow. Fee income is computed from the
// round history and the current settings, so changing a fee retroactively
// changes the summaries; only manual entries are stored amounts.
func (s *cashService) MonthSummary(ctx context.Context, ownerID int, season string, month int) (*models.MonthSummary, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	year, err := seasonYear(season)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	paidMonthlies, err := s.cashRepo.CountPaidMonthlies(ctx, ownerID, season, month)
	if err != nil {
		return nil, fmt.Errorf("failed to count paid monthlies: %w", err)
	}

	walkIns, err := s.entryRepo.CountWalkInPresences(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count walk-in presences: %w", err)
	}

	var cardIncome float64
	if settings.UseCards {
		yellow, red, cardErr := s.entryRepo.SumCards(ctx, ownerID, from, to)
		if cardErr != nil {
			return nil, fmt.Errorf("failed to sum cards: %w", cardErr)
		}
		cardIncome = float64(yellow)*settings.YellowCardFee + float64(red)*settings.RedCardFee
	}

	manualIn, manualOut, err := s.cashRepo.SumManual(ctx, ownerID, season, month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum manual entries: %w", err)
	}

	rounds, err := s.roundRepo.List(ctx, ownerID, repositories.RoundFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	summary := &models.MonthSummary{
		Season:        season,
		Month:         month,
		MonthlyIncome: float64(paidMonthlies) * settings.MonthlyFee,
		WalkInIncome:  float64(walkIns) * settings.WalkInFee,
		CardIncome:    cardIncome,
		ManualIn:      manualIn,
		ManualOut:     manualOut,
	}
	if len(rounds) > 0 {
		summary.CourtRent = settings.CourtRent
		if settings.HasReferee {
			summary.RefereeCost = settings.RefereeFee * float64(len(rounds))
		}
	}

	summary.TotalIn = summary.MonthlyIncome + summary.WalkInIncome + summary.CardIncome + summary.ManualIn
	summary.TotalOut = summary.CourtRent + summary.RefereeCost + summary.ManualOut
	summary.Balance = summary.TotalIn - summary.TotalOut
	return summary, nil
}

func (s *cashService) SeasonSummary(ctx context.Context, ownerID int, season string) (*SeasonSummary, error) {
	if _, err := seasonYear(season); err != nil {
		return nil, err
	}

	opening, err := s.cashRepo.GetOpeningBalance(ctx, ownerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to get opening balance: %w", err)
	}

	result := &SeasonSummary{
		Season:         season,
		OpeningBalance: opening,
		Months:         make([]models.MonthSummary, 0, 12),
	}
	running := opening
	for month := 1; month <= 12; month++ {
		summary, sumErr := s.MonthSummary(ctx, ownerID, season, month)
		if sumErr != nil {
			return nil, sumErr
		}
		running += summary.Balance
		result.Months = append(result.Months, *summary)
	}
	result.FinalBalance = running
	return result, nil
}

func seasonYear(season string) (int, error) {
	if season == "" {
		return 0, ErrSeasonRequired
	}
	year, err := strconv.Atoi(season)
	if err != nil || year < 2000 || year > 2200 {
		return 0, fmt.Errorf("%w: season must be a year, got %q", ErrValidationFailed, season)
	}
	return year, nil
}
