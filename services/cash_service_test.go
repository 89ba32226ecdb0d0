package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

type fakeSettingsRepo struct {
	settings *models.LeagueSettings
}

func (f *fakeSettingsRepo) Get(ctx context.Context, ownerID int) (*models.LeagueSettings, error) {
	if f.settings != nil {
		return f.settings, nil
	}
	return models.DefaultLeagueSettings(ownerID), nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.LeagueSettings) error {
	f.settings = settings
	return nil
}

type fakeCashRepo struct {
	repositories.CashRepository
	paidMonthlies int
	manualIn      float64
	manualOut     float64
	opening       float64
}

func (f *fakeCashRepo) CountPaidMonthlies(ctx context.Context, ownerID int, season string, month int) (int, error) {
	return f.paidMonthlies, nil
}

func (f *fakeCashRepo) SumManual(ctx context.Context, ownerID int, season string, month int) (float64, float64, error) {
	return f.manualIn, f.manualOut, nil
}

func (f *fakeCashRepo) GetOpeningBalance(ctx context.Context, ownerID int, season string) (float64, error) {
	return f.opening, nil
}

type fakeEntryStatsRepo struct {
	repositories.RoundEntryRepository
	walkIns int
	yellow  int
	red     int
}

func (f *fakeEntryStatsRepo) CountWalkInPresences(ctx context.Context, ownerID int, from, to time.Time) (int, error) {
	return f.walkIns, nil
}

func (f *fakeEntryStatsRepo) SumCards(ctx context.Context, ownerID int, from, to time.Time) (int, int, error) {
	return f.yellow, f.red, nil
}

type fakeRoundListRepo struct {
	repositories.RoundRepository
	rounds []*models.Round
}

func (f *fakeRoundListRepo) List(ctx context.Context, ownerID int, filter repositories.RoundFilter) ([]*models.Round, error) {
	return f.rounds, nil
}

func TestMonthSummaryMath(t *testing.T) {
	settings := &models.LeagueSettings{
		OwnerID:       1,
		MonthlyFee:    50,
		WalkInFee:     15,
		CourtRent:     400,
		RefereeFee:    100,
		HasReferee:    true,
		UseCards:      true,
		YellowCardFee: 5,
		RedCardFee:    20,
	}
	rounds := []*models.Round{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	svc := NewCashService(
		&fakeCashRepo{paidMonthlies: 10, manualIn: 100, manualOut: 50},
		&fakeEntryStatsRepo{walkIns: 4, yellow: 3, red: 1},
		&fakeRoundListRepo{rounds: rounds},
		&fakeSettingsRepo{settings: settings},
	)

	summary, err := svc.MonthSummary(context.Background(), 1, "2025", 3)
	require.NoError(t, err)

	require.Equal(t, 500.0, summary.MonthlyIncome)
	require.Equal(t, 60.0, summary.WalkInIncome)
	require.Equal(t, 35.0, summary.CardIncome)
	require.Equal(t, 100.0, summary.ManualIn)
	require.Equal(t, 400.0, summary.CourtRent)
	require.Equal(t, 400.0, summary.RefereeCost)
	require.Equal(t, 50.0, summary.ManualOut)
	require.Equal(t, 695.0, summary.TotalIn)
	require.Equal(t, 850.0, summary.TotalOut)
	require.Equal(t, -155.0, summary.Balance)
}

func TestMonthSummarySkipsFixedCostsWithoutRounds(t *testing.T) {
	settings := &models.LeagueSettings{
		OwnerID:    1,
		CourtRent:  400,
		RefereeFee: 100,
		HasReferee: true,
		UseCards:   false,
	}

	svc := NewCashService(
		&fakeCashRepo{},
		&fakeEntryStatsRepo{yellow: 3, red: 1},
		&fakeRoundListRepo{},
		&fakeSettingsRepo{settings: settings},
	)

	summary, err := svc.MonthSummary(context.Background(), 1, "2025", 7)
	require.NoError(t, err)

	// A month with no rounds costs nothing; cards are off so no fine income.
	require.Zero(t, summary.CourtRent)
	require.Zero(t, summary.RefereeCost)
	require.Zero(t, summary.CardIncome)
	require.Zero(t, summary.Balance)
}

func TestMonthSummaryValidation(t *testing.T) {
	svc := NewCashService(&fakeCashRepo{}, &fakeEntryStatsRepo{}, &fakeRoundListRepo{}, &fakeSettingsRepo{})

	_, err := svc.MonthSummary(context.Background(), 1, "2025", 0)
	require.ErrorIs(t, err, ErrInvalidMonth)

	_, err = svc.MonthSummary(context.Background(), 1, "", 3)
	require.ErrorIs(t, err, ErrSeasonRequired)

	_, err = svc.MonthSummary(context.Background(), 1, "temporada", 3)
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestSeasonSummaryRunningBalance(t *testing.T) {
	settings := &models.LeagueSettings{OwnerID: 1, MonthlyFee: 50}

	svc := NewCashService(
		&fakeCashRepo{paidMonthlies: 2, opening: 100},
		&fakeEntryStatsRepo{},
		&fakeRoundListRepo{},
		&fakeSettingsRepo{settings: settings},
	)

	summary, err := svc.SeasonSummary(context.Background(), 1, "2025")
	require.NoError(t, err)

	require.Equal(t, 100.0, summary.OpeningBalance)
	require.Len(t, summary.Months, 12)
	// 2 paid monthlies at 50 each, every month, on top of the opening balance.
	require.Equal(t, 100.0+12*100.0, summary.FinalBalance)
}
