package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/peladahub/pelada-system/models"
)

type SettingsRepository interface {
	Get(ctx context.Context, ownerID int) (*models.LeagueSettings, error)
	Upsert(ctx context.Context, settings *models.LeagueSettings) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

// Get returns the owner's settings, falling back to the defaults when the
// league has not been configured yet.
func (r *postgresSettingsRepository) Get(ctx context.Context, ownerID int) (*models.LeagueSettings, error) {
	query := `
		SELECT owner_id, league_name, location, pix_key, monthly_fee, walkin_fee,
			court_rent, referee_fee, has_referee, use_cards,
			yellow_card_fee, red_card_fee, players_per_team_line
		FROM league_settings
		WHERE owner_id = $1`

	var s models.LeagueSettings
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&s.OwnerID,
		&s.LeagueName,
		&s.Location,
		&s.PixKey,
		&s.MonthlyFee,
		&s.WalkInFee,
		&s.CourtRent,
		&s.RefereeFee,
		&s.HasReferee,
		&s.UseCards,
		&s.YellowCardFee,
		&s.RedCardFee,
		&s.PlayersPerTeamLine,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultLeagueSettings(ownerID), nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSettingsRepository) Upsert(ctx context.Context, settings *models.LeagueSettings) error {
	query := `
		INSERT INTO league_settings (owner_id, league_name, location, pix_key, monthly_fee,
			walkin_fee, court_rent, referee_fee, has_referee, use_cards,
			yellow_card_fee, red_card_fee, players_per_team_line)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (owner_id)
		DO UPDATE SET
			league_name = EXCLUDED.league_name,
			location = EXCLUDED.location,
			pix_key = EXCLUDED.pix_key,
			monthly_fee = EXCLUDED.monthly_fee,
			walkin_fee = EXCLUDED.walkin_fee,
			court_rent = EXCLUDED.court_rent,
			referee_fee = EXCLUDED.referee_fee,
			has_referee = EXCLUDED.has_referee,
			use_cards = EXCLUDED.use_cards,
			yellow_card_fee = EXCLUDED.yellow_card_fee,
			red_card_fee = EXCLUDED.red_card_fee,
			players_per_team_line = EXCLUDED.players_per_team_line`

	_, err := r.db.ExecContext(ctx, query,
		settings.OwnerID,
		settings.LeagueName,
		settings.Location,
		settings.PixKey,
		settings.MonthlyFee,
		settings.WalkInFee,
		settings.CourtRent,
		settings.RefereeFee,
		settings.HasReferee,
		settings.UseCards,
		settings.YellowCardFee,
		settings.RedCardFee,
		settings.PlayersPerTeamLine,
	)
	return err
}
