package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/peladahub/pelada-system/models"
)

var (
	ErrRoundEntryNotFound      = errors.New("round entry not found")
	ErrRoundEntryUnknownPlayer = errors.New("round entry references unknown player")
)

type RoundEntryRepository interface {
	LinkPlayer(ctx context.Context, exec SQLExecutor, roundID, playerID int, teamID *int) error
	SetCards(ctx context.Context, exec SQLExecutor, roundID, playerID, yellow, red int) error
	ResetCards(ctx context.Context, exec SQLExecutor, roundID int) error
	SetOverride(ctx context.Context, exec SQLExecutor, entry *models.RoundEntry) error
	Update(ctx context.Context, exec SQLExecutor, entry *models.RoundEntry) error
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.RoundEntry, error)
	ListByOwner(ctx context.Context, ownerID int, filter RoundFilter) ([]*models.RoundEntry, error)
	ClearBonusFlags(ctx context.Context, exec SQLExecutor, roundID int) error
	SetBonusFlags(ctx context.Context, exec SQLExecutor, roundID int, photoTeamID, deflatedTeamID *int) error
	Unlink(ctx context.Context, exec SQLExecutor, roundID, playerID int) error
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
	CountWalkInPresences(ctx context.Context, ownerID int, from, to time.Time) (int, error)
	SumCards(ctx context.Context, ownerID int, from, to time.Time) (yellow int, red int, err error)
}

type postgresRoundEntryRepository struct {
	db *sql.DB
}

func NewPostgresRoundEntryRepository(db *sql.DB) RoundEntryRepository {
	return &postgresRoundEntryRepository{db: db}
}

func (r *postgresRoundEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundEntryColumns = `id, round_id, player_id, team_id, present, wins, draws, losses,
	goals_for, goals_against, points, yellow_cards, red_cards,
	photo_bonus, deflated_ball, individual_override`

// LinkPlayer marks the player as present in the round and optionally
// assigns a team. Re-linking an existing entry keeps its cards and
// override flags intact.
func (r *postgresRoundEntryRepository) LinkPlayer(ctx context.Context, exec SQLExecutor, roundID, playerID int, teamID *int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_entries (round_id, player_id, team_id, present)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (round_id, player_id)
		DO UPDATE SET team_id = EXCLUDED.team_id, present = TRUE`

	_, err := executor.ExecContext(ctx, query, roundID, playerID, teamID)
	return mapEntryError(err)
}

func (r *postgresRoundEntryRepository) SetCards(ctx context.Context, exec SQLExecutor, roundID, playerID, yellow, red int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_entries (round_id, player_id, present, yellow_cards, red_cards)
		VALUES ($1, $2, TRUE, $3, $4)
		ON CONFLICT (round_id, player_id)
		DO UPDATE SET yellow_cards = EXCLUDED.yellow_cards, red_cards = EXCLUDED.red_cards`

	_, err := executor.ExecContext(ctx, query, roundID, playerID, yellow, red)
	return mapEntryError(err)
}

// ResetCards zeroes the card counts of every entry in the round.
func (r *postgresRoundEntryRepository) ResetCards(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE round_entries SET yellow_cards = 0, red_cards = 0 WHERE round_id = $1`

	_, err := executor.ExecContext(ctx, query, roundID)
	return err
}

// SetOverride records hand-entered results for a player, typically a
// goalkeeper who rotated between teams. Overridden entries are skipped
// by the team result propagation until the flag is cleared.
func (r *postgresRoundEntryRepository) SetOverride(ctx context.Context, exec SQLExecutor, entry *models.RoundEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_entries (round_id, player_id, present, wins, draws, losses,
			goals_for, goals_against, points, individual_override)
		VALUES ($1, $2, TRUE, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (round_id, player_id)
		DO UPDATE SET
			present = TRUE,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			points = EXCLUDED.points,
			individual_override = TRUE`

	_, err := executor.ExecContext(ctx, query,
		entry.RoundID,
		entry.PlayerID,
		entry.Wins,
		entry.Draws,
		entry.Losses,
		entry.GoalsFor,
		entry.GoalsAgainst,
		entry.Points,
	)
	return mapEntryError(err)
}

func (r *postgresRoundEntryRepository) Update(ctx context.Context, exec SQLExecutor, entry *models.RoundEntry) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE round_entries SET
			team_id = $1,
			present = $2,
			wins = $3,
			draws = $4,
			losses = $5,
			goals_for = $6,
			goals_against = $7,
			points = $8,
			yellow_cards = $9,
			red_cards = $10,
			photo_bonus = $11,
			deflated_ball = $12,
			individual_override = $13
		WHERE id = $14`

	result, err := executor.ExecContext(ctx, query,
		entry.TeamID,
		entry.Present,
		entry.Wins,
		entry.Draws,
		entry.Losses,
		entry.GoalsFor,
		entry.GoalsAgainst,
		entry.Points,
		entry.YellowCards,
		entry.RedCards,
		entry.PhotoBonus,
		entry.DeflatedBall,
		entry.IndividualOverride,
		entry.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundEntryNotFound)
}

func (r *postgresRoundEntryRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.RoundEntry, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + roundEntryColumns + ` FROM round_entries WHERE round_id = $1 ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *postgresRoundEntryRepository) ListByOwner(ctx context.Context, ownerID int, filter RoundFilter) ([]*models.RoundEntry, error) {
	query := `
		SELECT e.id, e.round_id, e.player_id, e.team_id, e.present, e.wins, e.draws, e.losses,
			e.goals_for, e.goals_against, e.points, e.yellow_cards, e.red_cards,
			e.photo_bonus, e.deflated_ball, e.individual_override
		FROM round_entries e
		JOIN rounds r ON r.id = e.round_id
		WHERE r.owner_id = $1`
	args := []interface{}{ownerID}

	if filter.Season != "" {
		args = append(args, filter.Season)
		query += ` AND r.season = $2`
	} else {
		if filter.From != nil {
			args = append(args, *filter.From)
			query += ` AND r.date >= $2`
		}
		if filter.To != nil {
			args = append(args, *filter.To)
			if filter.From != nil {
				query += ` AND r.date <= $3`
			} else {
				query += ` AND r.date <= $2`
			}
		}
	}
	query += ` ORDER BY r.date ASC, e.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *postgresRoundEntryRepository) ClearBonusFlags(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`UPDATE round_entries SET photo_bonus = FALSE, deflated_ball = FALSE WHERE round_id = $1`, roundID)
	return err
}

func (r *postgresRoundEntryRepository) SetBonusFlags(ctx context.Context, exec SQLExecutor, roundID int, photoTeamID, deflatedTeamID *int) error {
	executor := r.getExecutor(exec)
	if photoTeamID != nil {
		_, err := executor.ExecContext(ctx,
			`UPDATE round_entries SET photo_bonus = TRUE WHERE round_id = $1 AND team_id = $2`,
			roundID, *photoTeamID)
		if err != nil {
			return err
		}
	}
	if deflatedTeamID != nil {
		_, err := executor.ExecContext(ctx,
			`UPDATE round_entries SET deflated_ball = TRUE WHERE round_id = $1 AND team_id = $2`,
			roundID, *deflatedTeamID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRoundEntryRepository) Unlink(ctx context.Context, exec SQLExecutor, roundID, playerID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM round_entries WHERE round_id = $1 AND player_id = $2`, roundID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundEntryNotFound)
}

func (r *postgresRoundEntryRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM round_entries WHERE round_id = $1`, roundID)
	return err
}

func (r *postgresRoundEntryRepository) CountWalkInPresences(ctx context.Context, ownerID int, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM round_entries e
		JOIN rounds r ON r.id = e.round_id
		JOIN players p ON p.id = e.player_id
		WHERE r.owner_id = $1 AND r.date >= $2 AND r.date <= $3
			AND e.present AND p.plan = $4`

	var count int
	err := r.db.QueryRowContext(ctx, query, ownerID, from, to, models.PlanWalkIn).Scan(&count)
	return count, err
}

func (r *postgresRoundEntryRepository) SumCards(ctx context.Context, ownerID int, from, to time.Time) (int, int, error) {
	query := `
		SELECT COALESCE(SUM(e.yellow_cards), 0), COALESCE(SUM(e.red_cards), 0)
		FROM round_entries e
		JOIN rounds r ON r.id = e.round_id
		WHERE r.owner_id = $1 AND r.date >= $2 AND r.date <= $3`

	var yellow, red int
	err := r.db.QueryRowContext(ctx, query, ownerID, from, to).Scan(&yellow, &red)
	return yellow, red, err
}

func collectEntries(rows *sql.Rows) ([]*models.RoundEntry, error) {
	entries := make([]*models.RoundEntry, 0)
	for rows.Next() {
		var entry models.RoundEntry
		err := rows.Scan(
			&entry.ID,
			&entry.RoundID,
			&entry.PlayerID,
			&entry.TeamID,
			&entry.Present,
			&entry.Wins,
			&entry.Draws,
			&entry.Losses,
			&entry.GoalsFor,
			&entry.GoalsAgainst,
			&entry.Points,
			&entry.YellowCards,
			&entry.RedCards,
			&entry.PhotoBonus,
			&entry.DeflatedBall,
			&entry.IndividualOverride,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func mapEntryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrRoundEntryUnknownPlayer
	}
	return err
}
