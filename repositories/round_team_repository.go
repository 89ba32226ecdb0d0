package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/peladahub/pelada-system/models"
)

var ErrRoundTeamNotFound = errors.New("round team not found")

type RoundTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.RoundTeam) error
	GetOrCreate(ctx context.Context, exec SQLExecutor, roundID int, name string) (*models.RoundTeam, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.RoundTeam, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.RoundTeam) error
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
}

type postgresRoundTeamRepository struct {
	db *sql.DB
}

func NewPostgresRoundTeamRepository(db *sql.DB) RoundTeamRepository {
	return &postgresRoundTeamRepository{db: db}
}

func (r *postgresRoundTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const roundTeamColumns = `id, round_id, name, wins, draws, losses, goals_for, goals_against, points`

func (r *postgresRoundTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.RoundTeam) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_teams (round_id, name, wins, draws, losses, goals_for, goals_against, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		team.RoundID,
		team.Name,
		team.Wins,
		team.Draws,
		team.Losses,
		team.GoalsFor,
		team.GoalsAgainst,
		team.Points,
	).Scan(&team.ID)
}

func (r *postgresRoundTeamRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, roundID int, name string) (*models.RoundTeam, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + roundTeamColumns + ` FROM round_teams WHERE round_id = $1 AND name = $2`

	team, err := scanRoundTeam(executor.QueryRowContext(ctx, query, roundID, name))
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, ErrRoundTeamNotFound) {
		return nil, err
	}

	team = &models.RoundTeam{RoundID: roundID, Name: name}
	if err = r.Create(ctx, exec, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresRoundTeamRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.RoundTeam, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + roundTeamColumns + ` FROM round_teams WHERE round_id = $1 ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.RoundTeam, 0)
	for rows.Next() {
		team, scanErr := scanRoundTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresRoundTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.RoundTeam) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE round_teams SET
			name = $1,
			wins = $2,
			draws = $3,
			losses = $4,
			goals_for = $5,
			goals_against = $6,
			points = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		team.Name,
		team.Wins,
		team.Draws,
		team.Losses,
		team.GoalsFor,
		team.GoalsAgainst,
		team.Points,
		team.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundTeamNotFound)
}

func (r *postgresRoundTeamRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM round_teams WHERE round_id = $1`, roundID)
	return err
}

func scanRoundTeam(row interface{ Scan(...interface{}) error }) (*models.RoundTeam, error) {
	var team models.RoundTeam
	err := row.Scan(
		&team.ID,
		&team.RoundID,
		&team.Name,
		&team.Wins,
		&team.Draws,
		&team.Losses,
		&team.GoalsFor,
		&team.GoalsAgainst,
		&team.Points,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}
