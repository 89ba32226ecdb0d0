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
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundDateConflict = errors.New("round date conflict")
)

// RoundFilter narrows a history listing to a season or a date window.
// Zero value means the full history.
type RoundFilter struct {
	Season string
	From   *time.Time
	To     *time.Time
}

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, ownerID, id int) (*models.Round, error)
	GetByDate(ctx context.Context, ownerID int, date time.Time) (*models.Round, error)
	List(ctx context.Context, ownerID int, filter RoundFilter) ([]*models.Round, error)
	ListSeasons(ctx context.Context, ownerID int) ([]string, error)
	Update(ctx context.Context, exec SQLExecutor, round *models.Round) error
	SetLabel(ctx context.Context, exec SQLExecutor, id int, label string) error
	CloseAll(ctx context.Context, ownerID int) error
	Delete(ctx context.Context, exec SQLExecutor, ownerID, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (owner_id, date, season, label, closed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		round.OwnerID,
		round.Date,
		round.Season,
		round.Label,
		round.Closed,
	).Scan(&round.ID, &round.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrRoundDateConflict
		}
		return err
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, ownerID, id int) (*models.Round, error) {
	query := `
		SELECT id, owner_id, date, season, label, closed, created_at
		FROM rounds
		WHERE owner_id = $1 AND id = $2`
	return r.scanRound(r.db.QueryRowContext(ctx, query, ownerID, id))
}

func (r *postgresRoundRepository) GetByDate(ctx context.Context, ownerID int, date time.Time) (*models.Round, error) {
	query := `
		SELECT id, owner_id, date, season, label, closed, created_at
		FROM rounds
		WHERE owner_id = $1 AND date = $2`
	return r.scanRound(r.db.QueryRowContext(ctx, query, ownerID, date))
}

func (r *postgresRoundRepository) List(ctx context.Context, ownerID int, filter RoundFilter) ([]*models.Round, error) {
	query := `
		SELECT id, owner_id, date, season, label, closed, created_at
		FROM rounds
		WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filter.Season != "" {
		args = append(args, filter.Season)
		query += ` AND season = $2`
	} else {
		if filter.From != nil {
			args = append(args, *filter.From)
			query += ` AND date >= $2`
		}
		if filter.To != nil {
			args = append(args, *filter.To)
			if filter.From != nil {
				query += ` AND date <= $3`
			} else {
				query += ` AND date <= $2`
			}
		}
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, scanErr := r.scanRound(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) ListSeasons(ctx context.Context, ownerID int) ([]string, error) {
	query := `
		SELECT DISTINCT season FROM rounds
		WHERE owner_id = $1 AND season <> ''
		ORDER BY season ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := make([]string, 0)
	for rows.Next() {
		var s string
		if scanErr := rows.Scan(&s); scanErr != nil {
			return nil, scanErr
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func (r *postgresRoundRepository) Update(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE rounds SET
			date = $1,
			season = $2,
			label = $3,
			closed = $4
		WHERE owner_id = $5 AND id = $6`

	result, err := executor.ExecContext(ctx, query,
		round.Date,
		round.Season,
		round.Label,
		round.Closed,
		round.OwnerID,
		round.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrRoundDateConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) SetLabel(ctx context.Context, exec SQLExecutor, id int, label string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE rounds SET label = $1 WHERE id = $2`, label, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) CloseAll(ctx context.Context, ownerID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rounds SET closed = TRUE WHERE owner_id = $1`, ownerID)
	return err
}

func (r *postgresRoundRepository) Delete(ctx context.Context, exec SQLExecutor, ownerID, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM rounds WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) scanRound(row interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var round models.Round
	err := row.Scan(
		&round.ID,
		&round.OwnerID,
		&round.Date,
		&round.Season,
		&round.Label,
		&round.Closed,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}
