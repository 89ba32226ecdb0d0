package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/peladahub/pelada-system/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
	ErrPlayerReferenced   = errors.New("player is referenced by round history")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	Upsert(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, ownerID, id int) (*models.Player, error)
	FindByName(ctx context.Context, ownerID int, name string) (*models.Player, error)
	ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, ownerID, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, owner_id, name, nickname, position, role, plan, active, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (owner_id, name, nickname, position, role, plan, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.OwnerID,
		player.Name,
		player.Nickname,
		player.Position,
		player.Role,
		player.Plan,
		player.Active,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrPlayerNameConflict
		}
		return err
	}
	return nil
}

// Upsert inserts a player or, on a name conflict within the owner's roster,
// refreshes the mutable fields. Used by the spreadsheet importer, which is
// re-runnable by design.
func (r *postgresPlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (owner_id, name, nickname, position, role, plan, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, name) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			position = EXCLUDED.position,
			role = EXCLUDED.role,
			plan = EXCLUDED.plan,
			active = EXCLUDED.active
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		player.OwnerID,
		player.Name,
		player.Nickname,
		player.Position,
		player.Role,
		player.Plan,
		player.Active,
	).Scan(&player.ID, &player.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, ownerID, id int) (*models.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE owner_id = $1 AND id = $2`, playerColumns)
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, ownerID, id))
}

// FindByName matches on name or nickname, case-insensitively. The importers
// reference players by whatever label the sheet carries.
func (r *postgresPlayerRepository) FindByName(ctx context.Context, ownerID int, name string) (*models.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players
		WHERE owner_id = $1
		  AND (lower(trim(name)) = lower(trim($2)) OR lower(trim(nickname)) = lower(trim($2)))
		ORDER BY id ASC
		LIMIT 1`, playerColumns)
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, ownerID, name))
}

func (r *postgresPlayerRepository) ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]*models.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE owner_id = $1`, playerColumns)
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := r.scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players SET
			name = $1,
			nickname = $2,
			position = $3,
			role = $4,
			plan = $5,
			active = $6
		WHERE owner_id = $7 AND id = $8`

	result, err := r.db.ExecContext(ctx, query,
		player.Name,
		player.Nickname,
		player.Position,
		player.Role,
		player.Plan,
		player.Active,
		player.OwnerID,
		player.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrPlayerNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// Delete removes a player only while no round entry references it; the round
// history is append-only and must stay internally consistent.
func (r *postgresPlayerRepository) Delete(ctx context.Context, ownerID, id int) error {
	query := `DELETE FROM players WHERE owner_id = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrPlayerReferenced
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Nickname,
		&p.Position,
		&p.Role,
		&p.Plan,
		&p.Active,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}
