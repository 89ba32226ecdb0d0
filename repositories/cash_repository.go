package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/peladahub/pelada-system/models"
)

var ErrCashEntryNotFound = errors.New("cash entry not found")

type CashRepository interface {
	CreateEntry(ctx context.Context, entry *models.CashEntry) error
	ListEntries(ctx context.Context, ownerID int, season string) ([]*models.CashEntry, error)
	DeleteEntry(ctx context.Context, ownerID, id int) error
	SumManual(ctx context.Context, ownerID int, season string, month int) (in float64, out float64, err error)

	SetMonthlyFlag(ctx context.Context, ownerID int, flag *models.MonthlyFeeFlag) error
	ListMonthlyFlags(ctx context.Context, ownerID int, season string) ([]*models.MonthlyFeeFlag, error)
	CountPaidMonthlies(ctx context.Context, ownerID int, season string, month int) (int, error)

	GetOpeningBalance(ctx context.Context, ownerID int, season string) (float64, error)
	SetOpeningBalance(ctx context.Context, ownerID int, season string, amount float64) error
}

type postgresCashRepository struct {
	db *sql.DB
}

func NewPostgresCashRepository(db *sql.DB) CashRepository {
	return &postgresCashRepository{db: db}
}

func (r *postgresCashRepository) CreateEntry(ctx context.Context, entry *models.CashEntry) error {
	query := `
		INSERT INTO cash_entries (owner_id, season, date, round_id, category, description, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		entry.OwnerID,
		entry.Season,
		entry.Date,
		entry.RoundID,
		entry.Category,
		entry.Description,
		entry.Amount,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *postgresCashRepository) ListEntries(ctx context.Context, ownerID int, season string) ([]*models.CashEntry, error) {
	query := `
		SELECT id, owner_id, season, date, round_id, category, description, amount, created_at
		FROM cash_entries
		WHERE owner_id = $1 AND season = $2
		ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.CashEntry, 0)
	for rows.Next() {
		var entry models.CashEntry
		scanErr := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Season,
			&entry.Date,
			&entry.RoundID,
			&entry.Category,
			&entry.Description,
			&entry.Amount,
			&entry.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *postgresCashRepository) DeleteEntry(ctx context.Context, ownerID, id int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cash_entries WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCashEntryNotFound)
}

func (r *postgresCashRepository) SumManual(ctx context.Context, ownerID int, season string, month int) (float64, float64, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE category = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE category = $2), 0)
		FROM cash_entries
		WHERE owner_id = $3 AND season = $4 AND EXTRACT(MONTH FROM date) = $5`

	var in, out float64
	err := r.db.QueryRowContext(ctx, query,
		models.CashManualIn, models.CashManualOut, ownerID, season, month).Scan(&in, &out)
	return in, out, err
}

func (r *postgresCashRepository) SetMonthlyFlag(ctx context.Context, ownerID int, flag *models.MonthlyFeeFlag) error {
	query := `
		INSERT INTO monthly_fee_flags (owner_id, season, player_id, month, paid)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, season, player_id, month)
		DO UPDATE SET paid = EXCLUDED.paid`

	_, err := r.db.ExecContext(ctx, query, ownerID, flag.Season, flag.PlayerID, flag.Month, flag.Paid)
	return err
}

func (r *postgresCashRepository) ListMonthlyFlags(ctx context.Context, ownerID int, season string) ([]*models.MonthlyFeeFlag, error) {
	query := `
		SELECT season, player_id, month, paid
		FROM monthly_fee_flags
		WHERE owner_id = $1 AND season = $2
		ORDER BY player_id ASC, month ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make([]*models.MonthlyFeeFlag, 0)
	for rows.Next() {
		var flag models.MonthlyFeeFlag
		if scanErr := rows.Scan(&flag.Season, &flag.PlayerID, &flag.Month, &flag.Paid); scanErr != nil {
			return nil, scanErr
		}
		flags = append(flags, &flag)
	}
	return flags, rows.Err()
}

func (r *postgresCashRepository) CountPaidMonthlies(ctx context.Context, ownerID int, season string, month int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM monthly_fee_flags
		WHERE owner_id = $1 AND season = $2 AND month = $3 AND paid`

	var count int
	err := r.db.QueryRowContext(ctx, query, ownerID, season, month).Scan(&count)
	return count, err
}

func (r *postgresCashRepository) GetOpeningBalance(ctx context.Context, ownerID int, season string) (float64, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM cash_openings WHERE owner_id = $1 AND season = $2`,
		ownerID, season).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return amount, err
}

func (r *postgresCashRepository) SetOpeningBalance(ctx context.Context, ownerID int, season string, amount float64) error {
	query := `
		INSERT INTO cash_openings (owner_id, season, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, season)
		DO UPDATE SET amount = EXCLUDED.amount`

	_, err := r.db.ExecContext(ctx, query, ownerID, season, amount)
	return err
}
