package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peer-review-api/internal/models"
)

const periodColumns = "id, period_name, month, year, is_active, created_at"

// PeriodRepository handles persistence for review periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository instantiates a period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns every period, newest first.
func (r *PeriodRepository) List(ctx context.Context) ([]models.ReviewPeriod, error) {
	query := "SELECT " + periodColumns + " FROM review_periods ORDER BY year DESC, month DESC"
	periods := []models.ReviewPeriod{}
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID loads a period by identifier.
func (r *PeriodRepository) FindByID(ctx context.Context, id int64) (*models.ReviewPeriod, error) {
	query := "SELECT " + periodColumns + " FROM review_periods WHERE id = $1"
	var period models.ReviewPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// FindActive returns the currently active period or sql.ErrNoRows.
func (r *PeriodRepository) FindActive(ctx context.Context) (*models.ReviewPeriod, error) {
	query := "SELECT " + periodColumns + " FROM review_periods WHERE is_active = TRUE LIMIT 1"
	var period models.ReviewPeriod
	if err := r.db.GetContext(ctx, &period, query); err != nil {
		return nil, err
	}
	return &period, nil
}

// ExistsByMonthYear checks whether a period already covers the month.
func (r *PeriodRepository) ExistsByMonthYear(ctx context.Context, month, year int) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM review_periods WHERE month = $1 AND year = $2 LIMIT 1`, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check period uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts an inactive period and fills in its generated columns.
func (r *PeriodRepository) Create(ctx context.Context, period *models.ReviewPeriod) error {
	const query = `INSERT INTO review_periods (period_name, month, year, is_active)
VALUES ($1, $2, $3, FALSE)
RETURNING ` + periodColumns
	if err := r.db.GetContext(ctx, period, query, period.PeriodName, period.Month, period.Year); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// SetActive deactivates every period and activates id in one transaction.
// It returns sql.ErrNoRows, leaving all flags untouched, when id does not exist.
func (r *PeriodRepository) SetActive(ctx context.Context, id int64) (_ *models.ReviewPeriod, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE review_periods SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return nil, fmt.Errorf("deactivate periods: %w", err)
	}

	var period models.ReviewPeriod
	query := "UPDATE review_periods SET is_active = TRUE WHERE id = $1 RETURNING " + periodColumns
	if err = tx.GetContext(ctx, &period, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("activate period: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit set active tx: %w", err)
	}
	return &period, nil
}

// DeactivateAll closes every period. It is idempotent.
func (r *PeriodRepository) DeactivateAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE review_periods SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("deactivate periods: %w", err)
	}
	return nil
}
