package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SubmissionRepository answers "has this student already submitted" queries.
// Ledger entries are written by ReviewRepository.SubmitBatch.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository instantiates a submission ledger repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// HasSubmitted reports whether the ledger holds an entry for the student and period.
func (r *SubmissionRepository) HasSubmitted(ctx context.Context, studentID, periodID int64) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM review_submissions WHERE student_id = $1 AND review_period_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, studentID, periodID); err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return exists, nil
}
