package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peer-review-api/internal/models"
)

// ReviewRepository owns review rows and the submission ledger writes tied to them.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository instantiates a review repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const upsertReviewQuery = `INSERT INTO reviews (reviewer_id, reviewed_id, review_period_id, question1_score, question2_score)
VALUES (:reviewer_id, :reviewed_id, :review_period_id, :question1_score, :question2_score)
ON CONFLICT (reviewer_id, reviewed_id, review_period_id)
DO UPDATE SET question1_score = EXCLUDED.question1_score,
              question2_score = EXCLUDED.question2_score,
              created_at = CURRENT_TIMESTAMP`

const recordSubmissionQuery = `INSERT INTO review_submissions (student_id, review_period_id)
VALUES ($1, $2)
ON CONFLICT (student_id, review_period_id) DO NOTHING`

// SubmitBatch upserts every review in order and records the reviewer in the
// submission ledger, all inside one transaction. A resubmission keeps the
// ledger's first submitted_at.
func (r *ReviewRepository) SubmitBatch(ctx context.Context, reviewerID, periodID int64, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit batch tx: %w", err)
	}

	for i := range reviews {
		reviews[i].ReviewerID = reviewerID
		reviews[i].ReviewPeriodID = periodID
		if _, err := tx.NamedExecContext(ctx, upsertReviewQuery, reviews[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert review for student %d: %w", reviews[i].ReviewedID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, recordSubmissionQuery, reviewerID, periodID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit batch tx: %w", err)
	}
	return nil
}

// GroupScores returns every member of the group joined with the reviews they
// received in the period. Members without reviews appear once with nil scores.
func (r *ReviewRepository) GroupScores(ctx context.Context, periodID, groupID int64) ([]models.ReviewScoreRow, error) {
	const query = `SELECT s.id AS student_id, s.name AS student_name, s.matric_number,
       r.question1_score, r.question2_score
FROM students s
LEFT JOIN reviews r ON r.reviewed_id = s.id AND r.review_period_id = $1
WHERE s.group_id = $2
ORDER BY s.name, s.id`
	rows := []models.ReviewScoreRow{}
	if err := r.db.SelectContext(ctx, &rows, query, periodID, groupID); err != nil {
		return nil, fmt.Errorf("load group scores: %w", err)
	}
	return rows, nil
}
