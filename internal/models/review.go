package models

import "time"

// Score bounds shared by both review questions.
const (
	MinScore = 1
	MaxScore = 5
)

// Review holds one reviewer's scores for one groupmate in one period.
// (reviewer_id, reviewed_id, review_period_id) is unique; later writes replace earlier scores.
type Review struct {
	ID             int64     `db:"id" json:"id"`
	ReviewerID     int64     `db:"reviewer_id" json:"reviewer_id"`
	ReviewedID     int64     `db:"reviewed_id" json:"reviewed_id"`
	ReviewPeriodID int64     `db:"review_period_id" json:"review_period_id"`
	Question1Score int       `db:"question1_score" json:"question1_score"`
	Question2Score int       `db:"question2_score" json:"question2_score"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ReviewSubmission records that a student submitted their batch for a period.
type ReviewSubmission struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	ReviewPeriodID int64     `db:"review_period_id" json:"review_period_id"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}
