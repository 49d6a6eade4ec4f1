package dto

import "github.com/noah-isme/peer-review-api/internal/models"

// StudentLoginRequest identifies a student by matric number only.
type StudentLoginRequest struct {
	MatricNumber string `json:"matric_number" validate:"required"`
}

// StudentLoginResponse tells the client whether the review form should be shown.
type StudentLoginResponse struct {
	Student          models.Student `json:"student"`
	PeriodID         int64          `json:"period_id"`
	PeriodName       string         `json:"period_name"`
	AlreadySubmitted bool           `json:"already_submitted"`
}

// ReviewEntry is one groupmate's scores inside a batch.
type ReviewEntry struct {
	ReviewedID     int64 `json:"reviewed_id" validate:"required,gt=0"`
	Question1Score int   `json:"question1_score" validate:"min=1,max=5"`
	Question2Score int   `json:"question2_score" validate:"min=1,max=5"`
}

// SubmitReviewsRequest is a reviewer's full batch for one period.
type SubmitReviewsRequest struct {
	ReviewerID     int64         `json:"reviewer_id" validate:"required,gt=0"`
	ReviewPeriodID int64         `json:"review_period_id" validate:"required,gt=0"`
	Reviews        []ReviewEntry `json:"reviews" validate:"required,min=1,dive"`
}

// SubmitReviewsResponse acknowledges a stored batch.
type SubmitReviewsResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
