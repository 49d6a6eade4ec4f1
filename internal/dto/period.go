package dto

import "github.com/noah-isme/peer-review-api/internal/models"

// CreatePeriodRequest describes a new review period. Month must be 1..12.
type CreatePeriodRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=1,max=9999"`
}

// ActivatePeriodRequest selects the period to open.
type ActivatePeriodRequest struct {
	PeriodID int64 `json:"period_id" validate:"required,gt=0"`
}

// PeriodResponse wraps a single period the way the admin UI expects.
type PeriodResponse struct {
	Period *models.ReviewPeriod `json:"period"`
}

// MessageResponse carries a human readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
