package models

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ReviewPeriod is a calendar month during which peer reviews may be submitted.
// At most one period is active at any time.
type ReviewPeriod struct {
	ID         int64     `db:"id" json:"id"`
	PeriodName string    `db:"period_name" json:"period_name"`
	Month      int       `db:"month" json:"month"`
	Year       int       `db:"year" json:"year"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ValidMonth reports whether month is within 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// PeriodName derives the display label for a month/year pair, e.g. "March 2025".
// Callers must validate the month first.
func PeriodName(month, year int) string {
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}
