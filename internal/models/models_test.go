package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodName(t *testing.T) {
	assert.Equal(t, "March 2025", PeriodName(3, 2025))
	assert.Equal(t, "January 2024", PeriodName(1, 2024))
	assert.Equal(t, "December 2030", PeriodName(12, 2030))
}

func TestValidMonth(t *testing.T) {
	for _, m := range []int{1, 6, 12} {
		assert.True(t, ValidMonth(m), m)
	}
	for _, m := range []int{-1, 0, 13} {
		assert.False(t, ValidMonth(m), m)
	}
}

func TestRatingFor(t *testing.T) {
	cases := map[float64]string{
		5:    "Excellent",
		4.5:  "Excellent",
		4.49: "Good",
		3.5:  "Good",
		2.5:  "Average",
		1.5:  "Below Average",
		1.49: "Poor",
		0:    "Poor",
	}
	for score, want := range cases {
		assert.Equal(t, want, RatingFor(score), score)
	}
}
