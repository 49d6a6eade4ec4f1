package service

import (
	"sort"

	"github.com/noah-isme/peer-review-api/internal/models"
)

type scoreTally struct {
	result models.StudentResult
	sumQ1  int
	sumQ2  int
}

// Aggregate folds the student/review projection into per-student averages.
// Rows without scores only mark a student as present; students that received
// no reviews are left out. Averages are rounded half-up to two decimals using
// integer arithmetic so that e.g. 4.5 never drifts to 4.49.
func Aggregate(rows []models.ReviewScoreRow) []models.StudentResult {
	tallies := make(map[int64]*scoreTally)
	for _, row := range rows {
		if row.Question1Score == nil || row.Question2Score == nil {
			continue
		}
		t, ok := tallies[row.StudentID]
		if !ok {
			t = &scoreTally{result: models.StudentResult{
				StudentID:    row.StudentID,
				StudentName:  row.StudentName,
				MatricNumber: row.MatricNumber,
			}}
			tallies[row.StudentID] = t
		}
		t.sumQ1 += *row.Question1Score
		t.sumQ2 += *row.Question2Score
		t.result.ReviewCount++
	}

	results := make([]models.StudentResult, 0, len(tallies))
	for _, t := range tallies {
		n := t.result.ReviewCount
		t.result.AvgQ1 = roundedRatio(t.sumQ1, n)
		t.result.AvgQ2 = roundedRatio(t.sumQ2, n)
		t.result.OverallAvg = roundedRatio(t.sumQ1+t.sumQ2, 2*n)
		t.result.Rating = models.RatingFor(t.result.OverallAvg)
		results = append(results, t.result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].StudentName != results[j].StudentName {
			return results[i].StudentName < results[j].StudentName
		}
		return results[i].StudentID < results[j].StudentID
	})
	return results
}

// roundedRatio returns num/den rounded half-up to two decimal places.
func roundedRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	hundredths := (2*num*100 + den) / (2 * den)
	return float64(hundredths) / 100
}
