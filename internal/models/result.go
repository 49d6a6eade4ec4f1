package models

// ReviewScoreRow is one row of the students LEFT JOIN reviews projection used
// for aggregation. Scores are nil for students without reviews.
type ReviewScoreRow struct {
	StudentID      int64  `db:"student_id"`
	StudentName    string `db:"student_name"`
	MatricNumber   string `db:"matric_number"`
	Question1Score *int   `db:"question1_score"`
	Question2Score *int   `db:"question2_score"`
}

// StudentResult is the aggregated score of a reviewed student for one period.
type StudentResult struct {
	StudentID    int64   `json:"student_id"`
	StudentName  string  `json:"student_name"`
	MatricNumber string  `json:"matric_number"`
	AvgQ1        float64 `json:"avg_q1"`
	AvgQ2        float64 `json:"avg_q2"`
	OverallAvg   float64 `json:"overall_avg"`
	ReviewCount  int     `json:"review_count"`
	Rating       string  `json:"rating"`
}

// RatingFor maps an overall average onto the performance band shown to admins.
func RatingFor(overall float64) string {
	switch {
	case overall >= 4.5:
		return "Excellent"
	case overall >= 3.5:
		return "Good"
	case overall >= 2.5:
		return "Average"
	case overall >= 1.5:
		return "Below Average"
	default:
		return "Poor"
	}
}
