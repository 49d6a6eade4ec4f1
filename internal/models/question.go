package models

// ReviewQuestion is one of the fixed questions every review answers.
type ReviewQuestion struct {
	ID             int64  `db:"id" json:"id"`
	QuestionNumber int    `db:"question_number" json:"question_number"`
	QuestionText   string `db:"question_text" json:"question_text"`
	MaxScore       int    `db:"max_score" json:"max_score"`
}
