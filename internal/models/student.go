package models

// Student is a reviewer and reviewee, identified externally by matric number.
type Student struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	MatricNumber string `db:"matric_number" json:"matric_number"`
	GroupID      int64  `db:"group_id" json:"group_id"`
}
