package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peer-review-api/internal/models"
)

const studentColumns = "id, name, matric_number, group_id"

// DirectoryRepository serves read-only student, group and question lookups.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository instantiates a directory repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindStudentByID loads a student or returns sql.ErrNoRows.
func (r *DirectoryRepository) FindStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindStudentByMatric resolves an exact matric number match or returns sql.ErrNoRows.
func (r *DirectoryRepository) FindStudentByMatric(ctx context.Context, matric string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE matric_number = $1", matric); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListStudentsByGroup returns group members ordered by name.
func (r *DirectoryRepository) ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	students := []models.Student{}
	query := "SELECT " + studentColumns + " FROM students WHERE group_id = $1 ORDER BY name, id"
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return students, nil
}

// SearchStudents matches names case-insensitively on a substring.
func (r *DirectoryRepository) SearchStudents(ctx context.Context, term string, limit int) ([]models.Student, error) {
	students := []models.Student{}
	query := "SELECT " + studentColumns + ` FROM students WHERE LOWER(name) LIKE $1 ESCAPE '\' ORDER BY name LIMIT $2`
	if err := r.db.SelectContext(ctx, &students, query, "%"+escapeLike(strings.ToLower(term))+"%", limit); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// ListGroups returns all groups ordered by name.
func (r *DirectoryRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := r.db.SelectContext(ctx, &groups, `SELECT id, name, created_at FROM groups ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindGroupByID loads a group or returns sql.ErrNoRows.
func (r *DirectoryRepository) FindGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := r.db.GetContext(ctx, &group, `SELECT id, name, created_at FROM groups WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListQuestions returns the review questions in presentation order.
func (r *DirectoryRepository) ListQuestions(ctx context.Context) ([]models.ReviewQuestion, error) {
	questions := []models.ReviewQuestion{}
	const query = `SELECT id, question_number, question_text, max_score FROM review_questions ORDER BY question_number`
	if err := r.db.SelectContext(ctx, &questions, query); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
