package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type directoryRepository interface {
	FindStudentByID(ctx context.Context, id int64) (*models.Student, error)
	FindStudentByMatric(ctx context.Context, matric string) (*models.Student, error)
	ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
	SearchStudents(ctx context.Context, term string, limit int) ([]models.Student, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	FindGroupByID(ctx context.Context, id int64) (*models.Group, error)
	ListQuestions(ctx context.Context) ([]models.ReviewQuestion, error)
}

// DirectoryConfig tunes student search.
type DirectoryConfig struct {
	SearchMinLength int
	SearchLimit     int
}

// DirectoryService exposes read-only student, group and question lookups.
type DirectoryService struct {
	repo   directoryRepository
	cfg    DirectoryConfig
	logger *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(repo directoryRepository, cfg DirectoryConfig, logger *zap.Logger) *DirectoryService {
	if cfg.SearchMinLength <= 0 {
		cfg.SearchMinLength = 2
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{repo: repo, cfg: cfg, logger: logger}
}

// GetStudent returns a student by ID.
func (s *DirectoryService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindStudentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch student")
	}
	return student, nil
}

// GroupMembers lists the students of a group ordered by name.
func (s *DirectoryService) GroupMembers(ctx context.Context, groupID int64) ([]models.Student, error) {
	members, err := s.repo.ListStudentsByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch group members")
	}
	return members, nil
}

// Search finds students by name. Terms shorter than the minimum length yield
// an empty result rather than an error.
func (s *DirectoryService) Search(ctx context.Context, term string) ([]models.Student, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < s.cfg.SearchMinLength {
		return []models.Student{}, nil
	}
	students, err := s.repo.SearchStudents(ctx, term, s.cfg.SearchLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "search failed")
	}
	return students, nil
}

// Groups lists every group.
func (s *DirectoryService) Groups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch groups")
	}
	return groups, nil
}

// Questions lists the review questions.
func (s *DirectoryService) Questions(ctx context.Context) ([]models.ReviewQuestion, error) {
	questions, err := s.repo.ListQuestions(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch questions")
	}
	return questions, nil
}
