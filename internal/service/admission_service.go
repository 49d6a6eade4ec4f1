package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
	"github.com/noah-isme/peer-review-api/pkg/middleware/requestid"
)

type submissionLedger interface {
	HasSubmitted(ctx context.Context, studentID, periodID int64) (bool, error)
}

type reviewWriter interface {
	SubmitBatch(ctx context.Context, reviewerID, periodID int64, reviews []models.Review) error
}

type studentDirectory interface {
	FindStudentByID(ctx context.Context, id int64) (*models.Student, error)
	FindStudentByMatric(ctx context.Context, matric string) (*models.Student, error)
	ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
}

type resultsWarmer interface {
	Warm(periodID, groupID int64)
}

type periodReader interface {
	FindByID(ctx context.Context, id int64) (*models.ReviewPeriod, error)
	FindActive(ctx context.Context) (*models.ReviewPeriod, error)
}

// AdmissionConfig tunes submission checks.
type AdmissionConfig struct {
	EnforceGroupMembership bool
}

// AdmissionServiceParams groups constructor dependencies.
type AdmissionServiceParams struct {
	Periods   periodReader
	Students  studentDirectory
	Ledger    submissionLedger
	Reviews   reviewWriter
	Cache     *ResultsCache
	Warmer    resultsWarmer
	Refresher resultsRefresher
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    AdmissionConfig
}

// AdmissionService gates student login and batch review submission.
type AdmissionService struct {
	periods   periodReader
	students  studentDirectory
	ledger    submissionLedger
	reviews   reviewWriter
	cache     *ResultsCache
	warmer    resultsWarmer
	refresher resultsRefresher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AdmissionConfig
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(params AdmissionServiceParams) *AdmissionService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{
		periods:   params.Periods,
		students:  params.Students,
		ledger:    params.Ledger,
		reviews:   params.Reviews,
		cache:     params.Cache,
		warmer:    params.Warmer,
		refresher: params.Refresher,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		cfg:       params.Config,
	}
}

// Login resolves a student by matric number against the active period. It
// fails when the matric number is unknown or no period is open; an existing
// submission is reported, not rejected.
func (s *AdmissionService) Login(ctx context.Context, req dto.StudentLoginRequest) (*dto.StudentLoginResponse, error) {
	req.MatricNumber = strings.TrimSpace(req.MatricNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "matric number is required")
	}

	student, err := s.students.FindStudentByMatric(ctx, req.MatricNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invalid matric number, please check and try again")
		}
		return nil, appErrors.Internal(err, "authentication failed, please try again")
	}

	period, err := s.periods.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActivePeriod
		}
		return nil, appErrors.Internal(err, "authentication failed, please try again")
	}

	submitted, err := s.ledger.HasSubmitted(ctx, student.ID, period.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "authentication failed, please try again")
	}

	return &dto.StudentLoginResponse{
		Student:          *student,
		PeriodID:         period.ID,
		PeriodName:       period.PeriodName,
		AlreadySubmitted: submitted,
	}, nil
}

// SubmitBatch validates a reviewer's whole batch before writing anything, then
// upserts every review and records the submission in one transaction.
// Re-submitting replaces earlier scores.
func (s *AdmissionService) SubmitBatch(ctx context.Context, req dto.SubmitReviewsRequest) (*dto.SubmitReviewsResponse, error) {
	if err := s.validateBatch(req); err != nil {
		return nil, err
	}

	period, err := s.periods.FindByID(ctx, req.ReviewPeriodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review period not found")
		}
		return nil, appErrors.Internal(err, "failed to submit reviews")
	}
	if !period.IsActive {
		return nil, appErrors.ErrPeriodInactive
	}

	reviewer, err := s.students.FindStudentByID(ctx, req.ReviewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reviewer not found")
		}
		return nil, appErrors.Internal(err, "failed to submit reviews")
	}

	if s.cfg.EnforceGroupMembership {
		if err := s.checkGroupmates(ctx, reviewer, req.Reviews); err != nil {
			return nil, err
		}
	}

	reviews := lastWriteWins(req.Reviews)
	if err := s.reviews.SubmitBatch(ctx, reviewer.ID, period.ID, reviews); err != nil {
		s.logger.Error("failed to store review batch",
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Int64("reviewer_id", reviewer.ID),
			zap.Int64("period_id", period.ID),
			zap.Error(err))
		return nil, appErrors.Internal(err, "failed to submit reviews")
	}

	s.syncResultsCache(ctx, period.ID, reviewer, reviews)

	received := len(req.Reviews)
	s.metrics.RecordBatchSubmission(received)
	s.logger.Info("review batch submitted",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Int64("reviewer_id", reviewer.ID),
		zap.Int64("period_id", period.ID),
		zap.Int("count", received),
		zap.Int("distinct", len(reviews)))

	return &dto.SubmitReviewsResponse{Message: "Reviews submitted successfully", Count: received}, nil
}

// syncResultsCache drops the period's cached results after a committed batch
// and schedules a warm-up of the reviewer's group. If the drop fails, the
// groups the batch touched are recomputed right away so their entries cannot
// outlive the write.
func (s *AdmissionService) syncResultsCache(ctx context.Context, periodID int64, reviewer *models.Student, reviews []models.Review) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.InvalidatePeriod(ctx, periodID); err == nil {
		if s.warmer != nil {
			s.warmer.Warm(periodID, reviewer.GroupID)
		}
		return
	}

	for _, groupID := range s.touchedGroups(ctx, reviewer, reviews) {
		if s.refresher == nil {
			if s.warmer != nil {
				s.warmer.Warm(periodID, groupID)
			}
			continue
		}
		if err := s.refresher.Refresh(ctx, periodID, groupID); err != nil {
			s.logger.Error("results cache may be stale after failed invalidation",
				zap.String("request_id", requestid.FromContext(ctx)),
				zap.Int64("period_id", periodID),
				zap.Int64("group_id", groupID),
				zap.Error(err))
		}
	}
}

// touchedGroups lists the reviewer's group followed by the groups of reviewed
// students outside it. With group membership enforced that is one group.
func (s *AdmissionService) touchedGroups(ctx context.Context, reviewer *models.Student, reviews []models.Review) []int64 {
	groups := []int64{reviewer.GroupID}
	if s.cfg.EnforceGroupMembership {
		return groups
	}
	seen := map[int64]struct{}{reviewer.GroupID: {}}
	for _, r := range reviews {
		student, err := s.students.FindStudentByID(ctx, r.ReviewedID)
		if err != nil {
			continue
		}
		if _, ok := seen[student.GroupID]; ok {
			continue
		}
		seen[student.GroupID] = struct{}{}
		groups = append(groups, student.GroupID)
	}
	return groups
}

func (s *AdmissionService) validateBatch(req dto.SubmitReviewsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Question1Score" || fe.Field() == "Question2Score" {
					return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "scores must be between 1 and 5")
				}
			}
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission data")
	}
	for _, entry := range req.Reviews {
		if entry.ReviewedID == req.ReviewerID {
			return appErrors.Clone(appErrors.ErrValidation, "students cannot review themselves")
		}
	}
	return nil
}

func (s *AdmissionService) checkGroupmates(ctx context.Context, reviewer *models.Student, entries []dto.ReviewEntry) error {
	members, err := s.students.ListStudentsByGroup(ctx, reviewer.GroupID)
	if err != nil {
		return appErrors.Internal(err, "failed to submit reviews")
	}
	groupmates := make(map[int64]struct{}, len(members))
	for _, m := range members {
		groupmates[m.ID] = struct{}{}
	}
	for _, entry := range entries {
		if _, ok := groupmates[entry.ReviewedID]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %d is not in the reviewer's group", entry.ReviewedID))
		}
	}
	return nil
}

// lastWriteWins collapses entries targeting the same student, keeping the
// scores of the last one while preserving first-seen order.
func lastWriteWins(entries []dto.ReviewEntry) []models.Review {
	index := make(map[int64]int, len(entries))
	reviews := make([]models.Review, 0, len(entries))
	for _, entry := range entries {
		review := models.Review{
			ReviewedID:     entry.ReviewedID,
			Question1Score: entry.Question1Score,
			Question2Score: entry.Question2Score,
		}
		if i, ok := index[entry.ReviewedID]; ok {
			reviews[i] = review
			continue
		}
		index[entry.ReviewedID] = len(reviews)
		reviews = append(reviews, review)
	}
	return reviews
}
