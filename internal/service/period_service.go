package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	"github.com/noah-isme/peer-review-api/pkg/database"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.ReviewPeriod, error)
	FindByID(ctx context.Context, id int64) (*models.ReviewPeriod, error)
	FindActive(ctx context.Context) (*models.ReviewPeriod, error)
	ExistsByMonthYear(ctx context.Context, month, year int) (bool, error)
	Create(ctx context.Context, period *models.ReviewPeriod) error
	SetActive(ctx context.Context, id int64) (*models.ReviewPeriod, error)
	DeactivateAll(ctx context.Context) error
}

var errDuplicatePeriod = appErrors.Clone(appErrors.ErrConflict, "a period for this month and year already exists")

// PeriodService owns the review period lifecycle and the single active period rule.
type PeriodService struct {
	repo      periodRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewPeriodService creates a new period service instance.
func NewPeriodService(repo periodRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// List returns every period ordered by year and month, newest first.
func (s *PeriodService) List(ctx context.Context) ([]models.ReviewPeriod, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch periods")
	}
	return periods, nil
}

// Get returns a period by ID.
func (s *PeriodService) Get(ctx context.Context, id int64) (*models.ReviewPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Internal(err, "failed to load period")
	}
	return period, nil
}

// GetActive returns the open period. No active period is reported as NOT_FOUND,
// distinct from a store failure.
func (s *PeriodService) GetActive(ctx context.Context) (*models.ReviewPeriod, error) {
	period, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active review period")
		}
		return nil, appErrors.Internal(err, "failed to fetch active period")
	}
	return period, nil
}

// Create adds an inactive period for a month/year pair that does not exist yet.
func (s *PeriodService) Create(ctx context.Context, req dto.CreatePeriodRequest) (*models.ReviewPeriod, error) {
	if req.Month == 0 || req.Year == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month and year are required")
	}
	if !models.ValidMonth(req.Month) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month (must be 1-12)")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	exists, err := s.repo.ExistsByMonthYear(ctx, req.Month, req.Year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check period uniqueness")
	}
	if exists {
		return nil, errDuplicatePeriod
	}

	period := &models.ReviewPeriod{
		PeriodName: models.PeriodName(req.Month, req.Year),
		Month:      req.Month,
		Year:       req.Year,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		// a concurrent create can slip past the existence check
		if database.IsUniqueViolation(err) {
			return nil, errDuplicatePeriod
		}
		return nil, appErrors.Internal(err, "failed to create period")
	}

	s.logger.Info("review period created", zap.Int64("period_id", period.ID), zap.String("period_name", period.PeriodName))
	return period, nil
}

// Activate makes the given period the only active one.
func (s *PeriodService) Activate(ctx context.Context, req dto.ActivatePeriodRequest) (*models.ReviewPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "period ID is required")
	}

	period, err := s.repo.SetActive(ctx, req.PeriodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		s.logger.Error("failed to activate period", zap.Int64("period_id", req.PeriodID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to activate period")
	}

	s.metrics.IncPeriodTransition("activate")
	s.logger.Info("review period activated", zap.Int64("period_id", period.ID), zap.String("period_name", period.PeriodName))
	return period, nil
}

// DeactivateAll closes every period.
func (s *PeriodService) DeactivateAll(ctx context.Context) error {
	if err := s.repo.DeactivateAll(ctx); err != nil {
		s.logger.Error("failed to deactivate periods", zap.Error(err))
		return appErrors.Internal(err, "failed to deactivate periods")
	}
	s.metrics.IncPeriodTransition("deactivate_all")
	s.logger.Info("all review periods deactivated")
	return nil
}
