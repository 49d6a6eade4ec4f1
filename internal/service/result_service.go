package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
	"github.com/noah-isme/peer-review-api/pkg/export"
)

type scoreRepository interface {
	GroupScores(ctx context.Context, periodID, groupID int64) ([]models.ReviewScoreRow, error)
}

type groupLookup interface {
	FindGroupByID(ctx context.Context, id int64) (*models.Group, error)
}

type periodLookup interface {
	FindByID(ctx context.Context, id int64) (*models.ReviewPeriod, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ResultServiceParams groups constructor dependencies.
type ResultServiceParams struct {
	Scores   scoreRepository
	Groups   groupLookup
	Periods  periodLookup
	Cache   *ResultsCache
	Metrics *MetricsService
	Logger  *zap.Logger
	CSV     datasetRenderer
	PDF     datasetRenderer
}

// ResultService computes per-student averages for a group and period.
type ResultService struct {
	scores  scoreRepository
	groups  groupLookup
	periods periodLookup
	cache   *ResultsCache
	metrics *MetricsService
	logger  *zap.Logger
	csv     datasetRenderer
	pdf     datasetRenderer
}

var exportHeaders = []string{
	"Student Name",
	"Matric Number",
	"Q1 Average",
	"Q2 Average",
	"Overall Average",
	"Number of Reviews",
}

// NewResultService constructs a ResultService.
func NewResultService(params ResultServiceParams) *ResultService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ResultService{
		scores:  params.Scores,
		groups:  params.Groups,
		periods: params.Periods,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		csv:     csv,
		pdf:     pdf,
	}
}

// GroupResults returns the aggregated results for every reviewed student of the
// group. The boolean reports whether the payload came from cache.
func (s *ResultService) GroupResults(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, bool, error) {
	if periodID <= 0 || groupID <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "period_id and group_id are required")
	}

	if cached, hit := s.cache.Lookup(ctx, periodID, groupID); hit {
		return cached, true, nil
	}

	snap := s.cache.Begin(ctx, periodID)
	results, err := s.compute(ctx, periodID, groupID)
	if err != nil {
		return nil, false, err
	}
	s.cache.Store(ctx, snap, groupID, results)
	return results, false, nil
}

// Refresh recomputes a group's results from the store and overwrites the
// cached entry, ignoring whatever is cached now.
func (s *ResultService) Refresh(ctx context.Context, periodID, groupID int64) error {
	if !s.cache.Enabled() {
		return nil
	}
	snap := s.cache.Begin(ctx, periodID)
	results, err := s.compute(ctx, periodID, groupID)
	if err != nil {
		return err
	}
	s.cache.Store(ctx, snap, groupID, results)
	return nil
}

func (s *ResultService) compute(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, error) {
	start := time.Now()
	rows, err := s.scores.GroupScores(ctx, periodID, groupID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load results")
	}
	results := Aggregate(rows)
	s.metrics.ObserveAggregation(time.Since(start))
	return results, nil
}

// Export renders a group's results as a CSV or PDF attachment named after the
// group and period.
func (s *ResultService) Export(ctx context.Context, periodID, groupID int64, format dto.ExportFormat) (*dto.ResultsExport, error) {
	var renderer datasetRenderer
	switch dto.ExportFormat(strings.ToLower(string(format))) {
	case dto.ExportFormatCSV, "":
		renderer = s.csv
	case dto.ExportFormatPDF:
		renderer = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	results, _, err := s.GroupResults(ctx, periodID, groupID)
	if err != nil {
		return nil, err
	}

	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review period not found")
		}
		return nil, appErrors.Internal(err, "failed to load review period")
	}
	group, err := s.groups.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Internal(err, "failed to load group")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s - %s Peer Review Results", group.Name, period.PeriodName),
		Headers: exportHeaders,
		Rows:    make([][]string, 0, len(results)),
	}
	for _, r := range results {
		dataset.Rows = append(dataset.Rows, []string{
			r.StudentName,
			r.MatricNumber,
			fmt.Sprintf("%.2f", r.AvgQ1),
			fmt.Sprintf("%.2f", r.AvgQ2),
			fmt.Sprintf("%.2f", r.OverallAvg),
			strconv.Itoa(r.ReviewCount),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("failed to render results export", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}

	return &dto.ResultsExport{
		Filename:    fmt.Sprintf("%s_%s_results.%s", sanitizeFilename(group.Name), sanitizeFilename(period.PeriodName), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
