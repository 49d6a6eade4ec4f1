package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

func newResultFixture(cacheEnabled bool) (*memoryStore, *memoryCache, *ResultService) {
	store := newMemoryStore()
	store.addPeriod(1, 3, 2025, true)
	store.addStudent(10, "Alice", "A001", 1)
	store.addStudent(11, "Bob", "A002", 1)
	store.addStudent(12, "Cara", "A003", 1)
	store.reviews[reviewKey{11, 10, 1}] = models.Review{ReviewerID: 11, ReviewedID: 10, ReviewPeriodID: 1, Question1Score: 5, Question2Score: 3}
	store.reviews[reviewKey{12, 10, 1}] = models.Review{ReviewerID: 12, ReviewedID: 10, ReviewPeriodID: 1, Question1Score: 4, Question2Score: 2}

	cache := newMemoryCache()
	svc := NewResultService(ResultServiceParams{
		Scores:  store,
		Groups:  store,
		Periods: store,
		Cache:   NewResultsCache(cache, cacheEnabled, time.Minute, nil, nil),
	})
	return store, cache, svc
}

func TestResultServiceGroupResults(t *testing.T) {
	_, _, svc := newResultFixture(false)

	results, cached, err := svc.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].StudentName)
	assert.Equal(t, 4.5, results[0].AvgQ1)
	assert.Equal(t, 2.5, results[0].AvgQ2)
	assert.Equal(t, 3.5, results[0].OverallAvg)
	assert.Equal(t, 2, results[0].ReviewCount)
}

func TestResultServiceRequiresIDs(t *testing.T) {
	_, _, svc := newResultFixture(false)

	_, _, err := svc.GroupResults(context.Background(), 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "period_id and group_id are required", appErrors.FromError(err).Message)

	_, _, err = svc.GroupResults(context.Background(), 1, 0)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestResultServiceUnknownGroupIsEmpty(t *testing.T) {
	_, _, svc := newResultFixture(false)

	results, _, err := svc.GroupResults(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResultServiceCaching(t *testing.T) {
	store, cache, svc := newResultFixture(true)

	_, cached, err := svc.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, cache.entries, [2]int64{1, 1})

	store.failWith = errors.New("should not be queried")
	results, cached, err := svc.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, cached)
	require.Len(t, results, 1)
	assert.Equal(t, 3.5, results[0].OverallAvg)
}

func TestResultServiceCacheFailureFallsBack(t *testing.T) {
	_, cache, svc := newResultFixture(true)
	cache.getErr = errors.New("redis unavailable")

	results, cached, err := svc.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, results, 1)
}

func TestResultServiceStoreFailure(t *testing.T) {
	store, _, svc := newResultFixture(false)
	store.failWith = errors.New("db down")

	_, _, err := svc.GroupResults(context.Background(), 1, 1)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestResultServiceExportCSV(t *testing.T) {
	_, _, svc := newResultFixture(false)

	file, err := svc.Export(context.Background(), 1, 1, dto.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Group_A_March_2025_results.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Student Name,Matric Number,Q1 Average,Q2 Average,Overall Average,Number of Reviews", strings.TrimSpace(lines[0]))
	assert.Equal(t, "Alice,A001,4.50,2.50,3.50,2", strings.TrimSpace(lines[1]))
}

func TestResultServiceExportPDF(t *testing.T) {
	_, _, svc := newResultFixture(false)

	file, err := svc.Export(context.Background(), 1, 1, dto.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF"))
}

func TestResultServiceExportErrors(t *testing.T) {
	_, _, svc := newResultFixture(false)

	_, err := svc.Export(context.Background(), 1, 1, dto.ExportFormat("xlsx"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), 1, 42, dto.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Export(context.Background(), 7, 1, dto.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "Group_A-B", sanitizeFilename("Group A/B"))
}

func TestResultServiceDoesNotCacheResultsOvertakenBySubmit(t *testing.T) {
	store := newMemoryStore()
	store.addPeriod(1, 3, 2025, true)
	store.addStudent(10, "Alice", "A001", 1)
	store.addStudent(11, "Bob", "A002", 1)
	cache := NewResultsCache(newMemoryCache(), true, time.Minute, nil, nil)

	results := NewResultService(ResultServiceParams{Scores: store, Groups: store, Periods: store, Cache: cache})
	admission := NewAdmissionService(AdmissionServiceParams{
		Periods:  store,
		Students: store,
		Ledger:   store,
		Reviews:  store,
		Cache:    cache,
		Config:   AdmissionConfig{EnforceGroupMembership: true},
	})

	// Bob's batch commits after the read collected its rows but before the
	// read stores them.
	store.afterScoresRead = func() {
		_, err := admission.SubmitBatch(context.Background(), batch(11, 1, entry(10, 5, 5)))
		require.NoError(t, err)
	}
	first, cached, err := results.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, first)

	second, cached, err := results.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, second, 1)
	assert.Equal(t, int64(10), second[0].StudentID)
	assert.Equal(t, 5.0, second[0].OverallAvg)

	_, cached, err = results.GroupResults(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, cached)
}
