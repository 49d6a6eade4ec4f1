package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

func TestResultsKey(t *testing.T) {
	assert.Equal(t, "results:3:7", ResultsKey(3, 7))
	assert.Equal(t, "results:3:*", periodPattern(3))
	assert.Equal(t, "results:gen:3", generationKey(3))
}

func TestResultsCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewResultsCacheRepository(nil)
	ctx := context.Background()

	assert.False(t, repo.Available())
	_, err := repo.GroupResults(ctx, 1, 1)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	stored, err := repo.PutGroupResults(ctx, 1, 1, 0, []models.StudentResult{{StudentID: 1}}, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)

	gen, err := repo.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gen)

	n, err := repo.InvalidatePeriod(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResultsCacheRepositoryUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewResultsCacheRepository(client)
	ctx := context.Background()

	_, err := repo.GroupResults(ctx, 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "results:1:1")

	_, err = repo.Generation(ctx, 1)
	assert.Error(t, err)

	stored, err := repo.PutGroupResults(ctx, 1, 1, 0, nil, time.Minute)
	assert.Error(t, err)
	assert.False(t, stored)

	_, err = repo.InvalidatePeriod(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results:gen:1")
}
