package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

const (
	resultsKeyPrefix = "results"
	scanBatch        = 100
)

// ResultsKey is the cache key of one group's results for one period.
func ResultsKey(periodID, groupID int64) string {
	return fmt.Sprintf("%s:%d:%d", resultsKeyPrefix, periodID, groupID)
}

func periodPattern(periodID int64) string {
	return fmt.Sprintf("%s:%d:*", resultsKeyPrefix, periodID)
}

// generationKey sits outside periodPattern so invalidation never unlinks it.
func generationKey(periodID int64) string {
	return fmt.Sprintf("%s:gen:%d", resultsKeyPrefix, periodID)
}

var errStaleGeneration = errors.New("results generation changed")

// ResultsCacheRepository keeps aggregated group results in Redis as JSON.
// Without a client every read misses and every write is dropped.
type ResultsCacheRepository struct {
	client *redis.Client
}

// NewResultsCacheRepository constructs the repository. client may be nil.
func NewResultsCacheRepository(client *redis.Client) *ResultsCacheRepository {
	return &ResultsCacheRepository{client: client}
}

// Available reports whether a Redis client is attached.
func (r *ResultsCacheRepository) Available() bool {
	return r != nil && r.client != nil
}

// GroupResults loads cached results. A missing key yields appErrors.ErrCacheMiss.
func (r *ResultsCacheRepository) GroupResults(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, error) {
	if !r.Available() {
		return nil, appErrors.ErrCacheMiss
	}
	key := ResultsKey(periodID, groupID)
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, appErrors.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var results []models.StudentResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return results, nil
}

// Generation returns the period's current results generation. A period
// that was never invalidated is at generation zero.
func (r *ResultsCacheRepository) Generation(ctx context.Context, periodID int64) (int64, error) {
	if !r.Available() {
		return 0, nil
	}
	key := generationKey(periodID)
	gen, err := r.client.Get(ctx, key).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	return gen, nil
}

// PutGroupResults stores results under the period/group key for ttl, but only
// while the period is still at generation gen. It reports false when an
// invalidation happened after the caller read gen, in which case nothing is
// written.
func (r *ResultsCacheRepository) PutGroupResults(ctx context.Context, periodID, groupID, gen int64, results []models.StudentResult, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	if results == nil {
		results = []models.StudentResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return false, fmt.Errorf("encode results: %w", err)
	}

	key := ResultsKey(periodID, groupID)
	genKey := generationKey(periodID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("write %s: %w", key, err)
	}
	return true, nil
}

// InvalidatePeriod bumps the period's generation, then drops every group's
// cached results for the period and returns how many keys were removed. The
// bump comes first so a computation that started earlier can no longer store
// its results. Keys are unlinked per scan page so a large keyspace never
// builds one huge command.
func (r *ResultsCacheRepository) InvalidatePeriod(ctx context.Context, periodID int64) (int, error) {
	if !r.Available() {
		return 0, nil
	}
	genKey := generationKey(periodID)
	if err := r.client.Incr(ctx, genKey).Err(); err != nil {
		return 0, fmt.Errorf("bump %s: %w", genKey, err)
	}

	pattern := periodPattern(periodID)
	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := r.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("unlink %d keys for %s: %w", len(keys), pattern, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
