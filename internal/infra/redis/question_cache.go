package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ggquiz-engine/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches the question pool for a mode/region from a backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error)
}

// QuestionCache caches question pools as JSON blobs in Redis and falls back
// to a loader on cache miss:
//
//	SET questions:{mode}:{regionID} {json} EX {ttl}
//
// Batches handed to sessions are shuffled copies truncated to batchSize.
type QuestionCache struct {
	client    *redis.Client
	loader    PoolLoader
	ttl       time.Duration
	batchSize int
	sf        singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader PoolLoader, ttl time.Duration, batchSize int) *QuestionCache {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &QuestionCache{
		client:    client,
		loader:    loader,
		ttl:       ttl,
		batchSize: batchSize,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Fetch(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error) {
	key := c.key(mode, regionID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var pool []domain.Question
		if err := json.Unmarshal(raw, &pool); err == nil {
			return c.deal(pool), nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var pool []domain.Question
			if err := json.Unmarshal(raw, &pool); err == nil {
				return pool, nil
			}
		}

		pool, err := c.loader.LoadPool(ctx, mode, regionID)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(pool); err == nil {
			_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return c.deal(result.([]domain.Question)), nil
}

func (c *QuestionCache) deal(pool []domain.Question) []domain.Question {
	batch := append([]domain.Question(nil), pool...)
	c.mu.Lock()
	c.rnd.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	c.mu.Unlock()
	if len(batch) > c.batchSize {
		batch = batch[:c.batchSize]
	}
	return batch
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func (c *QuestionCache) key(mode domain.Mode, regionID int64) string {
	return fmt.Sprintf("questions:%s:%d", mode, regionID)
}
