package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ggquiz-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches the question pool for a mode/region from a backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error)
}

// QuestionCache caches question pools with TTL to avoid repeated store hits,
// and deals out shuffled batches of at most batchSize questions per session.
type QuestionCache struct {
	loader    PoolLoader
	ttl       time.Duration
	batchSize int
	clock     func() time.Time
	sf        singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedPool
}

type cachedPool struct {
	pool      []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader PoolLoader, ttl time.Duration, batchSize int) *QuestionCache {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &QuestionCache{
		loader:    loader,
		ttl:       ttl,
		batchSize: batchSize,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:     make(map[string]cachedPool),
	}
}

func (c *QuestionCache) Fetch(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error) {
	key := poolKey(mode, regionID)
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return c.deal(entry.pool), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.pool, nil
		}
		c.mu.RUnlock()

		pool, err := c.loader.LoadPool(ctx, mode, regionID)
		if err != nil {
			return nil, err
		}

		ttl := c.ttlWithJitter()
		c.mu.Lock()
		c.cache[key] = cachedPool{
			pool:      pool,
			expiresAt: now.Add(ttl),
		}
		c.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return c.deal(result.([]domain.Question)), nil
}

// deal copies, shuffles, and truncates the pool so every session sees its own
// batch order.
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
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func poolKey(mode domain.Mode, regionID int64) string {
	return fmt.Sprintf("%s:%d", mode, regionID)
}
