package redis

import (
	"context"
	"fmt"
	"time"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/ranking"
	"github.com/redis/go-redis/v9"
)

// RankingStore keeps each (period window, region scope) leaderboard in a
// sorted set and attempt counts in a companion hash:
//
//	ZADD GT ranking:{period}:{bucket}:{regionID} {rating} {playerID}
//	HINCRBY ranking:{period}:{bucket}:{regionID}:attempts {playerID} 1
//
// ZADD GT gives max-wins semantics natively. Dated windows expire after ttl;
// the ALLTIME window never does.
type RankingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingStore(client *redis.Client, ttl time.Duration) *RankingStore {
	return &RankingStore{client: client, ttl: ttl}
}

func (s *RankingStore) Upsert(ctx context.Context, key ranking.Key, rating float64) error {
	zkey := s.zkey(key.Period, key.Bucket, key.RegionID)
	akey := zkey + ":attempts"

	pipe := s.client.Pipeline()
	pipe.ZAddGT(ctx, zkey, redis.Z{Score: rating, Member: key.PlayerID})
	pipe.HIncrBy(ctx, akey, key.PlayerID, 1)
	if key.Period != domain.PeriodAllTime && s.ttl > 0 {
		pipe.Expire(ctx, zkey, s.ttl)
		pipe.Expire(ctx, akey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert ranking: %w", err)
	}
	return nil
}

func (s *RankingStore) Top(ctx context.Context, period domain.Period, bucket string, regionID int64, offset, limit int) ([]domain.RankingEntry, error) {
	zkey := s.zkey(period, bucket, regionID)

	members, err := s.client.ZRevRangeWithScores(ctx, zkey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("ranking range: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	fields := make([]string, 0, len(members))
	for _, m := range members {
		fields = append(fields, m.Member.(string))
	}
	attempts, err := s.client.HMGet(ctx, zkey+":attempts", fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("ranking attempts: %w", err)
	}

	entries := make([]domain.RankingEntry, 0, len(members))
	for i, m := range members {
		entry := domain.RankingEntry{
			PlayerID:   fields[i],
			BestRating: m.Score,
			Attempts:   1,
		}
		if raw, ok := attempts[i].(string); ok {
			var n int
			if _, err := fmt.Sscanf(raw, "%d", &n); err == nil {
				entry.Attempts = n
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RankingStore) Position(ctx context.Context, key ranking.Key) (domain.RankingEntry, int, error) {
	zkey := s.zkey(key.Period, key.Bucket, key.RegionID)

	rank, err := s.client.ZRevRank(ctx, zkey, key.PlayerID).Result()
	if err == redis.Nil {
		return domain.RankingEntry{}, 0, domain.ErrPlayerNotRanked
	}
	if err != nil {
		return domain.RankingEntry{}, 0, fmt.Errorf("ranking rank: %w", err)
	}
	score, err := s.client.ZScore(ctx, zkey, key.PlayerID).Result()
	if err != nil {
		return domain.RankingEntry{}, 0, fmt.Errorf("ranking score: %w", err)
	}
	attempts, err := s.client.HGet(ctx, zkey+":attempts", key.PlayerID).Int()
	if err != nil {
		attempts = 1
	}
	return domain.RankingEntry{
		PlayerID:   key.PlayerID,
		BestRating: score,
		Attempts:   attempts,
	}, int(rank) + 1, nil
}

func (s *RankingStore) zkey(period domain.Period, bucket string, regionID int64) string {
	return fmt.Sprintf("ranking:%s:%s:%d", period, bucket, regionID)
}
