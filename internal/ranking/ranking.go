// Package ranking aggregates finished-session ratings into best-of-period
// leaderboards: one row per (player, period window, region scope), max-wins.
package ranking

import (
	"context"
	"fmt"
	"time"

	"ggquiz-engine/internal/domain"
)

// Key identifies one aggregation row. RegionID zero is the global scope;
// Bucket pins the concrete window within the period (a date, an ISO week, a
// month, or "all").
type Key struct {
	PlayerID string
	Period   domain.Period
	Bucket   string
	RegionID int64
}

// Store persists ranking rows. Upsert must keep the maximum rating ever
// submitted under the key and count every submission as one attempt.
type Store interface {
	Upsert(ctx context.Context, key Key, rating float64) error
	Top(ctx context.Context, period domain.Period, bucket string, regionID int64, offset, limit int) ([]domain.RankingEntry, error)
	// Position returns the entry and its 1-based rank, or
	// domain.ErrPlayerNotRanked when the player has no row under the key.
	Position(ctx context.Context, key Key) (domain.RankingEntry, int, error)
}

// BucketFor maps a wall-clock instant to the period's window label, in UTC.
func BucketFor(period domain.Period, t time.Time) string {
	t = t.UTC()
	switch period {
	case domain.PeriodDaily:
		return t.Format("2006-01-02")
	case domain.PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.PeriodMonthly:
		return t.Format("2006-01")
	}
	return "all"
}

// Service fans finished sessions out to every period window and serves
// leaderboard queries.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// NewServiceWithClock is test-only for deterministic window bucketing.
func NewServiceWithClock(store Store, clock func() time.Time) *Service {
	return &Service{store: store, clock: clock}
}

// Record registers one independent attempt. A single submission contributes
// to all four periods under the global scope and, when the session was
// regional, under that region's scope as well.
func (s *Service) Record(ctx context.Context, playerID string, regionID int64, rating float64) error {
	now := s.clock()
	for _, period := range domain.Periods() {
		bucket := BucketFor(period, now)
		if err := s.store.Upsert(ctx, Key{PlayerID: playerID, Period: period, Bucket: bucket}, rating); err != nil {
			return fmt.Errorf("record %s ranking: %w", period, err)
		}
		if regionID > 0 {
			key := Key{PlayerID: playerID, Period: period, Bucket: bucket, RegionID: regionID}
			if err := s.store.Upsert(ctx, key, rating); err != nil {
				return fmt.Errorf("record %s/%d ranking: %w", period, regionID, err)
			}
		}
	}
	return nil
}

// Top returns one leaderboard page for the period's current window.
func (s *Service) Top(ctx context.Context, period domain.Period, regionID int64, page, size int) ([]domain.RankingEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("invalid period %q", period)
	}
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	bucket := BucketFor(period, s.clock())
	return s.store.Top(ctx, period, bucket, regionID, page*size, size)
}

// Position returns a player's entry and 1-based rank in the current window.
func (s *Service) Position(ctx context.Context, playerID string, period domain.Period, regionID int64) (domain.RankingEntry, int, error) {
	if !period.Valid() {
		return domain.RankingEntry{}, 0, fmt.Errorf("invalid period %q", period)
	}
	key := Key{PlayerID: playerID, Period: period, Bucket: BucketFor(period, s.clock()), RegionID: regionID}
	return s.store.Position(ctx, key)
}
