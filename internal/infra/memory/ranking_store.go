package memory

import (
	"context"
	"sort"
	"sync"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/ranking"
)

// RankingStore is an in-memory implementation of ranking.Store.
type RankingStore struct {
	mu   sync.RWMutex
	rows map[ranking.Key]*rankingRow
}

type rankingRow struct {
	best     float64
	attempts int
}

func NewRankingStore() *RankingStore {
	return &RankingStore{rows: make(map[ranking.Key]*rankingRow)}
}

func (s *RankingStore) Upsert(_ context.Context, key ranking.Key, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[key]
	if !ok {
		s.rows[key] = &rankingRow{best: rating, attempts: 1}
		return nil
	}
	row.attempts++
	if rating > row.best {
		row.best = rating
	}
	return nil
}

func (s *RankingStore) Top(_ context.Context, period domain.Period, bucket string, regionID int64, offset, limit int) ([]domain.RankingEntry, error) {
	s.mu.RLock()
	entries := s.windowLocked(period, bucket, regionID)
	s.mu.RUnlock()

	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *RankingStore) Position(_ context.Context, key ranking.Key) (domain.RankingEntry, int, error) {
	s.mu.RLock()
	entries := s.windowLocked(key.Period, key.Bucket, key.RegionID)
	s.mu.RUnlock()

	for i, e := range entries {
		if e.PlayerID == key.PlayerID {
			return e, i + 1, nil
		}
	}
	return domain.RankingEntry{}, 0, domain.ErrPlayerNotRanked
}

func (s *RankingStore) windowLocked(period domain.Period, bucket string, regionID int64) []domain.RankingEntry {
	var entries []domain.RankingEntry
	for key, row := range s.rows {
		if key.Period != period || key.Bucket != bucket || key.RegionID != regionID {
			continue
		}
		entries = append(entries, domain.RankingEntry{
			PlayerID:   key.PlayerID,
			BestRating: row.best,
			Attempts:   row.attempts,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestRating != entries[j].BestRating {
			return entries[i].BestRating > entries[j].BestRating
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	return entries
}
