package postgres

import (
	"context"
	"errors"
	"fmt"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/ranking"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RankingStore persists ranking rows in Postgres with max-wins upserts.
type RankingStore struct {
	pool *pgxpool.Pool
}

func NewRankingStore(pool *pgxpool.Pool) *RankingStore {
	return &RankingStore{pool: pool}
}

func (s *RankingStore) Upsert(ctx context.Context, key ranking.Key, rating float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rankings (player_id, period, bucket, region_id, best_rating, attempts)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (player_id, period, bucket, region_id) DO UPDATE
		SET best_rating = GREATEST(rankings.best_rating, EXCLUDED.best_rating),
		    attempts = rankings.attempts + 1`,
		key.PlayerID, string(key.Period), key.Bucket, key.RegionID, rating)
	if err != nil {
		return fmt.Errorf("upsert ranking: %w", err)
	}
	return nil
}

func (s *RankingStore) Top(ctx context.Context, period domain.Period, bucket string, regionID int64, offset, limit int) ([]domain.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, best_rating, attempts
		FROM rankings
		WHERE period = $1 AND bucket = $2 AND region_id = $3
		ORDER BY best_rating DESC, player_id ASC
		OFFSET $4 LIMIT $5`,
		string(period), bucket, regionID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking top: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var entry domain.RankingEntry
		if err := rows.Scan(&entry.PlayerID, &entry.BestRating, &entry.Attempts); err != nil {
			return nil, fmt.Errorf("scan ranking entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *RankingStore) Position(ctx context.Context, key ranking.Key) (domain.RankingEntry, int, error) {
	var entry domain.RankingEntry
	entry.PlayerID = key.PlayerID
	err := s.pool.QueryRow(ctx, `
		SELECT best_rating, attempts FROM rankings
		WHERE player_id = $1 AND period = $2 AND bucket = $3 AND region_id = $4`,
		key.PlayerID, string(key.Period), key.Bucket, key.RegionID,
	).Scan(&entry.BestRating, &entry.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RankingEntry{}, 0, domain.ErrPlayerNotRanked
	}
	if err != nil {
		return domain.RankingEntry{}, 0, fmt.Errorf("ranking position: %w", err)
	}

	var ahead int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM rankings
		WHERE period = $1 AND bucket = $2 AND region_id = $3
		  AND (best_rating > $4 OR (best_rating = $4 AND player_id < $5))`,
		string(key.Period), key.Bucket, key.RegionID, entry.BestRating, key.PlayerID,
	).Scan(&ahead)
	if err != nil {
		return domain.RankingEntry{}, 0, fmt.Errorf("ranking position: %w", err)
	}
	return entry, ahead + 1, nil
}
