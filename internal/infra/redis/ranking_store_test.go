package redis

import (
	"context"
	"testing"
	"time"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/ranking"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestUpsertKeepsMaxRating(t *testing.T) {
	ctx := context.Background()
	client, _ := testClient(t)
	store := NewRankingStore(client, time.Hour)
	key := ranking.Key{PlayerID: "p1", Period: domain.PeriodDaily, Bucket: "2026-08-29"}

	if err := store.Upsert(ctx, key, 40.0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, key, 75.0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, key, 60.0); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entry, rank, err := store.Position(ctx, key)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if entry.BestRating != 75.0 || entry.Attempts != 3 || rank != 1 {
		t.Fatalf("expected best 75.0 over 3 attempts at rank 1, got %+v rank=%d", entry, rank)
	}
}

func TestTopOrdersByRating(t *testing.T) {
	ctx := context.Background()
	client, _ := testClient(t)
	store := NewRankingStore(client, time.Hour)

	for player, rating := range map[string]float64{"alice": 50, "bob": 120, "carol": 80} {
		key := ranking.Key{PlayerID: player, Period: domain.PeriodAllTime, Bucket: "all"}
		if err := store.Upsert(ctx, key, rating); err != nil {
			t.Fatalf("upsert %s: %v", player, err)
		}
	}

	top, err := store.Top(ctx, domain.PeriodAllTime, "all", 0, 0, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "bob" || top[1].PlayerID != "carol" {
		t.Fatalf("expected [bob carol], got %+v", top)
	}
}

func TestDatedWindowsExpire(t *testing.T) {
	ctx := context.Background()
	client, mr := testClient(t)
	store := NewRankingStore(client, time.Minute)

	daily := ranking.Key{PlayerID: "p1", Period: domain.PeriodDaily, Bucket: "2026-08-29"}
	alltime := ranking.Key{PlayerID: "p1", Period: domain.PeriodAllTime, Bucket: "all"}
	if err := store.Upsert(ctx, daily, 10); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, alltime, 10); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if mr.TTL("ranking:DAILY:2026-08-29:0") == 0 {
		t.Fatalf("expected ttl on dated window key")
	}
	if mr.TTL("ranking:ALLTIME:all:0") != 0 {
		t.Fatalf("alltime window must not expire")
	}
}

func TestPositionUnrankedPlayer(t *testing.T) {
	client, _ := testClient(t)
	store := NewRankingStore(client, time.Hour)
	key := ranking.Key{PlayerID: "ghost", Period: domain.PeriodDaily, Bucket: "2026-08-29"}
	if _, _, err := store.Position(context.Background(), key); err != domain.ErrPlayerNotRanked {
		t.Fatalf("expected ErrPlayerNotRanked, got %v", err)
	}
}
