package ranking_test

import (
	"context"
	"testing"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/infra/memory"
	"ggquiz-engine/internal/ranking"
	"ggquiz-engine/internal/scoring"
)

func submitFixture() (*ranking.SubmitService, *ranking.Service) {
	questions := memory.NewStaticQuestions([]domain.Question{
		{ID: 1, CorrectOption: "A", Difficulty: 2},
		{ID: 2, CorrectOption: "B", Difficulty: 5},
		{ID: 3, CorrectOption: "C", Difficulty: 8},
	}, nil)
	rankings := ranking.NewServiceWithClock(memory.NewRankingStore(), fixedClock())
	return ranking.NewSubmitService(questions, rankings), rankings
}

func TestSubmitCleanRun(t *testing.T) {
	ctx := context.Background()
	authority, rankings := submitFixture()

	rating, err := authority.Submit(ctx, "p1", domain.Outcome{
		Mode:               domain.ModeGlobal,
		DurationSeconds:    10,
		CorrectQuestionIDs: []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rating != 150.0 {
		t.Fatalf("expected rating 150.0, got %v", rating)
	}

	entry, _, err := rankings.Position(ctx, "p1", domain.PeriodDaily, 0)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if entry.BestRating != 150.0 || entry.Attempts != 1 {
		t.Fatalf("expected recorded attempt at 150.0, got %+v", entry)
	}
}

func TestSubmitAppliesWrongQuestionPenalty(t *testing.T) {
	ctx := context.Background()
	authority, _ := submitFixture()

	rating, err := authority.Submit(ctx, "p1", domain.Outcome{
		Mode:               domain.ModeGlobal,
		DurationSeconds:    10,
		CorrectQuestionIDs: []int64{1, 2},
		WrongQuestionID:    3,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if want := scoring.Rate([]int{2, 5}, 10, 8); rating != want {
		t.Fatalf("expected %v, got %v", want, rating)
	}
}

func TestSubmitRejectsUnknownQuestion(t *testing.T) {
	authority, rankings := submitFixture()

	_, err := authority.Submit(context.Background(), "p1", domain.Outcome{
		Mode:               domain.ModeGlobal,
		DurationSeconds:    5,
		CorrectQuestionIDs: []int64{999},
	})
	if err == nil {
		t.Fatalf("expected rejection for unknown question id")
	}
	// A rejected payload must not count as an attempt.
	if _, _, err := rankings.Position(context.Background(), "p1", domain.PeriodDaily, 0); err != domain.ErrPlayerNotRanked {
		t.Fatalf("expected no recorded attempt, got %v", err)
	}
}

func TestSubmitRegionalRecordsRegionScope(t *testing.T) {
	ctx := context.Background()
	questions := memory.NewStaticQuestions([]domain.Question{
		{ID: 4, CorrectOption: "D", Difficulty: 6, RegionID: 7},
	}, nil)
	rankings := ranking.NewServiceWithClock(memory.NewRankingStore(), fixedClock())
	authority := ranking.NewSubmitService(questions, rankings)

	if _, err := authority.Submit(ctx, "p1", domain.Outcome{
		Mode:               domain.ModeRegional,
		DurationSeconds:    3,
		CorrectQuestionIDs: []int64{4},
		RegionID:           7,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, _, err := rankings.Position(ctx, "p1", domain.PeriodMonthly, 7); err != nil {
		t.Fatalf("expected region-scope entry: %v", err)
	}
}
