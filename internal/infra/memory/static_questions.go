package memory

import (
	"context"

	"ggquiz-engine/internal/domain"
)

// StaticQuestions is a question pool backed by in-memory slices (useful for
// tests/demos). It serves pool loads, difficulty lookups for the submission
// authority, and the region list.
type StaticQuestions struct {
	questions []domain.Question
	regions   []domain.Region
}

func NewStaticQuestions(questions []domain.Question, regions []domain.Region) *StaticQuestions {
	return &StaticQuestions{questions: questions, regions: regions}
}

// LoadPool returns the candidate questions for a mode/region. GLOBAL mixes
// every region; REGIONAL narrows to one. Order is the seeded order, which
// keeps demo sessions deterministic.
func (s *StaticQuestions) LoadPool(_ context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error) {
	if mode == domain.ModeGlobal {
		return append([]domain.Question(nil), s.questions...), nil
	}
	var pool []domain.Question
	for _, q := range s.questions {
		if q.RegionID == regionID {
			pool = append(pool, q)
		}
	}
	return pool, nil
}

func (s *StaticQuestions) Difficulties(_ context.Context, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	for _, q := range s.questions {
		out[q.ID] = q.Difficulty
	}
	filtered := make(map[int64]int, len(ids))
	for _, id := range ids {
		if d, ok := out[id]; ok {
			filtered[id] = d
		}
	}
	return filtered, nil
}

func (s *StaticQuestions) ListRegions(_ context.Context) ([]domain.Region, error) {
	return append([]domain.Region(nil), s.regions...), nil
}
