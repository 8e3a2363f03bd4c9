package ranking

import (
	"context"
	"fmt"

	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/scoring"
)

// DifficultyResolver looks up difficulties for the question ids named in an
// outcome. Implemented by the question sources.
type DifficultyResolver interface {
	Difficulties(ctx context.Context, ids []int64) (map[int64]int, error)
}

// SubmitService is the scoring/submission authority: it rates a finished
// session with the shared formula and records the rating for ranking. It
// satisfies the engine's Submitter contract.
type SubmitService struct {
	questions DifficultyResolver
	rankings  *Service
}

func NewSubmitService(questions DifficultyResolver, rankings *Service) *SubmitService {
	return &SubmitService{questions: questions, rankings: rankings}
}

// Submit rates the outcome and registers it as one attempt. A rejected
// payload (unknown question id) fails before anything is recorded.
func (s *SubmitService) Submit(ctx context.Context, playerID string, out domain.Outcome) (float64, error) {
	ids := make([]int64, 0, len(out.CorrectQuestionIDs)+1)
	ids = append(ids, out.CorrectQuestionIDs...)
	if out.WrongQuestionID != 0 {
		ids = append(ids, out.WrongQuestionID)
	}

	difficulties, err := s.questions.Difficulties(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("resolve difficulties: %w", err)
	}

	correct := make([]int, 0, len(out.CorrectQuestionIDs))
	for _, id := range out.CorrectQuestionIDs {
		d, ok := difficulties[id]
		if !ok {
			return 0, fmt.Errorf("unknown question %d in submission", id)
		}
		correct = append(correct, d)
	}
	wrong := 0
	if out.WrongQuestionID != 0 {
		d, ok := difficulties[out.WrongQuestionID]
		if !ok {
			return 0, fmt.Errorf("unknown question %d in submission", out.WrongQuestionID)
		}
		wrong = d
	}

	rating := scoring.Rate(correct, out.DurationSeconds, wrong)

	regionID := int64(0)
	if out.Mode == domain.ModeRegional {
		regionID = out.RegionID
	}
	if err := s.rankings.Record(ctx, playerID, regionID, rating); err != nil {
		return 0, err
	}
	return rating, nil
}
