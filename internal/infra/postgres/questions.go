package postgres

import (
	"context"
	"fmt"

	"ggquiz-engine/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Questions serves the question pool, difficulty lookups, and the region list
// from Postgres.
type Questions struct {
	pool *pgxpool.Pool
}

func NewQuestions(pool *pgxpool.Pool) *Questions {
	return &Questions{pool: pool}
}

// LoadPool returns the candidate questions for a mode/region. GLOBAL draws
// from every region; REGIONAL narrows to one.
func (q *Questions) LoadPool(ctx context.Context, mode domain.Mode, regionID int64) ([]domain.Question, error) {
	if mode == domain.ModeGlobal {
		regionID = 0
	}
	rows, err := q.pool.Query(ctx, `
		SELECT id, statement, option_a, option_b, option_c, option_d, correct_option, difficulty, COALESCE(region_id, 0)
		FROM questions
		WHERE $1::bigint = 0 OR region_id = $1`, regionID)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	defer rows.Close()

	var pool []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(
			&question.ID, &question.Statement,
			&question.OptionA, &question.OptionB, &question.OptionC, &question.OptionD,
			&question.CorrectOption, &question.Difficulty, &question.RegionID,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		pool = append(pool, question)
	}
	return pool, rows.Err()
}

func (q *Questions) Difficulties(ctx context.Context, ids []int64) (map[int64]int, error) {
	if len(ids) == 0 {
		return map[int64]int{}, nil
	}
	rows, err := q.pool.Query(ctx, `SELECT id, difficulty FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load difficulties: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int, len(ids))
	for rows.Next() {
		var id int64
		var difficulty int
		if err := rows.Scan(&id, &difficulty); err != nil {
			return nil, fmt.Errorf("scan difficulty: %w", err)
		}
		out[id] = difficulty
	}
	return out, rows.Err()
}

func (q *Questions) ListRegions(ctx context.Context) ([]domain.Region, error) {
	rows, err := q.pool.Query(ctx, `SELECT id, name FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []domain.Region
	for rows.Next() {
		var region domain.Region
		if err := rows.Scan(&region.ID, &region.Name); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}
