package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"exam-session-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultRepository stores finished attempts in exam_results. A retried
// submission of the same attempt (same session and finish time) is a no-op.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) SaveResult(ctx context.Context, res domain.ResultSubmission) error {
	questions, err := json.Marshal(res.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO exam_results
			(session_id, user_id, name, quiz_id, quiz_name, score, total, duration_ms,
			 finished_at, difficulty, league, questions, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id, finished_at) DO NOTHING`,
		res.SessionID, res.UserID, res.Name, res.QuizID, res.QuizName,
		res.Score, res.Total, res.Duration.Milliseconds(),
		res.Timestamp, string(res.Difficulty), res.League.String(),
		string(questions), string(answers))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}
