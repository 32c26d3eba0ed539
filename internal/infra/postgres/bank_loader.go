package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"exam-session-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads question bank JSONB from Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	var (
		name string
		raw  []byte
	)
	err := l.pool.QueryRow(ctx, `SELECT name, data FROM question_banks WHERE id=$1`, quizID).Scan(&name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load bank: %w", err)
	}
	var entries []domain.QuestionBankEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	return domain.QuestionBank{QuizID: quizID, Name: name, Entries: entries}, nil
}

// SaveBank inserts or replaces a bank. Every entry is validated first so a
// malformed import never reaches the table.
func (l *BankLoader) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(bank.Entries)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO question_banks (id, name, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = now()`,
		bank.QuizID, bank.Name, string(data))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}
