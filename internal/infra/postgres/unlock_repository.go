package postgres

import (
	"context"
	"fmt"

	"exam-session-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UnlockRepository records one-time league unlocks in league_unlocks.
type UnlockRepository struct {
	pool *pgxpool.Pool
}

func NewUnlockRepository(pool *pgxpool.Pool) *UnlockRepository {
	return &UnlockRepository{pool: pool}
}

func (r *UnlockRepository) Unlocked(ctx context.Context, userID string) ([]domain.LeagueTier, error) {
	rows, err := r.pool.Query(ctx, `SELECT league FROM league_unlocks WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load unlocks: %w", err)
	}
	defer rows.Close()

	var tiers []domain.LeagueTier
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		tier, err := domain.ParseLeague(name)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

func (r *UnlockRepository) Unlock(ctx context.Context, userID string, tier domain.LeagueTier) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO league_unlocks (user_id, league) VALUES ($1, $2)
		ON CONFLICT (user_id, league) DO NOTHING`, userID, tier.String())
	if err != nil {
		return fmt.Errorf("record unlock: %w", err)
	}
	return nil
}
