package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed sql/0001_create_question_banks.sql
var createQuestionBanksSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createQuestionBanksSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS question_banks`)
			return err
		},
	)
}
