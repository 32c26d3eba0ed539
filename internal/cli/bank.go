package cli

import (
	"context"
	"fmt"
	"log"

	"exam-session-service/internal/config"
	"exam-session-service/internal/infra/memory"
	"exam-session-service/internal/infra/postgres"
	redisinfra "exam-session-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewBankCmd groups question bank maintenance commands.
func NewBankCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage question banks",
	}
	cmd.AddCommand(newBankImportCmd(configPath))
	return cmd
}

func newBankImportCmd(configPath *string) *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import a YAML question bank into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importBank(cmd.Context(), *configPath, args[0], quizID)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id to store the bank under (defaults to the id in the file)")
	return cmd
}

func importBank(ctx context.Context, configPath, file, quizID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	bank, err := memory.ReadBankFile(file)
	if err != nil {
		return err
	}
	if quizID != "" {
		bank.QuizID = quizID
	}
	if bank.QuizID == "" {
		return fmt.Errorf("no quiz id in %s; pass --quiz", file)
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewBankLoader(pool).SaveBank(ctx, bank); err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		cache := redisinfra.NewBankRepository(client, nil, 0)
		if err := cache.Invalidate(ctx, bank.QuizID); err != nil {
			log.Printf("invalidate cached bank %s: %v", bank.QuizID, err)
		}
	}
	log.Printf("imported %d questions into %s", len(bank.Entries), bank.QuizID)
	return nil
}
