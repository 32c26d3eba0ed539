package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-session-service/internal/app"
	"exam-session-service/internal/config"
	"exam-session-service/internal/domain"
	"exam-session-service/internal/infra/memory"
	"exam-session-service/internal/infra/postgres"
	redisinfra "exam-session-service/internal/infra/redis"
	"exam-session-service/internal/infra/sqlite"
	transport "exam-session-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	deps, cleanup, err := buildDependencies(cfg, redisClient, pool)
	if err != nil {
		return err
	}
	defer cleanup()

	// Idle attempts refresh presence three times per in-test TTL.
	service := app.NewExamService(deps,
		app.WithTickInterval(config.TTLDuration(cfg.Exam.Tick, time.Second)),
		app.WithHeartbeatInterval(cfg.PresenceTTL().InTest/3),
	)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/exam", wsHandler.ServeWS)
	mux.Handle("/presence", transport.NewPresenceHandler(deps.Presence))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting exam service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildDependencies picks a backend per concern: Redis for shared state when
// configured, Postgres (else SQLite, else memory) for results and unlocks.
func buildDependencies(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (app.Dependencies, func(), error) {
	cleanup := func() {}
	deps := app.Dependencies{}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks())
	switch {
	case pool != nil:
		loader = postgres.NewBankLoader(pool)
	case cfg.Quiz.BankDir != "":
		loader = memory.NewFileBankLoader(cfg.Quiz.BankDir)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	progressTTL := config.TTLDuration(cfg.Progress.TTL, 24*time.Hour)
	if redisClient != nil {
		node := cfg.Server.Node
		if node == "" {
			node, _ = os.Hostname()
		}
		deps.Banks = redisinfra.NewBankRepository(redisClient, loader, quizTTL)
		deps.Sessions = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute), node)
		deps.Progress = redisinfra.NewProgressStore(redisClient, progressTTL)
		deps.Presence = redisinfra.NewPresenceRegistry(redisClient, cfg.PresenceTTL())
	} else {
		deps.Banks = memory.NewBankRepository(loader, quizTTL)
		deps.Sessions = memory.NewSessionStore()
		deps.Progress = memory.NewProgressStore()
		deps.Presence = memory.NewPresenceRegistry(cfg.PresenceTTL())
	}

	switch {
	case pool != nil:
		deps.Results = postgres.NewResultRepository(pool)
		deps.Unlocks = postgres.NewUnlockRepository(pool)
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return deps, cleanup, err
		}
		deps.Results = store
		deps.Unlocks = store
		cleanup = func() { store.Close() }
	default:
		log.Printf("no result store configured; results are kept in memory")
		deps.Results = memory.NewResultRepository()
		deps.Unlocks = memory.NewUnlockRepository()
	}
	return deps, cleanup, nil
}

// sampleBanks provides a small demo bank; configure postgres or quiz.bank_dir in production.
func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"quiz-1": {
			QuizID: "quiz-1",
			Name:   "Warm-up",
			Entries: []domain.QuestionBankEntry{
				{
					ID:            "q1",
					Question:      "What is 2 + 2?",
					Options:       map[string]string{"o1": "3", "o2": "4", "o3": "5", "o4": "22"},
					CorrectAnswer: "o2",
				},
				{
					ID:            "q2",
					Question:      "Which of these are prime?",
					Options:       map[string]string{"o1": "2", "o2": "4", "o3": "7", "o4": "9"},
					CorrectAnswer: "o1,o3",
				},
				{
					ID:       "q3",
					Question: "Match each country to its capital",
					Options: map[string]string{
						"fr": "France → Paris",
						"jp": "Japan → Tokyo",
						"ca": "Canada → Ottawa",
						"xx": "Atlantis → Poseidonia",
					},
					CorrectAnswer: "fr,jp,ca",
				},
			},
		},
	}
}
