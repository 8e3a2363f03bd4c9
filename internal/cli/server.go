package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ggquiz-engine/internal/auth"
	"ggquiz-engine/internal/config"
	"ggquiz-engine/internal/domain"
	"ggquiz-engine/internal/engine"
	"ggquiz-engine/internal/infra/memory"
	pginfra "ggquiz-engine/internal/infra/postgres"
	redisinfra "ggquiz-engine/internal/infra/redis"
	"ggquiz-engine/internal/ranking"
	transport "ggquiz-engine/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Question data: Postgres when configured, a seeded demo set otherwise.
	var (
		loader   memory.PoolLoader
		resolver ranking.DifficultyResolver
		regions  transport.RegionSource
	)
	static := memory.NewStaticQuestions(sampleQuestions(), sampleRegions())
	loader, resolver, regions = static, static, static
	if pool != nil {
		pg := pginfra.NewQuestions(pool)
		loader, resolver, regions = pg, pg, pg
	}

	poolTTL := config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute)
	var source engine.QuestionSource
	if redisClient != nil {
		source = redisinfra.NewQuestionCache(redisClient, loader, poolTTL, cfg.Quiz.BatchSize)
	} else {
		source = memory.NewQuestionCache(loader, poolTTL, cfg.Quiz.BatchSize)
	}

	var store ranking.Store
	switch {
	case redisClient != nil:
		windowTTL := config.TTLDuration(cfg.Ranking.WindowTTL, 45*24*time.Hour)
		store = redisinfra.NewRankingStore(redisClient, windowTTL)
	case pool != nil:
		store = pginfra.NewRankingStore(pool)
	default:
		store = memory.NewRankingStore()
	}
	rankings := ranking.NewService(store)
	authority := ranking.NewSubmitService(resolver, rankings)

	var authorizer auth.Authorizer
	if cfg.Auth.JWTSecret != "" {
		authorizer = auth.NewJWT(cfg.Auth.JWTSecret)
	} else {
		log.Printf("auth: no jwt secret configured, using insecure dev authorizer")
		authorizer = auth.Insecure{}
	}

	engineCfg := engine.Config{
		QuestionSeconds: cfg.Quiz.QuestionSeconds,
		AdvanceDelay:    config.TTLDuration(cfg.Quiz.AdvanceDelay, 850*time.Millisecond),
		BatchSize:       cfg.Quiz.BatchSize,
	}
	gameHandler := transport.NewGameHandler(authorizer, source, authority, engineCfg)
	apiHandler := transport.NewAPIHandler(rankings, regions, authorizer)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", gameHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz engine on :%s", finalPort)
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

// sampleRegions and sampleQuestions seed a playable demo set; swap in the
// Postgres-backed data for production.
func sampleRegions() []domain.Region {
	return []domain.Region{
		{ID: 1, Name: "Americas"},
		{ID: 2, Name: "EMEA"},
		{ID: 3, Name: "Asia-Pacific"},
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:        1,
			Statement: "Which team won the 2022 World Championship?",
			OptionA:   "T1", OptionB: "DRX", OptionC: "Gen.G", OptionD: "JD Gaming",
			CorrectOption: "B", Difficulty: 4,
		},
		{
			ID:        2,
			Statement: "How many players are on the map in a standard match?",
			OptionA:   "8", OptionB: "12", OptionC: "10", OptionD: "6",
			CorrectOption: "C", Difficulty: 1,
		},
		{
			ID:        3,
			Statement: "Which objective grants the Hand of Baron buff?",
			OptionA:   "Baron Nashor", OptionB: "Elder Dragon", OptionC: "Rift Herald", OptionD: "Vilemaw",
			CorrectOption: "A", Difficulty: 2,
		},
		{
			ID:        4,
			Statement: "Which region does the LEC league represent?",
			OptionA:   "North America", OptionB: "Korea", OptionC: "China", OptionD: "EMEA",
			CorrectOption: "D", Difficulty: 3, RegionID: 2,
		},
		{
			ID:        5,
			Statement: "Which team completed the first LCS three-peat?",
			OptionA:   "Cloud9", OptionB: "Team SoloMid", OptionC: "Team Liquid", OptionD: "100 Thieves",
			CorrectOption: "C", Difficulty: 7, RegionID: 1,
		},
	}
}
