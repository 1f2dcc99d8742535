package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/config"
	"github.com/itskys/jszs/internal/database"
	"github.com/itskys/jszs/internal/exam"
	"github.com/itskys/jszs/internal/handler"
	"github.com/itskys/jszs/internal/localstore"
	"github.com/itskys/jszs/internal/logger"
	"github.com/itskys/jszs/internal/qbank"
	"github.com/itskys/jszs/internal/repository"
	"github.com/itskys/jszs/internal/router"
	"github.com/itskys/jszs/internal/service"
	"github.com/itskys/jszs/internal/validator"
	"github.com/itskys/jszs/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting JSZS Exam Server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Bank ────────────────────────────────────────────
	index, err := qbank.Load(cfg.QuestionBankPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.QuestionBankPath).Msg("Failed to load question bank")
	}
	log.Info().Int("questions", index.Len()).Msg("Question bank loaded")
	for _, id := range index.FullPaper() {
		if key := exam.Resolve(index.Get(id)); !exam.KeyIsLetterCoded(key) {
			log.Warn().
				Str("question_id", id).
				Str("key", key).
				Msg("Canonical key is not letter-coded; only an identical submission grades correct")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	resultRepo := repository.NewResultRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	store := localstore.New(localstore.NewRedisKV(rdb))
	policy := exam.NewScorePolicy(cfg.ScoreWeightSingle, cfg.ScoreWeightMulti, cfg.ScoreWeightTF)

	resultService := service.NewResultService(resultRepo, log)
	monitorService := service.NewMonitorService(monitorRepo, cfg.MonitorStaleAfter, log)
	submitService := service.NewSubmitService(cfg, store, log)
	historyService := service.NewHistoryService(store, index, cfg.HistoryLimit, log)
	attemptService := service.NewAttemptService(
		index,
		store,
		submitService,
		historyService,
		monitorService,
		policy,
		int(cfg.ExamDuration.Seconds()),
		cfg.SessionTTL,
		cfg.ExamVersion,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Attempt: handler.NewAttemptHandler(attemptService),
		History: handler.NewHistoryHandler(historyService),
		Submit:  handler.NewSubmitHandler(submitService),
		Result:  handler.NewResultHandler(resultService, log),
		Monitor: handler.NewMonitorHandler(monitorService),
		WS:      handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sweeper := worker.NewMonitorSweeper(monitorService, cfg.MonitorStaleAfter, log)
	go sweeper.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the sweeper.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
