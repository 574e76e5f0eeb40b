package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/ai"
	"github.com/vigilo-labs/vigil-backend/internal/billing"
	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/database"
	"github.com/vigilo-labs/vigil-backend/internal/facematch"
	"github.com/vigilo-labs/vigil-backend/internal/handler"
	"github.com/vigilo-labs/vigil-backend/internal/judge0"
	"github.com/vigilo-labs/vigil-backend/internal/logger"
	"github.com/vigilo-labs/vigil-backend/internal/mailer"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"github.com/vigilo-labs/vigil-backend/internal/router"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
	"github.com/vigilo-labs/vigil-backend/internal/worker"
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
		Msg("Starting Vigil Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	proctorRepo := repository.NewProctorRepository(pool)
	supportRepo := repository.NewSupportRepository(pool)

	// ─── Initialize External Clients ───────────────────────────────────
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	faces := facematch.NewClient(cfg.FaceMatchURL)
	judge := judge0.NewClient(cfg.Judge0URL, cfg.Judge0APIKey)

	aiService, err := ai.NewService(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI service")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, userRepo, mail, log)
	testService := service.NewTestService(testRepo, questionRepo, answerRepo, resultRepo, attemptRepo, userRepo, mail, log)
	attemptService := service.NewAttemptService(testRepo, questionRepo, attemptRepo, answerRepo, resultRepo, userRepo, faces, log)
	answerService := service.NewAnswerService(testRepo, questionRepo, attemptRepo, answerRepo, judge, log)
	monitorService := service.NewMonitorService(rdb, testRepo, userRepo, proctorRepo, log)
	supportService := service.NewSupportService(supportRepo, mail, cfg.SupportInbox, log)
	billingService := billing.NewService(cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, userRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Student: handler.NewStudentHandler(attemptService, answerService),
		Test:    handler.NewTestHandler(testService),
		Proctor: handler.NewProctorHandler(monitorService, testService),
		Live:    handler.NewLiveHandler(monitorService, testService, log, cfg.AllowedOrigins),
		AI:      handler.NewAIHandler(aiService, testService, monitorService),
		Support: handler.NewSupportHandler(supportService),
		Billing: handler.NewBillingHandler(billingService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	proctorWorker := worker.NewProctorWorker(pool, rdb, log, config.WorkerKey.PersistProctorQueue, "proctor_events")
	windowWorker := worker.NewProctorWorker(pool, rdb, log, config.WorkerKey.PersistWindowQueue, "window_events")

	go proctorWorker.Start(workerCtx)
	go windowWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
