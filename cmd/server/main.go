package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/database"
	"github.com/stemsi/institute-console/internal/handler"
	"github.com/stemsi/institute-console/internal/logger"
	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/repository"
	"github.com/stemsi/institute-console/internal/router"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
	"github.com/stemsi/institute-console/internal/validator"
	ws "github.com/stemsi/institute-console/internal/websocket"
	"github.com/stemsi/institute-console/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("backend", cfg.BackendURL).
		Str("session_store", cfg.SessionStore).
		Msg("Starting Institute Console")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	// Needed for Redis-backed sessions and for the audit queue.
	var rdb *redis.Client
	if cfg.SessionStore == config.SessionStoreRedis || cfg.AuditEnabled() {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Connect to PostgreSQL (audit trail) ───────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	switch {
	case errors.Is(err, database.ErrAuditDisabled):
		log.Info().Msg("DATABASE_URL not set, audit events go to the log")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	default:
		defer pool.Close()
	}

	// ─── Metrics ───────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// ─── Backend Client & Repositories ─────────────────────────────────
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log, backend.WithMetrics(m))

	teacherRepo := repository.NewTeacherRepository(client)
	tokenRepo := repository.NewTokenRepository(client)
	studentRepo := repository.NewStudentRepository(client)
	paymentRepo := repository.NewPaymentRepository(client)
	noticeRepo := repository.NewNoticeRepository(client)
	attendanceRepo := repository.NewAttendanceRepository(client)
	resultRepo := repository.NewResultRepository(client)

	var auditRepo *repository.AuditRepository
	if pool != nil {
		auditRepo = repository.NewAuditRepository(pool)
	}

	// ─── Sessions & Invalidations ──────────────────────────────────────
	var (
		store  session.Store
		broker ws.Broker
	)
	if rdb != nil && cfg.SessionStore == config.SessionStoreRedis {
		store = session.NewRedisStore(rdb)
		broker = ws.NewRedisBroker(rdb, log)
	} else {
		log.Warn().Msg("Using in-memory sessions; logins do not survive a restart")
		store = session.NewMemoryStore()
		broker = ws.NewMemoryBroker()
	}
	provider := session.NewProvider(store, cfg.SessionTTL, cfg.CookieSecure, log)

	// ─── Initialize Services ──────────────────────────────────────────
	auditService := service.NewAuditService(rdb, auditRepo, log)
	changes := service.NewChangeNotifier(auditService, broker, m, log)

	authService := service.NewAuthService(teacherRepo, tokenRepo, log)
	studentService := service.NewStudentService(studentRepo, changes)
	teacherService := service.NewTeacherService(teacherRepo, changes)
	paymentService := service.NewPaymentService(paymentRepo, studentService, changes)
	noticeService := service.NewNoticeService(noticeRepo, client, changes)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentService, changes, m, cfg.AttendanceConcurrency)
	portalService := service.NewPortalService(studentService, studentRepo, attendanceRepo, changes)
	resultService := service.NewResultService(resultRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, provider, log),
		Dashboard:  handler.NewDashboardHandler(),
		Student:    handler.NewStudentHandler(studentService, cfg.MaxUploadBytes),
		Payment:    handler.NewPaymentHandler(paymentService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Notice:     handler.NewNoticeHandler(noticeService, cfg.MaxUploadBytes),
		Staff:      handler.NewStaffHandler(teacherService, auditService, cfg.MaxUploadBytes, log),
		Result:     handler.NewResultHandler(resultService),
		Portal:     handler.NewPortalHandler(portalService, provider, log),
		WS:         handler.NewWSHandler(broker, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(rdb, pool),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if auditRepo != nil && rdb != nil {
		auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
		go func() {
			defer close(workerDone)
			auditWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(ctx, router.Deps{
		Provider: provider,
		Auth:     authService,
		Gatherer: registry,
		Media:    client.ResolveURL,
		Log:      log,
	}, handlers, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	cancel()

	// 2. Stop the audit worker and wait for the queue to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Audit worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

