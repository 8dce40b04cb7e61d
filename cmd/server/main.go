// Command server runs the call-insights HTTP API.
//
// Startup order: environment, config, logging, tracing, database, label
// table, snapshot cache, retrieval index, services, router, HTTP server.
// Shutdown drains in-flight requests, flushes pending chat writes, and
// closes the tracer provider.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coachlens/call-insights-backend/internal/cache"
	"github.com/coachlens/call-insights-backend/internal/config"
	httpapi "github.com/coachlens/call-insights-backend/internal/http"
	"github.com/coachlens/call-insights-backend/internal/observability"
	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/rollup"
	"github.com/coachlens/call-insights-backend/internal/search"
	"github.com/coachlens/call-insights-backend/internal/services"
	"github.com/coachlens/call-insights-backend/internal/sysutil"
)

// indexSeedCap bounds how many recent calls feed the retrieval index.
const indexSeedCap = 5000

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev")

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing disabled")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	labels := rollup.NewLabelTable()
	if cfg.LabelFile != "" {
		if err := rollup.LoadLabelFile(labels, cfg.LabelFile); err != nil {
			log.Warn().Err(err).Str("file", cfg.LabelFile).Msg("label file not loaded")
		}
		go func() {
			err := rollup.WatchLabelFile(ctx, labels, cfg.LabelFile, log.Logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Str("file", cfg.LabelFile).Msg("label watch stopped")
			}
		}()
	}

	var snapshots *cache.Cache
	if cfg.Redis.Addr != "" {
		snapshots, err = cache.New(ctx,
			cache.WithAddress(cfg.Redis.Addr),
			cache.WithPassword(cfg.Redis.Password),
			cache.WithDB(cfg.Redis.DB),
		)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, snapshot caching disabled")
			snapshots = nil
		} else {
			defer snapshots.Close()
		}
	}

	calls, err := repo.ListRecentCalls(ctx, db, indexSeedCap)
	if err != nil {
		log.Fatal().Err(err).Msg("load call corpus failed")
	}
	idx := search.NewIndexFromCalls(calls)
	log.Info().Int("calls", len(calls)).Msg("retrieval index ready")

	memberSvc := services.NewMemberService(db, labels)
	memberSvc.RecentCallCap = cfg.RecentCallCap
	chatSvc := services.NewChatService(db, idx, cfg.Threshold)

	svcs := httpapi.Services{
		Analytics: services.NewAnalyticsService(db, labels, snapshots, cfg.AnalyticsCacheTTL),
		Members:   memberSvc,
		Profiles:  services.NewProfileService(db),
		Teams:     services.NewTeamService(db),
		Notes:     services.NewNoteService(db),
		Chat:      chatSvc,
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, svcs, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Str("version", version).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	chatSvc.Flush()

	if err := shutdownOTel(shutCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("server stopped")
}
