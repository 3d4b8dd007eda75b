package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/profilehub/internal/auth"
	"github.com/geocoder89/profilehub/internal/cache"
	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/db"
	"github.com/geocoder89/profilehub/internal/directory"
	httpx "github.com/geocoder89/profilehub/internal/http"
	"github.com/geocoder89/profilehub/internal/http/handlers"
	"github.com/geocoder89/profilehub/internal/observability"
	"github.com/geocoder89/profilehub/internal/profile"
	"github.com/geocoder89/profilehub/internal/repo/memory"
	"github.com/geocoder89/profilehub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// userStore is what every service needs from persistence.
type userStore interface {
	auth.UserStore
	profile.Store
	directory.Store
	handlers.Pinger
}

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	shutdownTracer, err := observability.InitTracer(rootCtx, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	readyChecks := map[string]handlers.Pinger{}

	// store: postgres when configured, memory only for local dev
	var store userStore
	if cfg.DBURL != "" {
		pool, err := db.ConnectWithRetry(rootCtx, log, cfg.DBURL, 10, 5)
		if err != nil {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		schemaCtx, cancel := config.WithTimeout(10 * time.Second)
		err = db.EnsureSchema(schemaCtx, pool)
		cancel()
		if err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}

		store = postgres.NewUsersRepo(pool, prom)
	} else {
		log.Warn("DB_URL not set, using in-memory store; data is lost on restart")
		store = memory.NewUsersRepo()
	}
	readyChecks["store"] = store

	// top skills cache: redis shared between replicas, else per process
	var skills cache.SkillsCache
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		skills = cache.NewProtectedSkillsCache(
			cache.NewRedisSkillsCache(rdb, cfg.TopSkillsCacheTTL()),
			cache.BreakerConfig{},
		)
		readyChecks["cache"] = cache.NewPinger(rdb)
	} else {
		skills = cache.NewMemorySkillsCache(cfg.TopSkillsCacheTTL())
	}

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	created, err := db.EnsureAdminUser(seedCtx, store, cfg)
	cancelSeed()
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	dir := directory.NewService(store, skills, prom, log)
	authSvc := auth.NewService(store, tokens, dir.Invalidate)
	profileSvc := profile.NewService(store, dir.Invalidate)

	router := httpx.NewRouter(httpx.Deps{
		Config:      cfg,
		Log:         log,
		Prom:        prom,
		Gatherer:    reg,
		Tokens:      tokens,
		Auth:        authSvc,
		Profile:     profileSvc,
		Directory:   dir,
		ReadyChecks: readyChecks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
