package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crucial707/mineops/internal/backend"
	"github.com/crucial707/mineops/internal/config"
	"github.com/crucial707/mineops/internal/db"
	"github.com/crucial707/mineops/internal/logging"
	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/notifications"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/resources"
	"github.com/crucial707/mineops/internal/scheduler"
	"github.com/crucial707/mineops/internal/users"
)

const defaultJWTSecret = "supersecretkey"

func main() {
	cfg := config.Load()
	logging.New(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("mineops: exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if cfg.Env == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in prod")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := deps{
		store:         resources.NewStore(resources.Seed()),
		feed:          notifications.NewFeed(),
		authLimiter:   middleware.AuthRateLimiter(),
		exportLimiter: middleware.ExportRateLimiter(),
	}

	// Audit log: PostgreSQL when configured, otherwise the seeded in-memory log.
	if cfg.AuditDatabaseURL != "" {
		if err := db.Run(cfg.AuditDatabaseURL); err != nil {
			return err
		}
		auditDB, err := db.Connect(cfg.AuditDatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err != nil {
			return err
		}
		defer auditDB.Close()
		d.auditDB = auditDB
		d.audit = repo.NewAuditRepo(auditDB)
		slog.Info("audit log: postgres")
	} else {
		d.audit = repo.NewMemoryAuditRepo(repo.SeedAudit())
		slog.Info("audit log: in-memory seed")
	}

	draftsDB, err := db.OpenDrafts(cfg.DraftDBPath)
	if err != nil {
		return err
	}
	defer draftsDB.Close()
	d.draftsDB = draftsDB
	d.drafts = repo.NewDraftRepo(draftsDB)

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	d.backend = client
	d.directory = users.NewDirectory(client)

	gen := &notifications.Generator{Feed: d.feed, Interval: cfg.NotificationInterval}
	task, err := scheduler.Start(ctx,
		gen.Job(),
		purgeDraftsJob(d.drafts, cfg.DraftTTL),
		sweepJob(d.authLimiter, d.exportLimiter),
	)
	if err != nil {
		return err
	}
	defer task.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(d, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tls := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
		slog.Info("server starting", "addr", srv.Addr, "tls", tls, "backend", cfg.BackendURL)
		var err error
		if tls {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// purgeDraftsJob drops drafts nobody has touched within ttl.
func purgeDraftsJob(drafts *repo.DraftRepo, ttl time.Duration) scheduler.Job {
	return scheduler.Job{
		Name: "drafts-purge",
		Spec: "@hourly",
		Run: func(ctx context.Context) {
			n, err := drafts.Purge(ctx, ttl)
			if err != nil {
				slog.Warn("drafts: purge failed", "err", err)
				return
			}
			if n > 0 {
				slog.Info("drafts: purged", "count", n)
			}
		},
	}
}

// sweepJob forgets rate-limit buckets for clients idle for ten minutes.
func sweepJob(limiters ...*middleware.IPRateLimiter) scheduler.Job {
	return scheduler.Job{
		Name:  "ratelimit-sweep",
		Every: 5 * time.Minute,
		Run: func(context.Context) {
			for _, l := range limiters {
				l.Sweep(10 * time.Minute)
			}
		},
	}
}
