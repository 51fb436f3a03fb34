package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/mineops/internal/config"
	"github.com/crucial707/mineops/internal/handlers"
	"github.com/crucial707/mineops/internal/middleware"
	"github.com/crucial707/mineops/internal/notifications"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/resources"
	"github.com/crucial707/mineops/internal/users"
)

// backendAPI is everything the dashboard asks of the operations backend.
type backendAPI interface {
	users.Backend
	handlers.FormsBackend
	handlers.ReportBackend
	handlers.WeatherBackend
}

// deps are the long-lived pieces the router wires into handlers.
type deps struct {
	// auditDB is nil when the audit log lives in memory.
	auditDB  *sql.DB
	draftsDB *sql.DB

	audit     repo.AuditSource
	drafts    *repo.DraftRepo
	store     *resources.Store
	feed      *notifications.Feed
	directory *users.Directory
	backend   backendAPI

	authLimiter   *middleware.IPRateLimiter
	exportLimiter *middleware.IPRateLimiter
}

func newRouter(d deps, cfg config.Config) http.Handler {
	if d.authLimiter == nil {
		d.authLimiter = middleware.AuthRateLimiter()
	}
	if d.exportLimiter == nil {
		d.exportLimiter = middleware.ExportRateLimiter()
	}

	auth := &handlers.AuthHandler{
		Secret: []byte(cfg.JWTSecret),
		TTL:    time.Duration(cfg.JWTExpireHours) * time.Hour,
		Audit:  d.audit,
	}
	auditH := &handlers.AuditHandler{Source: d.audit}
	resourceH := &handlers.ResourceHandler{Store: d.store, Audit: d.audit}
	userH := &handlers.UserHandler{Directory: d.directory, Audit: d.audit}
	notificationH := &handlers.NotificationHandler{Feed: d.feed}
	draftH := &handlers.DraftHandler{Repo: d.drafts}
	formsH := &handlers.FormsHandler{Backend: d.backend, Drafts: d.drafts, Audit: d.audit}
	reportH := &handlers.ReportHandler{Backend: d.backend}
	weatherH := &handlers.WeatherHandler{Backend: d.backend}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Identity([]byte(cfg.JWTSecret)))
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ready", ready(d.auditDB, d.draftsDB))
	r.Handle("/metrics", promhttp.Handler())

	r.With(d.authLimiter.Middleware, middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
		Post("/auth/login", auth.Login)

	r.Route("/v1", func(r chi.Router) {
		// Form submissions carry attachments; everything else is small JSON.
		r.With(middleware.MaxBytes(middleware.MaxUploadBytes)).Group(func(r chi.Router) {
			r.Post("/shift-logs", formsH.SubmitShiftLog)
			r.Post("/safety-plan", formsH.SubmitSafetyPlan)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

			r.Get("/audit", auditH.ListAudit)

			r.Get("/inventory", resourceH.Inventory)
			r.With(d.exportLimiter.Middleware).Get("/inventory/export.png", resourceH.ExportInventory)

			r.Route("/resources", func(r chi.Router) {
				r.Get("/", resourceH.ListResources)
				r.Post("/", resourceH.CreateResource)
				r.Delete("/", resourceH.ClearResources)
				r.Put("/{id}", resourceH.UpdateResource)
				r.Delete("/{id}", resourceH.DeleteResource)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userH.ListUsers)
				r.Post("/", userH.CreateUser)
				r.Post("/bulk-action", userH.BulkAction)
				r.Put("/{id}", userH.UpdateUser)
				r.Delete("/{id}", userH.DeleteUser)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationH.ListNotifications)
				r.Post("/bulk", notificationH.Bulk)
				r.Post("/{id}/read", notificationH.MarkRead)
				r.Post("/{id}/unread", notificationH.MarkUnread)
				r.Delete("/{id}", notificationH.Delete)
			})

			r.Route("/drafts/{key}", func(r chi.Router) {
				r.Get("/", draftH.GetDraft)
				r.Put("/", draftH.SaveDraft)
				r.Delete("/", draftH.DeleteDraft)
			})

			r.Get("/shift-logs/previous", formsH.PreviousShiftLogs)

			r.Get("/reports/{type}", reportH.GetReport)
			r.With(d.exportLimiter.Middleware).Get("/reports/{type}/export.pdf", reportH.ExportReport)

			r.Get("/weather/{city}", weatherH.Weather)
			r.Get("/alerts", weatherH.Alerts)
		})
	})

	return r
}

// ready reports 503 until every configured database answers a ping.
func ready(dbs ...*sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, db := range dbs {
			if db == nil {
				continue
			}
			if err := db.PingContext(ctx); err != nil {
				handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	}
}
