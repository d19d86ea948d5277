package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mehtab-21/CareConnect-Backend/internal/dashboard"
	httpmiddleware "github.com/Mehtab-21/CareConnect-Backend/internal/http/middleware"
	"github.com/Mehtab-21/CareConnect-Backend/internal/voice"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	VoiceHandler       *voice.Handler
	DashboardHandler   *dashboard.Handler
	DB                 Pinger
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck(cfg.DB))

	r.Route("/webhooks/voice", func(hooks chi.Router) {
		hooks.Post("/tool-calls", cfg.VoiceHandler.HandleToolCall)
	})

	if cfg.DashboardHandler != nil {
		r.Route("/patient_requests", func(staff chi.Router) {
			staff.Get("/", cfg.DashboardHandler.ListPatientRequests)
			staff.Post("/{id}/review", cfg.DashboardHandler.MarkReviewed)
		})
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]string{
			"status":   "ok",
			"database": "skipped",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				response["status"] = "degraded"
				response["database"] = "unreachable"
				status = http.StatusServiceUnavailable
			} else {
				response["database"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}
}
