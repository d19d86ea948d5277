package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Mehtab-21/CareConnect-Backend/internal/arbiter"
	"github.com/Mehtab-21/CareConnect-Backend/internal/dashboard"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/internal/triage"
	"github.com/Mehtab-21/CareConnect-Backend/internal/voice"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

type stubArbiter struct{}

func (stubArbiter) Book(ctx context.Context, req arbiter.BookRequest) arbiter.BookResult {
	return arbiter.BookResult{Outcome: outcome.Ok("Success! I've booked you.")}
}

type stubIngestor struct{}

func (stubIngestor) Ingest(ctx context.Context, req triage.IngestRequest) triage.IngestResult {
	return triage.IngestResult{Outcome: outcome.Ok("Patient profile and summary saved successfully.")}
}

type stubDiscovery struct{}

func (stubDiscovery) Discover(ctx context.Context, q store.Querier, req providers.DiscoverRequest) ([]store.Provider, error) {
	return nil, nil
}

type stubDashboardStore struct{}

func (stubDashboardStore) ListTriageWithCallers(ctx context.Context, q store.Querier) ([]store.TriageWithCaller, error) {
	return []store.TriageWithCaller{}, nil
}

func (stubDashboardStore) MarkTriageReviewed(ctx context.Context, q store.Querier, id uuid.UUID) error {
	return store.ErrNotFound
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestRouter(t *testing.T, db Pinger) http.Handler {
	t.Helper()
	logger := logging.New("error")
	return New(&Config{
		Logger: logger,
		VoiceHandler: voice.NewHandler(voice.HandlerConfig{
			Arbiter:   stubArbiter{},
			Triage:    stubIngestor{},
			Discovery: stubDiscovery{},
			Logger:    logger,
		}),
		DashboardHandler: dashboard.NewHandler(stubDashboardStore{}, logger),
		DB:               db,
		MetricsHandler:   http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	})
}

func TestHealthOK(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	r := newTestRouter(t, stubPinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"unreachable"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestVoiceWebhookRouted(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	payload := `{"message":{"toolCalls":[{"id":"tc_1","function":{"name":"book_appointment","arguments":{}}}]}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/voice/tool-calls", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "tc_1") {
		t.Fatalf("reply should echo the tool call id: %s", rec.Body.String())
	}
}

func TestDashboardRoutes(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patient_requests", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	target := "/patient_requests/" + uuid.NewString() + "/review"
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("review: expected 404 for unknown record, got %d", rec.Code)
	}
}

func TestMetricsMounted(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	logger := logging.New("error")
	r := New(&Config{
		Logger: logger,
		VoiceHandler: voice.NewHandler(voice.HandlerConfig{
			Arbiter:   stubArbiter{},
			Triage:    stubIngestor{},
			Discovery: stubDiscovery{},
			Logger:    logger,
		}),
		DB:                 stubPinger{},
		CORSAllowedOrigins: []string{"https://staff.careconnect.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/patient_requests", nil)
	req.Header.Set("Origin", "https://staff.careconnect.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://staff.careconnect.example" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
}
