package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Mehtab-21/CareConnect-Backend/internal/arbiter"
	"github.com/Mehtab-21/CareConnect-Backend/internal/observability/metrics"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/internal/triage"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// Tool names registered on the assistant.
const (
	ToolFindDoctors     = "find_doctors"
	ToolBookAppointment = "book_appointment"
	ToolSaveCallLog     = "save_call_log"
)

// BookingArbiter arbitrates booking attempts.
type BookingArbiter interface {
	Book(ctx context.Context, req arbiter.BookRequest) arbiter.BookResult
}

// TriageIngestor files call summaries.
type TriageIngestor interface {
	Ingest(ctx context.Context, req triage.IngestRequest) triage.IngestResult
}

// ProviderDiscovery searches the provider directory.
type ProviderDiscovery interface {
	Discover(ctx context.Context, q store.Querier, req providers.DiscoverRequest) ([]store.Provider, error)
}

// Handler dispatches tool-call webhooks to the core components.
type Handler struct {
	arbiter   BookingArbiter
	triage    TriageIngestor
	discovery ProviderDiscovery
	logger    *logging.Logger
	metrics   *metrics.ToolCallMetrics

	maxBodyBytes   int64
	discoveryLimit int
}

// HandlerConfig configures the dispatcher.
type HandlerConfig struct {
	Arbiter   BookingArbiter
	Triage    TriageIngestor
	Discovery ProviderDiscovery
	Logger    *logging.Logger
	Metrics   *metrics.ToolCallMetrics

	MaxBodyBytes   int64
	DiscoveryLimit int
}

// NewHandler creates the tool-call dispatcher.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.DiscoveryLimit <= 0 {
		cfg.DiscoveryLimit = providers.DiscoveryLimit
	}
	return &Handler{
		arbiter:        cfg.Arbiter,
		triage:         cfg.Triage,
		discovery:      cfg.Discovery,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		maxBodyBytes:   cfg.MaxBodyBytes,
		discoveryLimit: cfg.DiscoveryLimit,
	}
}

// HandleToolCall is the HTTP handler for POST /webhooks/voice/tool-calls.
// Whatever happens inside, the reply body keeps the platform's shape so
// the assistant always has a sentence to speak.
func (h *Handler) HandleToolCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes))
	if err != nil {
		h.logger.Error("tool-call: failed to read body", "error", err)
		h.writeReply(w, http.StatusBadRequest, "", outcome.SpokenSystemError)
		return
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.logger.Error("tool-call: failed to parse envelope", "error", err)
		h.metrics.ObserveCall("unknown", string(outcome.SystemError))
		h.writeReply(w, http.StatusBadRequest, "", outcome.SpokenSystemError)
		return
	}
	if len(env.Message.ToolCalls) == 0 {
		h.logger.Warn("tool-call: envelope without tool calls")
		h.metrics.ObserveCall("unknown", string(outcome.SystemError))
		h.writeReply(w, http.StatusBadRequest, "", outcome.SpokenSystemError)
		return
	}

	tc := env.Message.ToolCalls[0]
	h.logger.Info("tool-call: received",
		"tool", tc.Function.Name,
		"tool_call_id", tc.ID,
		"call_id", env.Message.Call.ID,
	)

	start := time.Now()
	var result outcome.Outcome
	switch tc.Function.Name {
	case ToolBookAppointment:
		result = h.arbiter.Book(ctx, parseBookRequest(tc.Function.Arguments)).Outcome
	case ToolSaveCallLog:
		result = h.triage.Ingest(ctx, parseIngestRequest(tc.Function.Arguments, env.Message)).Outcome
	case ToolFindDoctors:
		result = h.discover(ctx, tc.Function.Arguments)
	default:
		h.logger.Warn("tool-call: unknown tool", "tool", tc.Function.Name)
		result = outcome.Invalid("I'm not able to help with that request.")
	}

	h.metrics.ObserveCall(tc.Function.Name, string(result.Kind))
	h.metrics.ObserveLatency(tc.Function.Name, time.Since(start).Seconds())
	if result.Fatal() {
		h.logger.Error("tool-call: system error", "tool", tc.Function.Name, "error", result.Err)
	}

	h.writeReply(w, http.StatusOK, tc.ID, result.Spoken)
}

func (h *Handler) discover(ctx context.Context, args ArgumentMap) outcome.Outcome {
	req := parseDiscoverRequest(args, h.discoveryLimit)
	provs, err := h.discovery.Discover(ctx, nil, req)
	switch {
	case errors.Is(err, providers.ErrInvalidZipcode):
		return outcome.Invalid("Could you share a 5-digit zip code so I can search for doctors near you?")
	case err != nil:
		return outcome.System(err)
	case len(provs) == 0:
		return outcome.Missing("I couldn't find any matching doctors. Would you like to try a different area or specialty?")
	}
	return outcome.Ok(providers.SpeakRoster(provs))
}

func (h *Handler) writeReply(w http.ResponseWriter, status int, toolCallID, spoken string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	reply := ReplyEnvelope{Results: []ToolResult{{ToolCallID: toolCallID, Result: spoken}}}
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		h.logger.Error("tool-call: failed to write reply", "error", err)
	}
}
