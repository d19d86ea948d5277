// Package triage files structured call summaries extracted by the voice
// assistant into triage records for staff review. Ingestion is idempotent
// against webhook retries: the external call id is unique when present,
// and a repeated id reads back as success without writing a second record.
package triage

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Mehtab-21/CareConnect-Backend/internal/callers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

var tracer = otel.Tracer("careconnect.internal.triage")

// Urgency bounds and the default applied when the assistant omits the
// score or sends something unusable.
const (
	UrgencyMin     = 1
	UrgencyMax     = 10
	UrgencyDefault = 5
)

// Urgency tiers for the staff dashboard.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// Tier buckets a 1..10 urgency score.
func Tier(score int) string {
	switch {
	case score >= 8:
		return TierHigh
	case score >= 5:
		return TierMedium
	default:
		return TierLow
	}
}

// NormalizeUrgency coerces the raw tool argument into the valid range.
// Accepts JSON numbers and numeric strings; anything else defaults to 5.
// Out-of-range scores clamp rather than fail.
func NormalizeUrgency(raw any) int {
	var score int
	switch v := raw.(type) {
	case nil:
		return UrgencyDefault
	case int:
		score = v
	case float64:
		score = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return UrgencyDefault
		}
		score = n
	default:
		return UrgencyDefault
	}
	if score < UrgencyMin {
		return UrgencyMin
	}
	if score > UrgencyMax {
		return UrgencyMax
	}
	return score
}

// Store is the persistence surface the ingestor needs.
type Store interface {
	WithinTx(ctx context.Context, fn func(q store.Querier) error) error
	TriageExistsByCallID(ctx context.Context, q store.Querier, callID string) (bool, error)
	InsertTriageRecord(ctx context.Context, q store.Querier, rec *store.TriageRecord) error
}

// CallerResolver finds or creates the caller and refines contact details.
type CallerResolver interface {
	ResolveByPhone(ctx context.Context, q store.Querier, phone, name string) (*store.Caller, error)
	RefineZipcode(ctx context.Context, q store.Querier, id uuid.UUID, location string) error
}

// Ingestor files triage records.
type Ingestor struct {
	store   Store
	callers CallerResolver
	logger  *logging.Logger
}

// NewIngestor constructs a triage ingestor.
func NewIngestor(st Store, cr CallerResolver, logger *logging.Logger) *Ingestor {
	if st == nil {
		panic("triage: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{store: st, callers: cr, logger: logger}
}

// IngestRequest carries the parsed arguments of one save-call tool call.
type IngestRequest struct {
	Phone         string
	FallbackPhone string // transport-provided caller id, used when the tool omitted the phone
	PatientName   string
	Specialty     string
	Summary       string
	Symptoms      string
	Quotes        []string
	Keywords      []string
	Urgency       any // raw value from the envelope; normalized here
	CallID        string
	Location      string
	Transcript    string
}

// IngestResult is the ingestion outcome plus the created record identity.
type IngestResult struct {
	outcome.Outcome
	RecordID uuid.UUID
	Urgency  int
	Tier     string
}

// Ingest files one triage record as a single unit of work: resolve or
// create the caller, refine their contact details, dedupe on call id,
// insert. Quote and keyword lists are preserved verbatim and in order,
// stored as empty lists when absent.
func (i *Ingestor) Ingest(ctx context.Context, req IngestRequest) IngestResult {
	ctx, span := tracer.Start(ctx, "triage.ingest")
	defer span.End()

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = strings.TrimSpace(req.FallbackPhone)
	}

	score := NormalizeUrgency(req.Urgency)
	span.SetAttributes(attribute.Int("careconnect.urgency", score))

	rec := &store.TriageRecord{
		CallID:       strings.TrimSpace(req.CallID),
		Specialty:    req.Specialty,
		Summary:      req.Summary,
		Symptoms:     req.Symptoms,
		Quotes:       emptyWhenNil(req.Quotes),
		Keywords:     emptyWhenNil(req.Keywords),
		Transcript:   req.Transcript,
		UrgencyScore: score,
		Status:       store.TriageStatusNew,
	}

	err := i.store.WithinTx(ctx, func(q store.Querier) error {
		caller, err := i.callers.ResolveByPhone(ctx, q, phone, req.PatientName)
		if err != nil {
			return err
		}
		if err := i.callers.RefineZipcode(ctx, q, caller.ID, req.Location); err != nil {
			return err
		}
		rec.CallerID = caller.ID

		if rec.CallID != "" {
			exists, err := i.store.TriageExistsByCallID(ctx, q, rec.CallID)
			if err != nil {
				return err
			}
			if exists {
				return store.ErrDuplicateCallID
			}
		}
		return i.store.InsertTriageRecord(ctx, q, rec)
	})

	result := IngestResult{Urgency: score, Tier: Tier(score)}
	if err != nil {
		result.Outcome = i.ingestOutcome(err, rec.CallID)
		if result.Fatal() {
			span.RecordError(result.Err)
		}
		return result
	}

	result.RecordID = rec.ID
	result.Outcome = outcome.Ok("Patient profile and summary saved successfully.")
	i.logger.Info("triage record filed",
		"record_id", rec.ID,
		"urgency", score,
		"tier", result.Tier,
		"call_id", rec.CallID)
	return result
}

func (i *Ingestor) ingestOutcome(err error, callID string) outcome.Outcome {
	switch {
	case errors.Is(err, callers.ErrPhoneRequired), errors.Is(err, callers.ErrPhoneTooShort):
		return outcome.Invalid("Could you share the patient's phone number so I can save their details?")
	case errors.Is(err, store.ErrDuplicateCallID):
		// Webhook retry: the first delivery already wrote the record.
		i.logger.Warn("duplicate call id ignored", "call_id", callID)
		return outcome.AlreadyDone("Patient profile and summary saved successfully.")
	default:
		i.logger.Error("triage ingestion failed", "error", err)
		return outcome.System(err)
	}
}

func emptyWhenNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
