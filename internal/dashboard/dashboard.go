// Package dashboard serves the staff review surface: triage records
// joined with their callers, projected into the shape the front end
// renders. Read-mostly; the only mutation is marking a record reviewed.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/internal/triage"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// Store is the triage read/review surface of the entity store.
type Store interface {
	ListTriageWithCallers(ctx context.Context, q store.Querier) ([]store.TriageWithCaller, error)
	MarkTriageReviewed(ctx context.Context, q store.Querier, id uuid.UUID) error
}

// PatientRequest is the DTO the staff front end consumes.
type PatientRequest struct {
	ID                 string    `json:"id"`
	PatientName        string    `json:"patientName"`
	DateTime           time.Time `json:"dateTime"`
	RequestedSpecialty string    `json:"requestedSpecialty"`
	Symptoms           []string  `json:"symptoms"`
	KeyPhrases         []string  `json:"keyPhrases"`
	ExtractedKeywords  []string  `json:"extractedKeywords"`
	AISummary          string    `json:"aiSummary"`
	Status             string    `json:"status"`
	PreferredLocation  string    `json:"preferredLocation"`
	ContactPhone       string    `json:"contactPhone"`
	UrgencyLevel       string    `json:"urgencyLevel"`
	FullTranscript     string    `json:"fullTranscript"`
}

// Handler serves the dashboard endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(st Store, logger *logging.Logger) *Handler {
	if st == nil {
		panic("dashboard: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: st, logger: logger}
}

// ListPatientRequests handles GET /patient_requests.
func (h *Handler) ListPatientRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListTriageWithCallers(r.Context(), nil)
	if err != nil {
		h.logger.Error("dashboard: list failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]PatientRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, project(row))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Error("dashboard: encode failed", "error", err)
	}
}

// MarkReviewed handles POST /patient_requests/{id}/review, the single
// post-creation mutation triage records allow.
func (h *Handler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.store.MarkTriageReviewed(r.Context(), nil, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.logger.Error("dashboard: review failed", "error", err, "record_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func project(row store.TriageWithCaller) PatientRequest {
	specialty := row.Specialty
	if specialty == "" {
		specialty = "General"
	}
	return PatientRequest{
		ID:                 row.ID.String(),
		PatientName:        row.CallerName,
		DateTime:           row.CreatedAt,
		RequestedSpecialty: specialty,
		Symptoms:           splitSymptoms(row.Symptoms),
		KeyPhrases:         emptyWhenNil(row.Quotes),
		ExtractedKeywords:  emptyWhenNil(row.Keywords),
		AISummary:          row.Summary,
		Status:             strings.ToLower(row.Status),
		PreferredLocation:  row.CallerZipcode,
		ContactPhone:       row.CallerPhone,
		UrgencyLevel:       triage.Tier(row.UrgencyScore),
		FullTranscript:     row.Transcript,
	}
}

func splitSymptoms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func emptyWhenNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
