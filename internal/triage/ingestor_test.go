package triage

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/Mehtab-21/CareConnect-Backend/internal/callers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

func TestNormalizeUrgency(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"nil defaults", nil, 5},
		{"non-numeric string defaults", "unknown", 5},
		{"numeric string", "7", 7},
		{"json number", float64(3), 3},
		{"above range clamps", 11, 10},
		{"below range clamps", 0, 1},
		{"negative clamps", float64(-4), 1},
		{"boolean defaults", true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUrgency(tt.raw); got != tt.want {
				t.Fatalf("NormalizeUrgency(%v) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{9, TierHigh},
		{8, TierHigh},
		{7, TierMedium},
		{6, TierMedium},
		{5, TierMedium},
		{4, TierLow},
		{3, TierLow},
		{1, TierLow},
	}
	for _, tt := range tests {
		if got := Tier(tt.score); got != tt.want {
			t.Errorf("Tier(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

type fakeTriageStore struct {
	byCallID map[string]bool
	inserted []*store.TriageRecord
}

func (f *fakeTriageStore) WithinTx(ctx context.Context, fn func(q store.Querier) error) error {
	return fn(nil)
}

func (f *fakeTriageStore) TriageExistsByCallID(_ context.Context, _ store.Querier, callID string) (bool, error) {
	return f.byCallID[callID], nil
}

func (f *fakeTriageStore) InsertTriageRecord(_ context.Context, _ store.Querier, rec *store.TriageRecord) error {
	if rec.CallID != "" && f.byCallID[rec.CallID] {
		return store.ErrDuplicateCallID
	}
	rec.ID = uuid.New()
	if f.byCallID == nil {
		f.byCallID = map[string]bool{}
	}
	if rec.CallID != "" {
		f.byCallID[rec.CallID] = true
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

type fakeCallerResolver struct {
	lastPhone    string
	lastLocation string
}

func (f *fakeCallerResolver) ResolveByPhone(_ context.Context, _ store.Querier, phone, name string) (*store.Caller, error) {
	if phone == "" {
		return nil, callers.ErrPhoneRequired
	}
	f.lastPhone = phone
	return &store.Caller{ID: uuid.New(), Phone: phone, Name: name}, nil
}

func (f *fakeCallerResolver) RefineZipcode(_ context.Context, _ store.Querier, _ uuid.UUID, location string) error {
	f.lastLocation = location
	return nil
}

func TestIngestDefaultsAndPreservesLists(t *testing.T) {
	st := &fakeTriageStore{}
	ing := NewIngestor(st, &fakeCallerResolver{}, logging.Default())

	res := ing.Ingest(context.Background(), IngestRequest{
		Phone:  "555-0200",
		Quotes: []string{"it hurts"},
		// Keywords and Urgency deliberately absent.
	})

	if res.Kind != outcome.OK {
		t.Fatalf("expected OK, got %s (%s)", res.Kind, res.Spoken)
	}
	if res.Urgency != 5 || res.Tier != TierMedium {
		t.Fatalf("expected default urgency 5/medium, got %d/%s", res.Urgency, res.Tier)
	}
	rec := st.inserted[0]
	if rec.Status != store.TriageStatusNew {
		t.Fatalf("expected NEW status, got %q", rec.Status)
	}
	if !reflect.DeepEqual(rec.Quotes, []string{"it hurts"}) {
		t.Fatalf("quotes not preserved in order: %v", rec.Quotes)
	}
	if rec.Keywords == nil || len(rec.Keywords) != 0 {
		t.Fatalf("absent keywords must store as empty list, got %v", rec.Keywords)
	}
}

func TestIngestDuplicateCallIDIsIdempotent(t *testing.T) {
	st := &fakeTriageStore{}
	ing := NewIngestor(st, &fakeCallerResolver{}, logging.Default())
	req := IngestRequest{Phone: "555-0200", CallID: "call-123", Summary: "ear pain"}

	first := ing.Ingest(context.Background(), req)
	if first.Kind != outcome.OK {
		t.Fatalf("first ingest should succeed, got %s", first.Kind)
	}
	second := ing.Ingest(context.Background(), req)
	if second.Kind != outcome.Duplicate {
		t.Fatalf("expected Duplicate, got %s", second.Kind)
	}
	if second.Spoken != first.Spoken {
		t.Fatalf("duplicate must read as success: %q vs %q", second.Spoken, first.Spoken)
	}
	if len(st.inserted) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(st.inserted))
	}
}

func TestIngestFallsBackToTransportCallerID(t *testing.T) {
	st := &fakeTriageStore{}
	cr := &fakeCallerResolver{}
	ing := NewIngestor(st, cr, logging.Default())

	res := ing.Ingest(context.Background(), IngestRequest{
		FallbackPhone: "+15550200",
		Location:      "10001",
	})
	if res.Kind != outcome.OK {
		t.Fatalf("expected OK, got %s", res.Kind)
	}
	if cr.lastPhone != "+15550200" {
		t.Fatalf("expected fallback phone used, got %q", cr.lastPhone)
	}
	if cr.lastLocation != "10001" {
		t.Fatalf("expected location refinement, got %q", cr.lastLocation)
	}
}

func TestIngestMissingPhoneIsInvalidInput(t *testing.T) {
	ing := NewIngestor(&fakeTriageStore{}, &fakeCallerResolver{}, logging.Default())

	res := ing.Ingest(context.Background(), IngestRequest{})
	if res.Kind != outcome.InvalidInput {
		t.Fatalf("expected InvalidInput, got %s", res.Kind)
	}
}
