package arbiter

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Mehtab-21/CareConnect-Backend/internal/callers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// Monday, August 31 2026.
var refNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

// fakeStore simulates the bookings table with the partial unique index
// over active slots, so races behave like Postgres would.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*store.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]*store.Booking{}}
}

func slotKey(providerID uuid.UUID, date, timeOfDay string) string {
	return providerID.String() + "|" + date + "|" + timeOfDay
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(q store.Querier) error) error {
	return fn(nil)
}

func (f *fakeStore) FindActiveBooking(_ context.Context, _ store.Querier, providerID uuid.UUID, date, timeOfDay string) (*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[slotKey(providerID, date, timeOfDay)]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) InsertConfirmedBooking(_ context.Context, _ store.Querier, callerID, providerID uuid.UUID, date, timeOfDay string) (*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey(providerID, date, timeOfDay)
	if _, ok := f.bookings[key]; ok {
		return nil, store.ErrSlotTaken
	}
	b := &store.Booking{
		ID:         uuid.New(),
		CallerID:   callerID,
		ProviderID: providerID,
		Date:       date,
		Time:       timeOfDay,
		Status:     store.BookingStatusConfirmed,
	}
	f.bookings[key] = b
	return b, nil
}

type fakeProviderResolver struct {
	provider *store.Provider
	err      error
}

func (f *fakeProviderResolver) ResolveByName(_ context.Context, _ store.Querier, _ string) (*store.Provider, error) {
	return f.provider, f.err
}

type fakeCallerResolver struct{}

func (fakeCallerResolver) ResolveByPhone(_ context.Context, _ store.Querier, phone, name string) (*store.Caller, error) {
	return &store.Caller{ID: uuid.New(), Phone: phone, Name: name}, nil
}

func newTestService(st Store, provider *store.Provider) *Service {
	return NewService(st,
		&fakeProviderResolver{provider: provider},
		fakeCallerResolver{},
		logging.Default(),
	).WithClock(func() time.Time { return refNow })
}

func TestBookConfirmsFreeSlot(t *testing.T) {
	hayes := &store.Provider{ID: uuid.New(), Name: "Dr. Marcus Hayes"}
	svc := newTestService(newFakeStore(), hayes)

	res := svc.Book(context.Background(), BookRequest{
		DoctorName:  "Marcus Hayes",
		PatientName: "Jordan Reyes",
		Phone:       "555-0199",
		DatePhrase:  "next Tuesday",
		TimePhrase:  "3pm",
	})

	if res.Kind != outcome.OK {
		t.Fatalf("expected OK, got %s (%s)", res.Kind, res.Spoken)
	}
	if res.BookingID == uuid.Nil {
		t.Fatal("expected a booking id")
	}
	if res.Slot.Date != "2026-09-01" || res.Slot.Time != "15:00" {
		t.Fatalf("unexpected slot %s %s", res.Slot.Date, res.Slot.Time)
	}
	if !strings.Contains(res.Spoken, "Dr. Marcus Hayes") {
		t.Fatalf("confirmation should name the provider: %q", res.Spoken)
	}
	if strings.Contains(res.Spoken, res.BookingID.String()) {
		t.Fatalf("spoken reply leaked an identifier: %q", res.Spoken)
	}
}

func TestBookSecondAttemptConflicts(t *testing.T) {
	hayes := &store.Provider{ID: uuid.New(), Name: "Dr. Marcus Hayes"}
	st := newFakeStore()
	svc := newTestService(st, hayes)
	req := BookRequest{
		DoctorName: "Marcus Hayes",
		Phone:      "555-0199",
		DatePhrase: "next Tuesday",
		TimePhrase: "3pm",
	}

	if res := svc.Book(context.Background(), req); res.Kind != outcome.OK {
		t.Fatalf("first attempt should succeed, got %s", res.Kind)
	}
	res := svc.Book(context.Background(), req)
	if res.Kind != outcome.SlotConflict {
		t.Fatalf("expected SlotConflict, got %s", res.Kind)
	}
	if !strings.Contains(res.Spoken, "different time") {
		t.Fatalf("conflict should prompt for another time: %q", res.Spoken)
	}
	if len(st.bookings) != 1 {
		t.Fatalf("expected exactly one committed booking, got %d", len(st.bookings))
	}
}

func TestBookConcurrentAttemptsCommitExactlyOne(t *testing.T) {
	hayes := &store.Provider{ID: uuid.New(), Name: "Dr. Marcus Hayes"}
	st := newFakeStore()
	svc := newTestService(st, hayes)
	req := BookRequest{
		DoctorName: "Hayes",
		Phone:      "555-0199",
		DatePhrase: "next Tuesday",
		TimePhrase: "3pm",
	}

	const attempts = 16
	results := make([]BookResult, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Book(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, res := range results {
		switch res.Kind {
		case outcome.OK:
			ok++
		case outcome.SlotConflict:
			conflict++
		default:
			t.Fatalf("unexpected kind %s", res.Kind)
		}
	}
	if ok != 1 || conflict != attempts-1 {
		t.Fatalf("expected 1 commit and %d conflicts, got %d/%d", attempts-1, ok, conflict)
	}
	if len(st.bookings) != 1 {
		t.Fatalf("expected exactly one booking row, got %d", len(st.bookings))
	}
}

func TestBookUnknownProvider(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st,
		&fakeProviderResolver{err: store.ErrNotFound},
		fakeCallerResolver{},
		logging.Default(),
	).WithClock(func() time.Time { return refNow })

	res := svc.Book(context.Background(), BookRequest{
		DoctorName: "Dr. Nobody",
		Phone:      "555-0199",
		DatePhrase: "tomorrow",
		TimePhrase: "9am",
	})

	if res.Kind != outcome.NotFound {
		t.Fatalf("expected NotFound, got %s", res.Kind)
	}
	if !strings.Contains(res.Spoken, "Dr. Nobody") {
		t.Fatalf("clarifying question should echo the name: %q", res.Spoken)
	}
	if len(st.bookings) != 0 {
		t.Fatal("nothing should be committed on NotFound")
	}
}

func TestBookMissingDoctorNameIsInvalidInput(t *testing.T) {
	hayes := &store.Provider{ID: uuid.New(), Name: "Dr. Marcus Hayes"}
	svc := newTestService(newFakeStore(), hayes)

	// The resolver surfaces the empty-name sentinel; the arbiter must map
	// it to a clarifying question, not a failure.
	svc.providers = &fakeProviderResolver{err: providers.ErrNameRequired}
	res := svc.Book(context.Background(), BookRequest{Phone: "555-0199"})
	if res.Kind != outcome.InvalidInput {
		t.Fatalf("expected InvalidInput, got %s", res.Kind)
	}
}

type failingCallerResolver struct{ err error }

func (f failingCallerResolver) ResolveByPhone(_ context.Context, _ store.Querier, _, _ string) (*store.Caller, error) {
	return nil, f.err
}

func TestBookShortPhoneIsInvalidInput(t *testing.T) {
	hayes := &store.Provider{ID: uuid.New(), Name: "Dr. Marcus Hayes"}
	st := newFakeStore()
	svc := NewService(st,
		&fakeProviderResolver{provider: hayes},
		failingCallerResolver{err: callers.ErrPhoneTooShort},
		logging.Default(),
	).WithClock(func() time.Time { return refNow })

	res := svc.Book(context.Background(), BookRequest{
		DoctorName: "Hayes",
		Phone:      "123",
		DatePhrase: "tomorrow",
		TimePhrase: "9am",
	})
	if res.Kind != outcome.InvalidInput {
		t.Fatalf("expected InvalidInput, got %s", res.Kind)
	}
	if len(st.bookings) != 0 {
		t.Fatal("nothing should be committed on invalid input")
	}
}
