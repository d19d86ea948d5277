// Package arbiter decides whether a requested (provider, date, time) slot
// is free and commits the booking when it is. The existence check and the
// insert run inside one transaction, and a partial unique index over
// active slots backstops the race: when two units of work pass the check
// concurrently, exactly one insert commits and the loser is reported as a
// slot conflict, never as a second booking.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Mehtab-21/CareConnect-Backend/internal/callers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/outcome"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/schedule"
	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

var tracer = otel.Tracer("careconnect.internal.arbiter")

// Store is the persistence surface the arbiter needs.
type Store interface {
	WithinTx(ctx context.Context, fn func(q store.Querier) error) error
	FindActiveBooking(ctx context.Context, q store.Querier, providerID uuid.UUID, date, timeOfDay string) (*store.Booking, error)
	InsertConfirmedBooking(ctx context.Context, q store.Querier, callerID, providerID uuid.UUID, date, timeOfDay string) (*store.Booking, error)
}

// ProviderResolver resolves a spoken doctor name to one provider.
type ProviderResolver interface {
	ResolveByName(ctx context.Context, q store.Querier, name string) (*store.Provider, error)
}

// CallerResolver finds or creates the caller for a phone number.
type CallerResolver interface {
	ResolveByPhone(ctx context.Context, q store.Querier, phone, name string) (*store.Caller, error)
}

// Service arbitrates bookings.
type Service struct {
	store     Store
	providers ProviderResolver
	callers   CallerResolver
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs a booking arbiter.
func NewService(st Store, pr ProviderResolver, cr CallerResolver, logger *logging.Logger) *Service {
	if st == nil {
		panic("arbiter: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     st,
		providers: pr,
		callers:   cr,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the reference clock. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BookRequest carries the parsed arguments of one booking tool call.
type BookRequest struct {
	DoctorName  string
	PatientName string
	Phone       string
	DatePhrase  string
	TimePhrase  string
}

// BookResult is the arbitration outcome plus identifiers for logging.
type BookResult struct {
	outcome.Outcome
	BookingID    uuid.UUID
	ProviderName string
	Slot         schedule.Result
}

// Book runs one booking attempt as a single unit of work. Every exit path
// either commits the insert or rolls the transaction back; negative
// outcomes (unknown doctor, occupied slot, missing phone) are normal
// results carrying the next thing the assistant should say.
func (s *Service) Book(ctx context.Context, req BookRequest) BookResult {
	ctx, span := tracer.Start(ctx, "arbiter.book")
	defer span.End()

	slot := schedule.Normalize(req.DatePhrase, req.TimePhrase, s.now())
	if !slot.DateParsed || !slot.TimeParsed {
		s.logger.Warn("booking slot normalized with low confidence",
			"date_phrase", req.DatePhrase, "time_phrase", req.TimePhrase,
			"date_parsed", slot.DateParsed, "time_parsed", slot.TimeParsed)
	}
	span.SetAttributes(
		attribute.String("careconnect.slot_date", slot.Date),
		attribute.String("careconnect.slot_time", slot.Time),
	)

	var (
		provider *store.Provider
		booking  *store.Booking
	)
	err := s.store.WithinTx(ctx, func(q store.Querier) error {
		var err error
		provider, err = s.providers.ResolveByName(ctx, q, req.DoctorName)
		if err != nil {
			return err
		}

		caller, err := s.callers.ResolveByPhone(ctx, q, req.Phone, req.PatientName)
		if err != nil {
			return err
		}

		_, err = s.store.FindActiveBooking(ctx, q, provider.ID, slot.Date, slot.Time)
		switch {
		case err == nil:
			return store.ErrSlotTaken
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		booking, err = s.store.InsertConfirmedBooking(ctx, q, caller.ID, provider.ID, slot.Date, slot.Time)
		return err
	})

	result := BookResult{Slot: slot}
	if provider != nil {
		result.ProviderName = provider.Name
	}
	if err != nil {
		result.Outcome = s.bookOutcome(err, req, result.ProviderName, slot)
		if result.Fatal() {
			span.RecordError(result.Err)
		}
		return result
	}

	result.BookingID = booking.ID
	who := req.PatientName
	if who == "" {
		who = "you"
	}
	result.Outcome = outcome.Ok(fmt.Sprintf(
		"Success! I've booked %s with %s for %s.", who, provider.Name, slot.Spoken))
	s.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"provider_id", provider.ID,
		"date", slot.Date,
		"time", slot.Time)
	return result
}

func (s *Service) bookOutcome(err error, req BookRequest, providerName string, slot schedule.Result) outcome.Outcome {
	switch {
	case errors.Is(err, providers.ErrNameRequired):
		return outcome.Invalid("Which doctor would you like to book with?")
	case errors.Is(err, callers.ErrPhoneRequired), errors.Is(err, callers.ErrPhoneTooShort):
		return outcome.Invalid("Could you confirm your phone number for the booking?")
	case errors.Is(err, store.ErrNotFound):
		return outcome.Missing(fmt.Sprintf(
			"I couldn't find a doctor named %s. Could you confirm the doctor's name?", req.DoctorName))
	case errors.Is(err, store.ErrSlotTaken):
		name := providerName
		if name == "" {
			name = "That doctor"
		}
		return outcome.Conflict(fmt.Sprintf(
			"%s is already booked for %s. Would you like to try a different time?", name, slot.Spoken))
	default:
		s.logger.Error("booking failed", "error", err)
		return outcome.System(err)
	}
}
