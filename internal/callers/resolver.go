// Package callers resolves phone numbers to caller records. The phone
// number is the idempotency key: the same number always resolves to the
// same caller, created on first contact.
package callers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// MinPhoneLength is the shortest phone value accepted from the assistant.
const MinPhoneLength = 5

var (
	// ErrPhoneRequired is returned when no phone number was supplied.
	ErrPhoneRequired = errors.New("phone number is required")

	// ErrPhoneTooShort is returned when the supplied phone number is too
	// short to plausibly identify a caller.
	ErrPhoneTooShort = errors.New("phone number is too short")
)

// Registry is the caller persistence surface of the store.
type Registry interface {
	UpsertCallerByPhone(ctx context.Context, q store.Querier, phone, name string) (*store.Caller, error)
	RefineCallerZipcode(ctx context.Context, q store.Querier, id uuid.UUID, zipcode string) error
}

// Resolver finds or creates callers by phone number.
type Resolver struct {
	reg    Registry
	logger *logging.Logger
}

// NewResolver constructs a caller resolver.
func NewResolver(reg Registry, logger *logging.Logger) *Resolver {
	if reg == nil {
		panic("callers: registry required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{reg: reg, logger: logger}
}

// ResolveByPhone finds the caller for the phone number or creates one.
// A supplied name refines an unnamed caller but never overwrites a known
// name; the "Unknown" sentinel and an empty string are treated the same.
// The store's unique phone key guarantees no duplicate caller is created
// under concurrent requests for the same number.
func (r *Resolver) ResolveByPhone(ctx context.Context, q store.Querier, phone, name string) (*store.Caller, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if len(phone) < MinPhoneLength {
		return nil, ErrPhoneTooShort
	}

	name = strings.TrimSpace(name)
	if strings.EqualFold(name, store.UnknownCallerName) {
		name = ""
	}

	caller, err := r.reg.UpsertCallerByPhone(ctx, q, phone, name)
	if err != nil {
		return nil, err
	}
	return caller, nil
}

// RefineZipcode fills in the caller's postal code from a location hint.
// A blank hint is ignored; a known zipcode is never overwritten.
func (r *Resolver) RefineZipcode(ctx context.Context, q store.Querier, id uuid.UUID, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}
	return r.reg.RefineCallerZipcode(ctx, q, id, location)
}
