// Package providers resolves noisy spoken name, specialty and location
// fragments to canonical provider records.
package providers

import (
	"context"
	"sort"
	"strings"

	"github.com/Mehtab-21/CareConnect-Backend/internal/store"
	"github.com/Mehtab-21/CareConnect-Backend/pkg/logging"
)

// Result limits: a booking confirmation needs exactly one provider; a
// discovery query reads a short roster to the caller.
const (
	BookingLimit   = 1
	DiscoveryLimit = 3
)

// Directory is the provider lookup surface of the store.
type Directory interface {
	SearchProvidersByName(ctx context.Context, q store.Querier, fragment string, limit int) ([]store.Provider, error)
	SearchProviders(ctx context.Context, q store.Querier, filter store.ProviderFilter) ([]store.Provider, error)
}

// Resolver maps spoken fragments to providers.
type Resolver struct {
	dir    Directory
	logger *logging.Logger
}

// NewResolver constructs a resolver over the given directory.
func NewResolver(dir Directory, logger *logging.Logger) *Resolver {
	if dir == nil {
		panic("providers: directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// ResolveByName finds the single best provider for a spoken name fragment.
// Case-insensitive substring match first; if that misses and the fragment
// has several tokens, it retries with the final token alone, which
// recovers "Doctor Sarah Lee" vs "Lee" style mismatches. Returns
// store.ErrNotFound when nothing matches, a normal outcome the caller
// turns into a clarifying question.
func (r *Resolver) ResolveByName(ctx context.Context, q store.Querier, name string) (*store.Provider, error) {
	fragment := strings.TrimSpace(name)
	if fragment == "" {
		return nil, ErrNameRequired
	}

	matches, err := r.dir.SearchProvidersByName(ctx, q, fragment, BookingLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if tokens := strings.Fields(fragment); len(tokens) > 1 {
			last := tokens[len(tokens)-1]
			r.logger.Debug("provider name miss, retrying with surname", "fragment", fragment, "surname", last)
			matches, err = r.dir.SearchProvidersByName(ctx, q, last, BookingLimit)
			if err != nil {
				return nil, err
			}
		}
	}
	if len(matches) == 0 {
		return nil, store.ErrNotFound
	}
	return &matches[0], nil
}

// DiscoverRequest narrows a discovery search. Location accepts a 5-digit
// zip code, a city name or a facility name interchangeably.
type DiscoverRequest struct {
	Specialty string
	Location  string
	Limit     int
}

// Discover returns up to Limit providers matching the request. An
// all-digit location that is not exactly five digits yields
// ErrInvalidZipcode instead of an unbounded unfiltered scan. An empty
// result set is a normal empty slice.
func (r *Resolver) Discover(ctx context.Context, q store.Querier, req DiscoverRequest) ([]store.Provider, error) {
	filter := store.ProviderFilter{
		Specialty: strings.TrimSpace(req.Specialty),
		Limit:     req.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = DiscoveryLimit
	}

	location := strings.TrimSpace(req.Location)
	if location != "" {
		if isDigits(location) {
			if len(location) != 5 {
				return nil, ErrInvalidZipcode
			}
			filter.Zipcode = location
		} else {
			filter.Location = canonicalCity(location)
		}
	}

	matches, err := r.dir.SearchProviders(ctx, q, filter)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// cityAliases folds common spoken shorthand into the canonical city token
// stored on provider rows.
var cityAliases = map[string]string{
	"nyc":           "New York",
	"ny":            "New York",
	"new york city": "New York",
	"la":            "Los Angeles",
	"sf":            "San Francisco",
	"philly":        "Philadelphia",
	"vegas":         "Las Vegas",
}

func canonicalCity(location string) string {
	if canonical, ok := cityAliases[strings.ToLower(location)]; ok {
		return canonical
	}
	return location
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// SpeakRoster renders a discovery result as one sentence for the
// assistant to read aloud, including each provider's weekly availability.
func SpeakRoster(provs []store.Provider) string {
	lines := make([]string, 0, len(provs))
	for _, p := range provs {
		avail := speakAvailability(p.Availability)
		mode := p.ConsultationType
		if mode == "" {
			mode = "in-person"
		}
		lines = append(lines, p.Name+" ("+mode+") is available: "+avail)
	}
	return "I found these doctors. " + strings.Join(lines, ". ") + ". Which one would you like to book?"
}

func speakAvailability(availability map[string]string) string {
	if len(availability) == 0 {
		return "standard business hours"
	}
	parts := make([]string, 0, len(availability))
	for _, day := range weekdayOrder {
		if window, ok := availability[day]; ok {
			parts = append(parts, day+" from "+window)
		}
	}
	if len(parts) == 0 {
		// Availability keyed by something other than weekday names; read
		// it in sorted order rather than dropping it.
		keys := make([]string, 0, len(availability))
		for k := range availability {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+" from "+availability[k])
		}
	}
	return strings.Join(parts, ", ")
}
