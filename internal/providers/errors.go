package providers

import "errors"

var (
	// ErrNameRequired is returned when a name lookup gets an empty fragment.
	ErrNameRequired = errors.New("provider name is required")

	// ErrInvalidZipcode is returned when a numeric location is not exactly
	// five digits. The resolver refuses to search rather than silently
	// dropping the filter.
	ErrInvalidZipcode = errors.New("zip code must be exactly five digits")
)
