// Package outcome models the result taxonomy shared by all voice tool
// operations. Negative results such as a missing provider or an occupied
// slot are expected conversational outcomes, not errors: each one carries
// the sentence the assistant should speak next. Only SystemError marks a
// genuine failure, and its internal detail is never part of the spoken text.
package outcome

// Kind classifies the result of a core operation.
type Kind string

const (
	// OK means the operation committed and the spoken text confirms it.
	OK Kind = "ok"
	// InvalidInput means a required argument was missing or malformed;
	// the spoken text asks the caller to supply it.
	InvalidInput Kind = "invalid_input"
	// NotFound means no matching record exists; the spoken text asks the
	// caller to confirm or rephrase.
	NotFound Kind = "not_found"
	// SlotConflict means the requested slot is already taken by a
	// non-cancelled booking.
	SlotConflict Kind = "slot_conflict"
	// Duplicate means the request was already processed (webhook retry);
	// the operation is a no-op and the spoken text reads as success.
	Duplicate Kind = "duplicate"
	// SystemError is the only fatal kind: store failure, broken envelope.
	SystemError Kind = "system_error"
)

// SpokenSystemError is the one sentence allowed to leave the system when
// something actually breaks. It must stay free of internal detail.
const SpokenSystemError = "I'm sorry, I ran into a technical issue. Please try again in a moment."

// Outcome is the result of one tool operation.
type Outcome struct {
	Kind   Kind
	Spoken string // read aloud by the assistant's TTS
	Err    error  // internal detail for logs; set only on SystemError
}

// Ok builds a success outcome with the given spoken confirmation.
func Ok(spoken string) Outcome {
	return Outcome{Kind: OK, Spoken: spoken}
}

// Invalid builds an InvalidInput outcome with a clarifying prompt.
func Invalid(spoken string) Outcome {
	return Outcome{Kind: InvalidInput, Spoken: spoken}
}

// Missing builds a NotFound outcome with a confirmation prompt.
func Missing(spoken string) Outcome {
	return Outcome{Kind: NotFound, Spoken: spoken}
}

// Conflict builds a SlotConflict outcome with an alternate-time prompt.
func Conflict(spoken string) Outcome {
	return Outcome{Kind: SlotConflict, Spoken: spoken}
}

// AlreadyDone builds a Duplicate outcome; spoken text reads as success so
// webhook retries stay invisible to the caller.
func AlreadyDone(spoken string) Outcome {
	return Outcome{Kind: Duplicate, Spoken: spoken}
}

// System wraps an internal failure. The spoken text is always the generic
// apology; err is kept for logging only.
func System(err error) Outcome {
	return Outcome{Kind: SystemError, Spoken: SpokenSystemError, Err: err}
}

// Fatal reports whether the outcome is the fatal class.
func (o Outcome) Fatal() bool {
	return o.Kind == SystemError
}

// Committed reports whether the operation durably wrote its result.
// Duplicate counts: the write happened on the first delivery.
func (o Outcome) Committed() bool {
	return o.Kind == OK || o.Kind == Duplicate
}
