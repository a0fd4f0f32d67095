package assistant

import "fmt"

// Kind classifies terminal pipeline failures. Each kind maps to exactly one
// HTTP status class at the transport boundary.
type Kind int

const (
	// KindInternal is the catch-all for unexpected faults. Diagnostic
	// detail is logged, never returned to the caller.
	KindInternal Kind = iota
	// KindUnauthorized means no verified user id was supplied.
	KindUnauthorized
	// KindValidation means the command was empty or missing.
	KindValidation
	// KindNotFound means the user id resolved to no account.
	KindNotFound
	// KindStorage means persisting history failed. Safe to retry the whole
	// command: the model was not called yet.
	KindStorage
	// KindUpstreamInvalid means the model returned nothing usable.
	KindUpstreamInvalid
	// KindParseFailure means no structured payload could be extracted from
	// the model reply. The system worked; the model's output was unusable.
	KindParseFailure
	// KindUnrecognizedIntent means the payload decoded but declared a type
	// outside the known set.
	KindUnrecognizedIntent
)

// Error is a classified pipeline failure.
type Error struct {
	Kind    Kind
	Message string
	// RawExcerpt carries a bounded excerpt of the model reply for parse
	// failures. Never the full text.
	RawExcerpt string
	// IntentType and ResponseText are surfaced for unrecognized intents so
	// the caller can decide whether this is a not-yet-supported capability.
	IntentType   string
	ResponseText string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }
