package assistant

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// maxRawExcerpt bounds how much of an unparseable model reply is surfaced
// to the caller for debugging.
const maxRawExcerpt = 1000

// UserInput is a pointer so an explicit empty string in the payload is
// distinguishable from the field being absent.
type intentPayload struct {
	Type      string  `json:"type"`
	UserInput *string `json:"userInput"`
	Response  string  `json:"response"`
}

// Parse extracts the first JSON object embedded in a model reply.
//
// The reply is often prose wrapped around a single object, so the span from
// the first '{' to the last '}' is decoded. Multiple embedded objects or
// braces inside quoted prose can defeat the span; that is a documented
// limitation of the contract with the model, not something worked around
// here.
//
// Absent payload fields default: type to "general", userInput to the
// submitted command (an explicit empty string is kept as-is), response to
// the empty string. Malformed input is an expected outcome and never panics.
func Parse(raw, command string) (ParsedIntent, *Error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ParsedIntent{}, parseFailure(raw)
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return ParsedIntent{}, parseFailure(raw)
	}

	intent := ParsedIntent{
		Type:         payload.Type,
		UserInput:    command,
		ResponseText: payload.Response,
	}
	if intent.Type == "" {
		intent.Type = IntentGeneral
	}
	if payload.UserInput != nil {
		intent.UserInput = *payload.UserInput
	}
	return intent, nil
}

func parseFailure(raw string) *Error {
	return &Error{
		Kind:       KindParseFailure,
		Message:    "could not parse assistant response",
		RawExcerpt: truncate(raw, maxRawExcerpt),
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
