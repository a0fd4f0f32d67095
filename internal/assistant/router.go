package assistant

import "time"

// Intent types with locally computed responses.
const (
	IntentGetDate  = "get-date"
	IntentGetTime  = "get-time"
	IntentGetDay   = "get-day"
	IntentGetMonth = "get-month"
	IntentGeneral  = "general"
)

// passThroughIntents are labeled and forwarded verbatim. The router trusts
// the model's free text for these; the presentation layer acts on the type.
var passThroughIntents = map[string]struct{}{
	"google-search":   {},
	"youtube-search":  {},
	"youtube-play":    {},
	IntentGeneral:     {},
	"calculator-open": {},
	"instagram-open":  {},
	"facebook-open":   {},
	"weather-show":    {},
}

// Route dispatches a parsed intent. Date and time intents are computed
// locally from now rather than trusting the model for facts the system can
// compute exactly; every other recognized intent passes the model's response
// text through. now is sampled once per request, at routing time.
func Route(intent ParsedIntent, now time.Time) (RoutingResult, *Error) {
	switch intent.Type {
	case IntentGetDate:
		return RoutingResult{Type: intent.Type, Response: "current date is " + now.Format("2006-01-02")}, nil
	case IntentGetTime:
		return RoutingResult{Type: intent.Type, Response: "current time is " + now.Format("03:04 PM")}, nil
	case IntentGetDay:
		return RoutingResult{Type: intent.Type, Response: "today is " + now.Format("Monday")}, nil
	case IntentGetMonth:
		return RoutingResult{Type: intent.Type, Response: "this month is " + now.Format("January")}, nil
	}

	if _, ok := passThroughIntents[intent.Type]; ok {
		return RoutingResult{Type: intent.Type, Response: intent.ResponseText}, nil
	}

	return RoutingResult{}, &Error{
		Kind:         KindUnrecognizedIntent,
		Message:      "unrecognized assistant command type",
		IntentType:   intent.Type,
		ResponseText: intent.ResponseText,
	}
}
