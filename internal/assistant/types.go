// Package assistant implements the command-interpretation and routing
// pipeline behind the conversational endpoint: it validates a command,
// appends it to the user's bounded history, forwards it to the external
// model, extracts a structured intent from the free-text reply, and
// dispatches to one of a fixed set of response strategies.
package assistant

// ParsedIntent is the structured payload extracted from a model reply.
// It lives for a single request and is never persisted.
type ParsedIntent struct {
	Type         string
	UserInput    string
	ResponseText string
}

// RoutingResult is the outcome of dispatching a parsed intent.
type RoutingResult struct {
	Type     string
	Response string
}

// Result is the terminal outcome of a successfully handled command.
type Result struct {
	Type      string `json:"type"`
	UserInput string `json:"userInput"`
	Response  string `json:"response"`
}
