package model

import (
	"fmt"
	"strings"
)

// promptTemplate instructs the model to reply with a single JSON object so
// an intent can be extracted from the reply. The reply is still treated as
// free text: nothing guarantees the model honors the format.
const promptTemplate = `You are a virtual assistant named %s, created by %s.
You behave like a voice-enabled assistant, not a search engine.

Understand the user's natural language input and answer with one JSON object
shaped exactly like this:

{
  "type": "general" | "google-search" | "youtube-search" | "youtube-play" | "get-time" | "get-date" | "get-day" | "get-month" | "calculator-open" | "instagram-open" | "facebook-open" | "weather-show",
  "userInput": "<the user's input, with your own name removed if mentioned>",
  "response": "<a short spoken reply for the user>"
}

Rules:
- "type": pick the single intent that best matches the input.
- "userInput": keep search terms only for search intents.
- "response": short and voice friendly.
- Answer with only the JSON object, no other text.

User input: %s`

// BuildPrompt renders the assistant prompt for one command.
func BuildPrompt(command, assistantName, userName string) string {
	return fmt.Sprintf(promptTemplate, assistantName, userName, strings.TrimSpace(command))
}
