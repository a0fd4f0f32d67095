// Package domain contains core domain types for the Aria assistant.
package domain

import (
	"time"
)

// DefaultAssistantName is the assistant persona name before a user customizes it.
const DefaultAssistantName = "Assistant"

// HistoryEntry is one command submitted to the assistant.
type HistoryEntry struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a registered account and its assistant state.
type User struct {
	UserID         string         `json:"user_id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"`
	AssistantName  string         `json:"assistant_name"`
	AssistantImage string         `json:"assistant_image,omitempty"`
	History        []HistoryEntry `json:"history"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// DisplayName returns the user's name for prompt substitution.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return "User"
	}
	return u.Name
}

// AssistantDisplayName returns the assistant persona name, defaulted when unset.
func (u *User) AssistantDisplayName() string {
	if u.AssistantName == "" {
		return DefaultAssistantName
	}
	return u.AssistantName
}
