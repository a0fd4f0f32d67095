package domain

import "testing"

func TestDisplayName(t *testing.T) {
	u := &User{Name: "Dana"}
	if got := u.DisplayName(); got != "Dana" {
		t.Errorf("Expected Dana, got %q", got)
	}

	u = &User{}
	if got := u.DisplayName(); got != "User" {
		t.Errorf("Expected fallback User, got %q", got)
	}
}

func TestAssistantDisplayName(t *testing.T) {
	u := &User{AssistantName: "Jarvis"}
	if got := u.AssistantDisplayName(); got != "Jarvis" {
		t.Errorf("Expected Jarvis, got %q", got)
	}

	u = &User{}
	if got := u.AssistantDisplayName(); got != DefaultAssistantName {
		t.Errorf("Expected %q, got %q", DefaultAssistantName, got)
	}
}
