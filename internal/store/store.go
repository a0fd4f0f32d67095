// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/arialabs/aria-server/internal/domain"
)

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = errors.New("email already exists")

// ErrNotFound is returned by updates that target a missing user.
var ErrNotFound = errors.New("user not found")

// Repository defines the interface for persisting user records.
type Repository interface {
	// GetUser retrieves a user by their user ID. Returns (nil, nil) when absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by their lowercased email.
	// Returns (nil, nil) when absent.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser inserts a new user record. Returns ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, user *domain.User) error

	// UpdateAssistant updates the assistant persona fields and returns the
	// updated user. Empty arguments leave the corresponding field unchanged.
	UpdateAssistant(ctx context.Context, userID, assistantName, assistantImage string) (*domain.User, error)

	// UpdateHistory atomically replaces the user's history log.
	UpdateHistory(ctx context.Context, userID string, history []domain.HistoryEntry) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
