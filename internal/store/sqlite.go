package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arialabs/aria-server/internal/domain"
	"github.com/arialabs/aria-server/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
//
// History is persisted as a JSON column of the user row, so one UPDATE
// replaces the whole log. Concurrent commands from the same user race as
// last-write-wins; no application-level serialization is attempted.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		assistant_name TEXT NOT NULL DEFAULT 'Assistant',
		assistant_image TEXT,
		history_json TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `user_id, name, email, password_hash, assistant_name,
	assistant_image, history_json, created_at, updated_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var assistantImage sql.NullString
	var historyJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash,
		&user.AssistantName, &assistantImage, &historyJSON,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.AssistantImage = assistantImage.String
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(historyJSON), &user.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	return &user, nil
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// GetUserByEmail retrieves a user by their lowercased email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	historyJSON, err := json.Marshal(user.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	var assistantImage interface{}
	if user.AssistantImage != "" {
		assistantImage = user.AssistantImage
	}

	query := `
	INSERT INTO users (user_id, name, email, password_hash, assistant_name,
		assistant_image, history_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		user.UserID, user.Name, user.Email, user.PasswordHash,
		user.AssistantDisplayName(), assistantImage, string(historyJSON),
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateAssistant updates the assistant persona fields and returns the
// updated user.
func (s *SQLiteStore) UpdateAssistant(ctx context.Context, userID, assistantName, assistantImage string) (*domain.User, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}

	if assistantName != "" {
		sets = append(sets, "assistant_name = ?")
		args = append(args, assistantName)
	}
	if assistantImage != "" {
		sets = append(sets, "assistant_image = ?")
		args = append(args, assistantImage)
	}
	args = append(args, userID)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update assistant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.GetUser(ctx, userID)
}

// UpdateHistory atomically replaces the user's history log.
// Retries on SQLite concurrency errors with exponential backoff.
func (s *SQLiteStore) UpdateHistory(ctx context.Context, userID string, history []domain.HistoryEntry) error {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	return shared.RetrySQLite(3, 100*time.Millisecond, func() error {
		query := `UPDATE users SET history_json = ?, updated_at = ? WHERE user_id = ?`
		result, err := s.db.ExecContext(ctx, query, string(historyJSON), time.Now().Unix(), userID)
		if err != nil {
			return fmt.Errorf("update history: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
