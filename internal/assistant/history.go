package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arialabs/aria-server/internal/domain"
	"github.com/arialabs/aria-server/internal/store"
)

// DefaultHistoryLimit bounds a user's command history when no limit is configured.
const DefaultHistoryLimit = 100

// HistoryStore appends submitted commands to a user's bounded history log.
// The limit is threaded through construction, not a hidden global.
type HistoryStore struct {
	repo  store.Repository
	limit int
}

// NewHistoryStore creates a history store with the given bound.
func NewHistoryStore(repo store.Repository, limit int) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{repo: repo, limit: limit}
}

// Append records text at the tail of the user's history, evicting from the
// head once the bound is exceeded, then persists the updated log. Empty or
// whitespace text is a no-op; callers validate input before appending.
func (h *HistoryStore) Append(ctx context.Context, user *domain.User, text string, now time.Time) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	user.History = append(user.History, domain.HistoryEntry{Text: text, CreatedAt: now})
	if len(user.History) > h.limit {
		user.History = user.History[len(user.History)-h.limit:]
	}

	if err := h.repo.UpdateHistory(ctx, user.UserID, user.History); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
