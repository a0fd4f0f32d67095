package assistant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arialabs/aria-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendBoundsHistory(t *testing.T) {
	repo := newFakeRepo()
	hs := NewHistoryStore(repo, 100)
	user := &domain.User{UserID: "u1"}

	const total = 150
	for i := 0; i < total; i++ {
		err := hs.Append(context.Background(), user, fmt.Sprintf("command %d", i), fixedInstant.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	require.Len(t, user.History, 100)
	// Exactly the last 100 entries, in submission order.
	for i, entry := range user.History {
		assert.Equal(t, fmt.Sprintf("command %d", total-100+i), entry.Text)
	}
	assert.Equal(t, user.History, repo.saved["u1"])
}

func TestAppendEmptyTextIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	hs := NewHistoryStore(repo, 100)
	user := &domain.User{UserID: "u1"}

	require.NoError(t, hs.Append(context.Background(), user, "   ", fixedInstant))
	assert.Empty(t, user.History)
	assert.Zero(t, repo.saveCalls)
}

func TestAppendPersistFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.historyErr = fmt.Errorf("database is locked")
	hs := NewHistoryStore(repo, 100)

	err := hs.Append(context.Background(), &domain.User{UserID: "u1"}, "hello", fixedInstant)
	require.Error(t, err)
	assert.ErrorContains(t, err, "persist history")
}

func TestNewHistoryStoreDefaultsLimit(t *testing.T) {
	hs := NewHistoryStore(newFakeRepo(), 0)
	assert.Equal(t, DefaultHistoryLimit, hs.limit)
}

func TestAppendSmallLimit(t *testing.T) {
	repo := newFakeRepo()
	hs := NewHistoryStore(repo, 2)
	user := &domain.User{UserID: "u1"}

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, hs.Append(context.Background(), user, text, fixedInstant))
	}

	require.Len(t, user.History, 2)
	assert.Equal(t, "b", user.History[0].Text)
	assert.Equal(t, "c", user.History[1].Text)
}
