package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/arialabs/aria-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo implements store.Repository in memory.
type fakeRepo struct {
	users      map[string]*domain.User
	historyErr error
	saved      map[string][]domain.HistoryEntry
	saveCalls  int
}

func newFakeRepo(users ...*domain.User) *fakeRepo {
	r := &fakeRepo{users: make(map[string]*domain.User), saved: make(map[string][]domain.HistoryEntry)}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

func (r *fakeRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return r.users[userID], nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.users[user.UserID] = user
	return nil
}

func (r *fakeRepo) UpdateAssistant(_ context.Context, userID, name, image string) (*domain.User, error) {
	u := r.users[userID]
	if u == nil {
		return nil, errors.New("user not found")
	}
	if name != "" {
		u.AssistantName = name
	}
	if image != "" {
		u.AssistantImage = image
	}
	return u, nil
}

func (r *fakeRepo) UpdateHistory(_ context.Context, userID string, history []domain.HistoryEntry) error {
	r.saveCalls++
	if r.historyErr != nil {
		return r.historyErr
	}
	r.saved[userID] = append([]domain.HistoryEntry(nil), history...)
	return nil
}

func (r *fakeRepo) Ping(_ context.Context) error { return nil }
func (r *fakeRepo) Close() error                 { return nil }

// fakeGenerator returns a canned reply or error and records its inputs.
type fakeGenerator struct {
	reply string
	err   error
	calls int

	gotCommand       string
	gotAssistantName string
	gotUserName      string
}

func (g *fakeGenerator) Generate(_ context.Context, command, assistantName, userName string) (string, error) {
	g.calls++
	g.gotCommand = command
	g.gotAssistantName = assistantName
	g.gotUserName = userName
	return g.reply, g.err
}

func testUser() *domain.User {
	return &domain.User{
		UserID:        "u1",
		Name:          "Dana",
		Email:         "dana@example.com",
		AssistantName: "Jarvis",
	}
}

func newTestService(repo *fakeRepo, gen Generator) *Service {
	svc := NewService(repo, NewHistoryStore(repo, DefaultHistoryLimit), gen)
	return svc.WithClock(func() time.Time { return fixedInstant })
}

func pipelineKind(t *testing.T, err error) Kind {
	t.Helper()
	var perr *Error
	require.ErrorAs(t, err, &perr)
	return perr.Kind
}

func TestHandleCommandEndToEnd(t *testing.T) {
	repo := newFakeRepo(testUser())
	gen := &fakeGenerator{reply: `{"type":"get-date","userInput":"what's the date","response":""}`}

	result, err := newTestService(repo, gen).HandleCommand(context.Background(), "u1", "what's the date")
	require.NoError(t, err)

	assert.Equal(t, "get-date", result.Type)
	assert.Equal(t, "what's the date", result.UserInput)
	assert.Equal(t, "current date is 2024-03-15", result.Response)

	// History was appended before the model call.
	require.Len(t, repo.saved["u1"], 1)
	assert.Equal(t, "what's the date", repo.saved["u1"][0].Text)
	assert.Equal(t, fixedInstant, repo.saved["u1"][0].CreatedAt)

	// The model was invoked with persona and user names.
	assert.Equal(t, "Jarvis", gen.gotAssistantName)
	assert.Equal(t, "Dana", gen.gotUserName)
}

func TestHandleCommandMissingUserID(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeGenerator{})

	_, err := svc.HandleCommand(context.Background(), "", "hello")
	assert.Equal(t, KindUnauthorized, pipelineKind(t, err))
}

func TestHandleCommandEmptyCommand(t *testing.T) {
	svc := newTestService(newFakeRepo(testUser()), &fakeGenerator{})

	_, err := svc.HandleCommand(context.Background(), "u1", "   ")
	assert.Equal(t, KindValidation, pipelineKind(t, err))
}

func TestHandleCommandUnknownUser(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeGenerator{})

	_, err := svc.HandleCommand(context.Background(), "ghost", "hello")
	assert.Equal(t, KindNotFound, pipelineKind(t, err))
}

func TestHandleCommandStorageFailureSkipsModel(t *testing.T) {
	repo := newFakeRepo(testUser())
	repo.historyErr = fmt.Errorf("disk full")
	gen := &fakeGenerator{reply: `{"type":"general","response":"hi"}`}

	_, err := newTestService(repo, gen).HandleCommand(context.Background(), "u1", "hello")
	assert.Equal(t, KindStorage, pipelineKind(t, err))
	assert.Zero(t, gen.calls, "model must not be called after a storage failure")
}

func TestHandleCommandUpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("model unavailable")}

	_, err := newTestService(newFakeRepo(testUser()), gen).HandleCommand(context.Background(), "u1", "hello")
	assert.Equal(t, KindUpstreamInvalid, pipelineKind(t, err))
}

func TestHandleCommandEmptyReply(t *testing.T) {
	gen := &fakeGenerator{reply: "   "}

	_, err := newTestService(newFakeRepo(testUser()), gen).HandleCommand(context.Background(), "u1", "hello")
	assert.Equal(t, KindUpstreamInvalid, pipelineKind(t, err))
}

func TestHandleCommandUnparseableReply(t *testing.T) {
	gen := &fakeGenerator{reply: "I'm not sure what you mean."}

	_, err := newTestService(newFakeRepo(testUser()), gen).HandleCommand(context.Background(), "u1", "hello")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindParseFailure, perr.Kind)
	assert.Equal(t, "I'm not sure what you mean.", perr.RawExcerpt)
}

func TestHandleCommandUnrecognizedIntent(t *testing.T) {
	gen := &fakeGenerator{reply: `{"type":"play-music","response":"some song"}`}

	_, err := newTestService(newFakeRepo(testUser()), gen).HandleCommand(context.Background(), "u1", "play something")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindUnrecognizedIntent, perr.Kind)
	assert.Equal(t, "play-music", perr.IntentType)
	assert.Equal(t, "some song", perr.ResponseText)
}

func TestHandleCommandDefaultsPersonaNames(t *testing.T) {
	user := &domain.User{UserID: "u2"}
	gen := &fakeGenerator{reply: `{"type":"general","response":"hi"}`}

	_, err := newTestService(newFakeRepo(user), gen).HandleCommand(context.Background(), "u2", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Assistant", gen.gotAssistantName)
	assert.Equal(t, "User", gen.gotUserName)
}
