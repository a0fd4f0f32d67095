package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arialabs/aria-server/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func askRequestFor(t *testing.T, userID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/user/ask", strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(identity.ContextWithUserID(req.Context(), userID))
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&got))
	return got
}

func TestHandleAskSuccess(t *testing.T) {
	repo := newFakeRepo(testUser())
	gen := &fakeGenerator{reply: `{"type":"get-date","userInput":"what's the date","response":""}`}
	h := NewHandler(newTestService(repo, gen), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"what's the date"}`))

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "get-date", got["type"])
	assert.Equal(t, "current date is 2024-03-15", got["response"])
}

func TestHandleAskUnauthenticated(t *testing.T) {
	h := NewHandler(newTestService(newFakeRepo(), &fakeGenerator{}), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "", `{"command":"hello"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleAskMissingCommand(t *testing.T) {
	h := NewHandler(newTestService(newFakeRepo(testUser()), &fakeGenerator{}), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":""}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAskParseFailureSurfacesExcerpt(t *testing.T) {
	gen := &fakeGenerator{reply: "no payload here"}
	h := NewHandler(newTestService(newFakeRepo(testUser()), gen), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"hello"}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	got := decodeBody(t, w)
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "no payload here", got["raw"])
}

func TestHandleAskUnrecognizedIntent(t *testing.T) {
	gen := &fakeGenerator{reply: `{"type":"play-music","response":"a song"}`}
	h := NewHandler(newTestService(newFakeRepo(testUser()), gen), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"play something"}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	got := decodeBody(t, w)
	assert.Equal(t, "play-music", got["type"])
	assert.Equal(t, "a song", got["response"])
}

func TestHandleAskUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{err: assert.AnError}
	h := NewHandler(newTestService(newFakeRepo(testUser()), gen), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"hello"}`))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleAskUnknownUser(t *testing.T) {
	h := NewHandler(newTestService(newFakeRepo(), &fakeGenerator{}), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "ghost", `{"command":"hello"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAskRateLimited(t *testing.T) {
	gen := &fakeGenerator{reply: `{"type":"general","response":"hi"}`}
	h := NewHandler(newTestService(newFakeRepo(testUser()), gen), NewRateLimiter(1, time.Minute))

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"hello"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `{"command":"hello"}`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandleAskInvalidBody(t *testing.T) {
	h := NewHandler(newTestService(newFakeRepo(testUser()), &fakeGenerator{}), nil)

	w := httptest.NewRecorder()
	h.HandleAsk(w, askRequestFor(t, "u1", `not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
