package assistant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arialabs/aria-server/internal/api"
	"github.com/arialabs/aria-server/internal/identity"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize caps the ask request body (64KB).
const maxRequestBodySize = 64 << 10

// Handler exposes the assistant pipeline over HTTP.
type Handler struct {
	svc     *Service
	limiter *RateLimiter
}

// NewHandler creates the assistant HTTP handler.
func NewHandler(svc *Service, limiter *RateLimiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

// RegisterRoutes mounts assistant routes. Callers wrap them with the
// identity middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/user/ask", h.HandleAsk)
}

type askRequest struct {
	Command string `json:"command"`
}

type askResponse struct {
	Success   bool   `json:"success"`
	Type      string `json:"type"`
	UserInput string `json:"userInput"`
	Response  string `json:"response"`
}

// HandleAsk runs one command through the pipeline and writes the terminal
// outcome.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.limiter != nil && !h.limiter.Allow(userID) {
		api.Error(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req askRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.HandleCommand(r.Context(), userID, req.Command)
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, askResponse{
		Success:   true,
		Type:      result.Type,
		UserInput: result.UserInput,
		Response:  result.Response,
	})
}

// writePipelineError maps each failure kind to one HTTP status class.
func (h *Handler) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		slog.Error("ask pipeline failed", "error", err, "path", r.URL.Path)
		api.Error(w, http.StatusInternalServerError, "ask assistant failed")
		return
	}

	switch perr.Kind {
	case KindUnauthorized:
		api.Error(w, http.StatusUnauthorized, "unauthorized")
	case KindValidation:
		api.Error(w, http.StatusBadRequest, perr.Message)
	case KindNotFound:
		api.Error(w, http.StatusNotFound, perr.Message)
	case KindStorage:
		slog.Error("ask pipeline storage failure", "error", perr.Err, "user_id", identity.UserIDFromContext(r.Context()))
		api.Error(w, http.StatusInternalServerError, "ask assistant failed")
	case KindUpstreamInvalid:
		slog.Warn("assistant upstream failure", "error", perr.Err)
		api.Error(w, http.StatusBadGateway, perr.Message)
	case KindParseFailure:
		api.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": perr.Message,
			"raw":     perr.RawExcerpt,
		})
	case KindUnrecognizedIntent:
		api.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":  false,
			"message":  perr.Message,
			"type":     perr.IntentType,
			"response": perr.ResponseText,
		})
	default:
		slog.Error("ask pipeline failed", "error", perr)
		api.Error(w, http.StatusInternalServerError, "ask assistant failed")
	}
}
