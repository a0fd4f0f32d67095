package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arialabs/aria-server/internal/identity"
	"github.com/arialabs/aria-server/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxAssistantNameLen = 40

// ProfileHandler serves the current-user and assistant-customization endpoints.
type ProfileHandler struct {
	repo store.Repository
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(repo store.Repository) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

// RegisterRoutes mounts profile routes. Callers wrap them with the identity
// middleware.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/user/current", h.HandleCurrentUser)
	r.Post("/api/user/update", h.HandleUpdateAssistant)
}

// HandleCurrentUser returns the authenticated user without credentials.
func (h *ProfileHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil {
		slog.Error("get current user failed", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to get current user")
		return
	}
	if user == nil {
		Error(w, http.StatusNotFound, "user not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": user})
}

type updateAssistantRequest struct {
	AssistantName string `json:"assistantName"`
	ImageURL      string `json:"imageUrl"`
}

// HandleUpdateAssistant updates the assistant persona name and image URL.
func (h *ProfileHandler) HandleUpdateAssistant(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.AssistantName)
	image := strings.TrimSpace(req.ImageURL)

	if req.AssistantName != "" && name == "" {
		Error(w, http.StatusBadRequest, "assistantName must be a non-empty string")
		return
	}
	if len(name) > maxAssistantNameLen {
		Error(w, http.StatusBadRequest, "assistantName too long (max 40 chars)")
		return
	}
	if name == "" && image == "" {
		Error(w, http.StatusBadRequest, "no valid fields provided to update")
		return
	}

	user, err := h.repo.UpdateAssistant(r.Context(), userID, name, image)
	if err != nil {
		if err == store.ErrNotFound {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("update assistant failed", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to update assistant")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": user})
}
