// Package auth implements account registration and login endpoints.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/arialabs/aria-server/internal/api"
	"github.com/arialabs/aria-server/internal/domain"
	"github.com/arialabs/aria-server/internal/identity"
	"github.com/arialabs/aria-server/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	maxNameLen     = 50
	bcryptCost     = 12
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Handler serves signup, signin and logout.
type Handler struct {
	repo   store.Repository
	secret []byte
	isDev  bool
}

// NewHandler creates an auth handler.
func NewHandler(repo store.Repository, secret []byte, isDev bool) *Handler {
	return &Handler{repo: repo, secret: secret, isDev: isDev}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/signup", h.HandleSignUp)
	r.Post("/api/auth/signin", h.HandleSignIn)
	r.Post("/api/auth/logout", h.HandleLogout)
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignUp registers a new account and signs the caller in.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(name) > maxNameLen {
		api.Error(w, http.StatusBadRequest, "name too long (max 50 chars)")
		return
	}
	if !emailPattern.MatchString(email) {
		api.Error(w, http.StatusBadRequest, "please provide a valid email")
		return
	}
	if len(req.Password) < minPasswordLen {
		api.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "signup failed")
		return
	}

	now := time.Now()
	user := &domain.User{
		UserID:        uuid.NewString(),
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		AssistantName: domain.DefaultAssistantName,
		History:       []domain.HistoryEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			api.Error(w, http.StatusBadRequest, "email already exists")
			return
		}
		slog.Error("create user failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := h.signIn(w, user.UserID); err != nil {
		slog.Error("issue token failed", "error", err, "user_id", user.UserID)
		api.Error(w, http.StatusInternalServerError, "signup failed")
		return
	}

	api.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "user registered successfully",
		"data":    user,
	})
}

// HandleSignIn verifies credentials and sets the auth cookie. Unknown email
// and wrong password produce the same response on purpose.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("lookup user failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		api.Error(w, http.StatusBadRequest, "invalid email or password")
		return
	}

	if err := h.signIn(w, user.UserID); err != nil {
		slog.Error("issue token failed", "error", err, "user_id", user.UserID)
		api.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged in successfully",
		"data":    user,
	})
}

// HandleLogout clears the auth cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	identity.ClearAuthCookie(w, h.isDev)
	api.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out successfully",
	})
}

func (h *Handler) signIn(w http.ResponseWriter, userID string) error {
	token, err := identity.IssueToken(h.secret, userID, time.Now())
	if err != nil {
		return err
	}
	identity.SetAuthCookie(w, token, h.isDev)
	return nil
}
