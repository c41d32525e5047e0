package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// AuthHandler provides the sign-in, sign-up and session endpoints.
type AuthHandler struct {
	identity    services.IdentityGateway
	userService *services.UserService
}

func NewAuthHandler(identity services.IdentityGateway, userService *services.UserService) *AuthHandler {
	return &AuthHandler{identity: identity, userService: userService}
}

// AuthRouter registers auth routes on the given router. Login is
// rate-limited per client IP.
func AuthRouter(r chi.Router, identity services.IdentityGateway, userService *services.UserService, loginRateLimit int) {
	handler := NewAuthHandler(identity, userService)
	auth := RequireAuth(identity)

	r.Post("/register", handler.Register)
	r.With(httprate.LimitByIP(loginRateLimit, time.Minute)).Post("/login", handler.Login)
	r.With(auth).Post("/logout", handler.Logout)
	r.With(auth).Get("/me", handler.Me)
}

// RequireAuth resolves the bearer token into a viewer and injects it
// into the request context.
func RequireAuth(identity services.IdentityGateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			session, err := identity.SessionFromToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextViewerKey, session.Viewer())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the authenticated session payload: the token, the
// viewer projection, and the destinations the role may navigate to.
type SessionResponse struct {
	Token      string               `json:"token,omitempty"`
	Session    types.Session        `json:"session"`
	Navigation []policy.Destination `json:"navigation"`
}

// Register creates a new account via the identity gateway. Accounts
// created here always start at the regular role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, err := h.identity.SignUp(r.Context(), req.Email, req.Password, services.SignUpMeta{
		Username:   strings.TrimSpace(req.Username),
		Department: strings.TrimSpace(req.Department),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_, token, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		Token:      token,
		Session:    session,
		Navigation: policy.Navigation(session.Role),
	})
}

// Login verifies credentials and returns a token plus the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, token, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Token:      token,
		Session:    session,
		Navigation: policy.Navigation(session.Role),
	})
}

// Logout acknowledges a sign-out. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current account profile plus navigation.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), viewer.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User       types.User           `json:"user"`
		Navigation []policy.Destination `json:"navigation"`
	}{
		User:       user,
		Navigation: policy.Navigation(user.Role),
	})
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
