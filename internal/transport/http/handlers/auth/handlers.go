package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ams/internal/domain/auth"
	"ams/internal/domain/identity"
	"ams/internal/transport/http/api"
	"ams/internal/transport/http/middleware"
)

type Handler struct {
	Users     identity.StoreAPI
	JWTSecret string
	TokenTTL  time.Duration
}

func NewHandler(users identity.StoreAPI, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{Users: users, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireRole()).Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  identity.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", requestID)
		return
	}

	user, err := h.Users.UserByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
			return
		}
		slog.Error("login lookup failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}
	if !user.IsActive {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{UserID: user.ID, Role: user.Role}, h.TokenTTL)
	if err != nil {
		slog.Error("token generation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	api.Success(w, loginResponse{Token: token, User: user}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	me, err := h.Users.UserByID(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, me, requestID)
}
