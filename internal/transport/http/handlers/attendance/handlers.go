package attendancehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ams/internal/domain/attendance"
	"ams/internal/domain/audit"
	"ams/internal/transport/http/api"
	"ams/internal/transport/http/middleware"
	"ams/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Audit   *audit.Service
}

func NewHandler(service *attendance.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireRole())
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/today", h.handleToday)
		r.Get("/history", h.handleHistory)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.Login(r.Context(), user.UserID)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "attendance.login", "attendance", record.ID, requestID, shared.ClientIP(r), nil, record); err != nil {
		slog.Warn("audit attendance.login failed", "err", err)
	}
	api.Created(w, record, requestID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.Logout(r.Context(), user.UserID)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "attendance.logout", "attendance", record.ID, requestID, shared.ClientIP(r), nil, record); err != nil {
		slog.Warn("audit attendance.logout failed", "err", err)
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.Today(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			api.Success(w, nil, requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance", requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "from must be a valid date", requestID)
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "to must be a valid date", requestID)
		return
	}
	now := time.Now().UTC()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	records, err := h.Service.History(r.Context(), user.UserID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance history", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func failAttendance(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyLoggedIn):
		api.Fail(w, http.StatusBadRequest, "conflict", "already logged in today", requestID)
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		api.Fail(w, http.StatusBadRequest, "conflict", "attendance for today is already completed", requestID)
	case errors.Is(err, attendance.ErrNoActiveLogin):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "no active login found for today", requestID)
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
	default:
		slog.Error("attendance operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", requestID)
	}
}
