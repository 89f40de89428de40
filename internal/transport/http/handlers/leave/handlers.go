package leavehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ams/internal/domain/audit"
	"ams/internal/domain/entitlement"
	"ams/internal/domain/leave"
	"ams/internal/transport/http/api"
	"ams/internal/transport/http/middleware"
	"ams/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireRole())
		r.Get("/balance", h.handleBalance)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Post("/requests/{requestID}/cancel", h.handleCancelRequest)
	})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	balance, err := h.Service.Balance(r.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, entitlement.ErrNoEntitlement) {
			api.Fail(w, http.StatusNotFound, "no_entitlement", "no leave entitlement allocated for this year", requestID)
			return
		}
		slog.Error("balance lookup failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load leave balance", requestID)
		return
	}
	api.Success(w, balance, requestID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	requests, err := h.Service.MyRequests(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "failed to load leave requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type createRequestPayload struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil || start.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "startDate must be a valid date", requestID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "endDate must be a valid date", requestID)
		return
	}

	request, err := h.Service.CreateRequest(r.Context(), user.UserID, leave.CreateInput{
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "leave.request.create", "leave_request", request.ID, requestID, shared.ClientIP(r), nil, request); err != nil {
		slog.Warn("audit leave.request.create failed", "err", err)
	}
	api.Created(w, request, requestID)
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leaveID := chi.URLParam(r, "requestID")

	request, err := h.Service.Cancel(r.Context(), user.UserID, leaveID)
	if err != nil {
		failLeave(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "leave.request.cancel", "leave_request", request.ID, requestID, shared.ClientIP(r), nil, request); err != nil {
		slog.Warn("audit leave.request.cancel failed", "err", err)
	}
	api.Success(w, request, requestID)
}

func failLeave(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "end date must not be before start date", requestID)
	case errors.Is(err, leave.ErrInvalidType):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "unknown leave type", requestID)
	case errors.Is(err, entitlement.ErrNoEntitlement):
		api.Fail(w, http.StatusBadRequest, "no_entitlement", "no leave entitlement allocated for this year", requestID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusBadRequest, "insufficient_balance", "insufficient leave balance", requestID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusBadRequest, "conflict", "an overlapping leave request already exists", requestID)
	case errors.Is(err, leave.ErrAlreadyDecided):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "leave request has already been decided", requestID)
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "not_authorized", "leave request belongs to another user", requestID)
	case errors.Is(err, leave.ErrInvalidTransition):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "leave request is not pending", requestID)
	case errors.Is(err, leave.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "not_authorized", "not authorized to act on this leave request", requestID)
	default:
		slog.Error("leave operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "leave operation failed", requestID)
	}
}
