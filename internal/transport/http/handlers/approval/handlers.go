package approvalhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ams/internal/domain/attendance"
	"ams/internal/domain/audit"
	"ams/internal/domain/auth"
	"ams/internal/domain/entitlement"
	"ams/internal/domain/identity"
	"ams/internal/domain/leave"
	"ams/internal/transport/http/api"
	"ams/internal/transport/http/middleware"
	"ams/internal/transport/http/shared"
)

type Handler struct {
	Attendance  *attendance.Service
	Leave       *leave.Service
	Identity    *identity.Service
	Entitlement *entitlement.Service
	Audit       *audit.Service
}

func NewHandler(att *attendance.Service, lv *leave.Service, id *identity.Service, ent *entitlement.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Attendance: att, Leave: lv, Identity: id, Entitlement: ent, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/approvals", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleManager, auth.RoleAdministrator))
		r.Get("/attendance/pending", h.handlePendingAttendance)
		r.Post("/attendance/{recordID}/approve", h.handleApproveAttendance)
		r.Post("/attendance/{recordID}/reject", h.handleRejectAttendance)
		r.Post("/attendance/backdate", h.handleBackdate)
		r.Get("/leave/pending", h.handlePendingLeave)
		r.Post("/leave/{requestID}/decide", h.handleDecideLeave)
		r.Get("/team", h.handleTeam)
		r.Get("/team/attendance", h.handleTeamAttendance)
		r.Get("/team/leave", h.handleTeamLeave)
		r.Post("/comp-off", h.handleAssignCompOff)
	})
}

func actorFrom(r *http.Request) auth.Actor {
	user, _ := middleware.GetUser(r.Context())
	return auth.Actor{ID: user.UserID, Role: user.Role}
}

func (h *Handler) handlePendingAttendance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	records, err := h.Attendance.PendingForActor(r.Context(), actorFrom(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load pending attendance", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) decideAttendance(w http.ResponseWriter, r *http.Request, approved bool) {
	requestID := middleware.GetRequestID(r.Context())
	actor := actorFrom(r)
	recordID := chi.URLParam(r, "recordID")

	record, err := h.Attendance.Decide(r.Context(), actor, recordID, approved)
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}

	action := "attendance.approve"
	if !approved {
		action = "attendance.reject"
	}
	if err := h.Audit.Record(r.Context(), actor.ID, action, "attendance", record.ID, requestID, shared.ClientIP(r), nil, record); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleApproveAttendance(w http.ResponseWriter, r *http.Request) {
	h.decideAttendance(w, r, true)
}

func (h *Handler) handleRejectAttendance(w http.ResponseWriter, r *http.Request) {
	h.decideAttendance(w, r, false)
}

type backdatePayload struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	LoginTime  string `json:"loginTime"`
	LogoutTime string `json:"logoutTime"`
}

func (h *Handler) handleBackdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor := actorFrom(r)

	var payload backdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil || date.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "date must be a valid date", requestID)
		return
	}
	loginTime, err := time.Parse(time.RFC3339, payload.LoginTime)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "loginTime must be RFC3339", requestID)
		return
	}
	var logoutTime *time.Time
	if payload.LogoutTime != "" {
		parsed, err := time.Parse(time.RFC3339, payload.LogoutTime)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_input", "logoutTime must be RFC3339", requestID)
			return
		}
		logoutTime = &parsed
	}

	record, err := h.Attendance.LogPast(r.Context(), actor, attendance.LogPastInput{
		EmployeeID: payload.EmployeeID,
		Date:       date,
		LoginTime:  loginTime,
		LogoutTime: logoutTime,
	})
	if err != nil {
		failAttendance(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.ID, "attendance.backdate", "attendance", record.ID, requestID, shared.ClientIP(r), nil, record); err != nil {
		slog.Warn("audit attendance.backdate failed", "err", err)
	}
	api.Created(w, record, requestID)
}

func (h *Handler) handlePendingLeave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	requests, err := h.Leave.PendingForActor(r.Context(), actorFrom(r))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "failed to load pending leave", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type decideLeavePayload struct {
	Approved        bool   `json:"approved"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *Handler) handleDecideLeave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor := actorFrom(r)
	leaveID := chi.URLParam(r, "requestID")

	var payload decideLeavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	request, err := h.Leave.Decide(r.Context(), actor, leaveID, payload.Approved, payload.RejectionReason)
	if err != nil {
		failLeave(w, err, requestID)
		return
	}

	action := "leave.approve"
	if !payload.Approved {
		action = "leave.reject"
	}
	if err := h.Audit.Record(r.Context(), actor.ID, action, "leave_request", request.ID, requestID, shared.ClientIP(r), nil, request); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
	api.Success(w, request, requestID)
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor := actorFrom(r)

	managerID := actor.ID
	if actor.Role == auth.RoleAdministrator {
		// Admins see every non-administrator employee.
		managerID = ""
	}
	members, err := h.Identity.TeamMembers(r.Context(), managerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_failed", "failed to load team", requestID)
		return
	}
	api.Success(w, members, requestID)
}

// requireAuthority resolves the target user and enforces the actor's
// hierarchy scope over them.
func (h *Handler) requireAuthority(w http.ResponseWriter, r *http.Request, userID, requestID string) bool {
	if userID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "userId is required", requestID)
		return false
	}
	managerID, err := h.Identity.ManagerID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
			return false
		}
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to resolve user", requestID)
		return false
	}
	if !auth.CanActOn(actorFrom(r), managerID) {
		api.Fail(w, http.StatusForbidden, "not_authorized", "user does not report to you", requestID)
		return false
	}
	return true
}

func (h *Handler) handleTeamAttendance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := r.URL.Query().Get("userId")
	if !h.requireAuthority(w, r, userID, requestID) {
		return
	}

	now := time.Now().UTC()
	from, _ := shared.ParseDate(r.URL.Query().Get("from"))
	to, _ := shared.ParseDate(r.URL.Query().Get("to"))
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	records, err := h.Attendance.History(r.Context(), userID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance history", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleTeamLeave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := r.URL.Query().Get("userId")
	if !h.requireAuthority(w, r, userID, requestID) {
		return
	}

	requests, err := h.Leave.MyRequests(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "failed to load leave history", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type compOffPayload struct {
	EmployeeID string          `json:"employeeId"`
	Year       int             `json:"year"`
	Days       decimal.Decimal `json:"days"`
}

func (h *Handler) handleAssignCompOff(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor := actorFrom(r)

	var payload compOffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Year == 0 {
		payload.Year = time.Now().UTC().Year()
	}
	if !h.requireAuthority(w, r, payload.EmployeeID, requestID) {
		return
	}

	if err := h.Entitlement.AssignCompOff(r.Context(), payload.EmployeeID, payload.Year, payload.Days); err != nil {
		if errors.Is(err, entitlement.ErrNegative) {
			api.Fail(w, http.StatusBadRequest, "invalid_input", "days must be positive", requestID)
			return
		}
		slog.Error("comp off assign failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "comp_off_failed", "failed to assign compensatory off", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.ID, "entitlement.compoff.assign", "leave_entitlement", payload.EmployeeID, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit entitlement.compoff.assign failed", "err", err)
	}
	api.Success(w, map[string]any{"employeeId": payload.EmployeeID, "year": payload.Year, "days": payload.Days}, requestID)
}

func failAttendance(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
	case errors.Is(err, identity.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, attendance.ErrAlreadyDecided):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "attendance record has already been decided", requestID)
	case errors.Is(err, attendance.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "not_authorized", "not authorized to act on this attendance record", requestID)
	case errors.Is(err, attendance.ErrDuplicateDate):
		api.Fail(w, http.StatusBadRequest, "conflict", "an attendance record already exists for this date", requestID)
	case errors.Is(err, attendance.ErrInvalidTimes):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "logout time must be after login time", requestID)
	case errors.Is(err, attendance.ErrInvalidDate):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "date must be in the past", requestID)
	case errors.Is(err, attendance.ErrUserInactive):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "employee is not active", requestID)
	default:
		slog.Error("attendance operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", requestID)
	}
}

func failLeave(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
	case errors.Is(err, leave.ErrAlreadyDecided):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "leave request has already been decided", requestID)
	case errors.Is(err, leave.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "not_authorized", "not authorized to act on this leave request", requestID)
	case errors.Is(err, entitlement.ErrNoEntitlement):
		api.Fail(w, http.StatusBadRequest, "no_entitlement", "no leave entitlement allocated for this year", requestID)
	default:
		slog.Error("leave operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "leave operation failed", requestID)
	}
}
