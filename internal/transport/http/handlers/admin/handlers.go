package adminhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ams/internal/domain/audit"
	"ams/internal/domain/auth"
	"ams/internal/domain/entitlement"
	"ams/internal/domain/holiday"
	"ams/internal/domain/identity"
	"ams/internal/domain/reports"
	"ams/internal/transport/http/api"
	"ams/internal/transport/http/middleware"
	"ams/internal/transport/http/shared"
)

type Handler struct {
	Identity    *identity.Service
	Entitlement *entitlement.Service
	Holidays    *holiday.Service
	Reports     *reports.Service
	Audit       *audit.Service
}

func NewHandler(id *identity.Service, ent *entitlement.Service, hol *holiday.Service, rep *reports.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Identity: id, Entitlement: ent, Holidays: hol, Reports: rep, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdministrator))
		r.Get("/users", h.handleListUsers)
		r.Post("/users", h.handleCreateUser)
		r.Get("/users/{userID}", h.handleGetUser)
		r.Put("/users/{userID}", h.handleUpdateUser)
		r.Get("/departments", h.handleListDepartments)
		r.Post("/departments", h.handleCreateDepartment)
		r.Put("/departments/{departmentID}", h.handleUpdateDepartment)
		r.Delete("/departments/{departmentID}", h.handleDeleteDepartment)
		r.Post("/entitlements", h.handleAllocate)
		r.Get("/entitlements/{userID}", h.handleBalance)
		r.Get("/holidays", h.handleListHolidays)
		r.Post("/holidays", h.handleCreateHoliday)
		r.Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
		r.Get("/audit", h.handleListAudit)
		r.Get("/reports/attendance", h.handleReportAttendance)
		r.Get("/reports/attendance/export", h.handleReportAttendancePDF)
		r.Get("/reports/leave", h.handleReportLeave)
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	users, err := h.Identity.ListUsers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_failed", "failed to list users", requestID)
		return
	}
	api.Success(w, users, requestID)
}

type createUserPayload struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	EmployeeNo   string  `json:"employeeNo"`
	Role         string  `json:"role"`
	ManagerID    *string `json:"managerId"`
	DepartmentID *string `json:"departmentId"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload createUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.EmployeeNo == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "email, password and employeeNo are required", requestID)
		return
	}

	user, err := h.Identity.CreateUser(r.Context(), identity.CreateUserInput{
		Email:        payload.Email,
		Password:     payload.Password,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		EmployeeNo:   payload.EmployeeNo,
		Role:         payload.Role,
		ManagerID:    payload.ManagerID,
		DepartmentID: payload.DepartmentID,
	})
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "user.create", "user", user.ID, requestID, shared.ClientIP(r), nil, user); err != nil {
		slog.Warn("audit user.create failed", "err", err)
	}
	api.Created(w, user, requestID)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, err := h.Identity.User(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload identity.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Identity.User(r.Context(), userID)
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}

	user, err := h.Identity.UpdateUser(r.Context(), userID, payload)
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "user.update", "user", user.ID, requestID, shared.ClientIP(r), before, user); err != nil {
		slog.Warn("audit user.update failed", "err", err)
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	departments, err := h.Identity.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, departments, requestID)
}

type departmentPayload struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	WeeklyOffDays string `json:"weeklyOffDays"`
	IsActive      *bool  `json:"isActive"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "name is required", requestID)
		return
	}
	if payload.WeeklyOffDays == "" {
		payload.WeeklyOffDays = "Saturday,Sunday"
	}

	department, err := h.Identity.CreateDepartment(r.Context(), payload.Name, payload.Description, payload.WeeklyOffDays)
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "department.create", "department", department.ID, requestID, shared.ClientIP(r), nil, department); err != nil {
		slog.Warn("audit department.create failed", "err", err)
	}
	api.Created(w, department, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	department, err := h.Identity.UpdateDepartment(r.Context(), departmentID, identity.Department{
		Name:          payload.Name,
		Description:   payload.Description,
		WeeklyOffDays: payload.WeeklyOffDays,
		IsActive:      isActive,
	})
	if err != nil {
		failIdentity(w, err, requestID)
		return
	}
	api.Success(w, department, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	if err := h.Identity.DeleteDepartment(r.Context(), departmentID); err != nil {
		failIdentity(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "department.delete", "department", departmentID, requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit department.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": departmentID}, requestID)
}

type allocatePayload struct {
	UserID         string          `json:"userId"`
	Year           int             `json:"year"`
	CasualBalance  decimal.Decimal `json:"casualLeaveBalance"`
	EarnedBalance  decimal.Decimal `json:"earnedLeaveBalance"`
	CompOffBalance decimal.Decimal `json:"compensatoryOffBalance"`
}

func (h *Handler) handleAllocate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload allocatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	// The user must exist; allocation never creates identities.
	if _, err := h.Identity.User(r.Context(), payload.UserID); err != nil {
		failIdentity(w, err, requestID)
		return
	}

	allocated, err := h.Entitlement.Allocate(r.Context(), entitlement.AllocateInput{
		UserID:         payload.UserID,
		Year:           payload.Year,
		CasualBalance:  payload.CasualBalance,
		EarnedBalance:  payload.EarnedBalance,
		CompOffBalance: payload.CompOffBalance,
	})
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrInvalidYear):
			api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid entitlement year", requestID)
		case errors.Is(err, entitlement.ErrNegative):
			api.Fail(w, http.StatusBadRequest, "invalid_input", "balances must not be negative", requestID)
		default:
			slog.Error("entitlement allocate failed", "err", err, "requestId", requestID)
			api.Fail(w, http.StatusInternalServerError, "allocate_failed", "failed to allocate entitlement", requestID)
		}
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "entitlement.allocate", "leave_entitlement", allocated.ID, requestID, shared.ClientIP(r), nil, allocated); err != nil {
		slog.Warn("audit entitlement.allocate failed", "err", err)
	}
	api.Success(w, allocated, requestID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_input", "year must be a number", requestID)
			return
		}
		year = parsed
	}

	balance, err := h.Entitlement.Balance(r.Context(), userID, year)
	if err != nil {
		if errors.Is(err, entitlement.ErrNoEntitlement) {
			api.Fail(w, http.StatusNotFound, "no_entitlement", "no leave entitlement allocated for this year", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load entitlement", requestID)
		return
	}
	api.Success(w, balance, requestID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_input", "year must be a number", requestID)
			return
		}
		year = parsed
	}

	holidays, err := h.Holidays.ListByYear(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", requestID)
		return
	}
	api.Success(w, holidays, requestID)
}

type holidayPayload struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil || date.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "date must be a valid date", requestID)
		return
	}

	created, err := h.Holidays.Create(r.Context(), holiday.CreateInput{
		Date:        date,
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, holiday.ErrDuplicateDate):
			api.Fail(w, http.StatusBadRequest, "conflict", "a holiday already exists on this date", requestID)
		case errors.Is(err, holiday.ErrMissingName):
			api.Fail(w, http.StatusBadRequest, "invalid_input", "holiday name is required", requestID)
		default:
			slog.Error("holiday create failed", "err", err, "requestId", requestID)
			api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to create holiday", requestID)
		}
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "holiday.create", "public_holiday", created.ID, requestID, shared.ClientIP(r), nil, created); err != nil {
		slog.Warn("audit holiday.create failed", "err", err)
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	holidayID := chi.URLParam(r, "holidayID")

	if err := h.Holidays.Delete(r.Context(), holidayID); err != nil {
		if errors.Is(err, holiday.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "holiday not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to delete holiday", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "holiday.delete", "public_holiday", holidayID, requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit holiday.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": holidayID}, requestID)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actorUserId"),
	}
	events, err := h.Audit.List(r.Context(), filter, r.URL.Query().Get("details") == "true", page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", requestID)
		return
	}
	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to count audit events", requestID)
		return
	}
	api.Success(w, map[string]any{"events": events, "total": total}, requestID)
}

func (h *Handler) reportRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	return from, to, nil
}

func (h *Handler) handleReportAttendance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	from, to, err := h.reportRange(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "from/to must be valid dates", requestID)
		return
	}

	rows, err := h.Reports.Attendance(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build attendance report", requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleReportAttendancePDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	from, to, err := h.reportRange(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "from/to must be valid dates", requestID)
		return
	}

	rows, err := h.Reports.Attendance(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build attendance report", requestID)
		return
	}
	pdfBytes, err := reports.AttendancePDF(from, to, rows)
	if err != nil {
		slog.Error("attendance pdf render failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render attendance report", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) handleReportLeave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_input", "year must be a number", requestID)
			return
		}
		year = parsed
	}

	rows, err := h.Reports.Leave(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build leave report", requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func failIdentity(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, identity.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, identity.ErrEmailTaken):
		api.Fail(w, http.StatusBadRequest, "conflict", "a user with this email already exists", requestID)
	case errors.Is(err, identity.ErrEmployeeNoTaken):
		api.Fail(w, http.StatusBadRequest, "conflict", "a user with this employee id already exists", requestID)
	case errors.Is(err, identity.ErrInvalidRole):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid role", requestID)
	case errors.Is(err, identity.ErrInvalidManager):
		api.Fail(w, http.StatusBadRequest, "invalid_input", "manager must exist and hold the Manager or Administrator role", requestID)
	case errors.Is(err, identity.ErrDepartmentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "department not found or inactive", requestID)
	case errors.Is(err, identity.ErrDepartmentInUse):
		api.Fail(w, http.StatusBadRequest, "conflict", "department still has active employees", requestID)
	default:
		slog.Error("identity operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "identity_failed", "operation failed", requestID)
	}
}
