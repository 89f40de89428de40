package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"ams/internal/domain/auth"
	"ams/internal/domain/identity"
)

// Calendar answers whether a date is an active public holiday.
type Calendar interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// Ledger receives compensatory-off credits earned by weekend/holiday work.
// The credit joins the logout's transaction; losing it after the logout
// committed would be unrecoverable.
type Ledger interface {
	AccrueCompOffTx(ctx context.Context, tx pgx.Tx, userID string, year int) error
}

// Directory resolves users and reporting lines. Manager lookups must be
// fresh on every decision; the hierarchy can change while a record is
// pending.
type Directory interface {
	UserByID(ctx context.Context, userID string) (identity.User, error)
	ManagerID(ctx context.Context, userID string) (string, error)
	SubordinateIDs(ctx context.Context, managerID string) ([]string, error)
}

type Service struct {
	store     StoreAPI
	calendar  Calendar
	ledger    Ledger
	directory Directory
	now       func() time.Time
}

func NewService(store StoreAPI, calendar Calendar, ledger Ledger, directory Directory) *Service {
	return &Service{
		store:     store,
		calendar:  calendar,
		ledger:    ledger,
		directory: directory,
		now:       time.Now,
	}
}

// WithClock overrides the service clock; tests use it to pin dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login opens today's attendance record. The weekend and holiday flags are
// classified here and frozen on the record.
func (s *Service) Login(ctx context.Context, userID string) (Record, error) {
	now := s.now()
	today := Day(now)

	existing, err := s.store.ByUserDate(ctx, userID, today)
	if err == nil {
		if existing.Open() {
			return Record{}, ErrAlreadyLoggedIn
		}
		return Record{}, ErrAlreadyCompleted
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	isHoliday, err := s.calendar.IsHoliday(ctx, today)
	if err != nil {
		return Record{}, err
	}

	record, err := s.store.Create(ctx, Record{
		UserID:          userID,
		Date:            today,
		LoginTime:       now,
		IsWeekend:       IsWeekend(today),
		IsPublicHoliday: isHoliday,
		Status:          StatusPending,
	})
	if errors.Is(err, ErrDuplicateDate) {
		// Lost a race with a concurrent login on the same day.
		return Record{}, ErrAlreadyLoggedIn
	}
	if err != nil {
		return Record{}, err
	}
	slog.Info("attendance login", "userId", userID, "date", today.Format(time.DateOnly))
	return record, nil
}

// Logout closes today's open record. Working a weekend or public holiday
// earns half a day of compensatory off, credited in the same transaction as
// the logout itself.
func (s *Service) Logout(ctx context.Context, userID string) (Record, error) {
	now := s.now()
	today := Day(now)

	record, err := s.store.ByUserDate(ctx, userID, today)
	if errors.Is(err, ErrNotFound) {
		return Record{}, ErrNoActiveLogin
	}
	if err != nil {
		return Record{}, err
	}
	if !record.Open() {
		return Record{}, ErrNoActiveLogin
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	if err := s.store.SetLogoutTx(ctx, tx, record.ID, now); err != nil {
		return Record{}, err
	}
	if record.IsWeekend || record.IsPublicHoliday {
		if err := s.ledger.AccrueCompOffTx(ctx, tx, userID, today.Year()); err != nil {
			return Record{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}

	record.LogoutTime = &now
	return record, nil
}

// Decide approves or rejects a pending record. Administrators may decide any
// record; managers only those of their direct reports, checked against the
// current hierarchy.
func (s *Service) Decide(ctx context.Context, actor auth.Actor, recordID string, approved bool) (Record, error) {
	record, err := s.store.ByID(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	if record.Status != StatusPending {
		return Record{}, ErrAlreadyDecided
	}

	managerID, err := s.directory.ManagerID(ctx, record.UserID)
	if err != nil {
		return Record{}, err
	}
	if !auth.CanActOn(actor, managerID) {
		return Record{}, ErrNotAuthorized
	}

	status := StatusApproved
	if !approved {
		status = StatusRejected
	}
	decidedAt := s.now()
	if err := s.store.Decide(ctx, record.ID, status, actor.ID, decidedAt); err != nil {
		return Record{}, err
	}

	record.Status = status
	record.ApprovedBy = &actor.ID
	record.ApprovedAt = &decidedAt
	slog.Info("attendance decided", "recordId", record.ID, "status", status, "actorId", actor.ID)
	return record, nil
}

// LogPast records attendance on behalf of an employee. Managers may only
// backdate for their own reports and only to past dates; administrators may
// log any date for anyone.
func (s *Service) LogPast(ctx context.Context, actor auth.Actor, input LogPastInput) (Record, error) {
	employee, err := s.directory.UserByID(ctx, input.EmployeeID)
	if err != nil {
		return Record{}, err
	}
	if !employee.IsActive {
		return Record{}, ErrUserInactive
	}

	managerID := ""
	if employee.ManagerID != nil {
		managerID = *employee.ManagerID
	}
	if !auth.CanActOn(actor, managerID) {
		return Record{}, ErrNotAuthorized
	}

	now := s.now()
	date := Day(input.Date)
	if !auth.CanBackdate(actor, date, Day(now)) {
		return Record{}, ErrInvalidDate
	}
	if input.LogoutTime != nil && !input.LogoutTime.After(input.LoginTime) {
		return Record{}, ErrInvalidTimes
	}

	if _, err := s.store.ByUserDate(ctx, input.EmployeeID, date); err == nil {
		return Record{}, ErrDuplicateDate
	} else if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	isHoliday, err := s.calendar.IsHoliday(ctx, date)
	if err != nil {
		return Record{}, err
	}

	record, err := s.store.Create(ctx, Record{
		UserID:          input.EmployeeID,
		Date:            date,
		LoginTime:       input.LoginTime,
		LogoutTime:      input.LogoutTime,
		IsWeekend:       IsWeekend(date),
		IsPublicHoliday: isHoliday,
		Status:          StatusApproved,
		ApprovedBy:      &actor.ID,
		ApprovedAt:      &now,
	})
	if err != nil {
		return Record{}, err
	}
	slog.Info("attendance backdated", "employeeId", input.EmployeeID, "date", date.Format(time.DateOnly), "actorId", actor.ID)
	return record, nil
}

// Today returns today's record for the user, if any.
func (s *Service) Today(ctx context.Context, userID string) (Record, error) {
	return s.store.ByUserDate(ctx, userID, Day(s.now()))
}

// History lists the user's records in [from, to].
func (s *Service) History(ctx context.Context, userID string, from, to time.Time) ([]Record, error) {
	return s.store.ListByUser(ctx, userID, Day(from), Day(to))
}

// PendingForActor lists records awaiting the actor's decision:
// administrators see every pending record, managers only their reports'.
func (s *Service) PendingForActor(ctx context.Context, actor auth.Actor) ([]Record, error) {
	if actor.Role == auth.RoleAdministrator {
		return s.store.ListPendingAll(ctx)
	}
	ids, err := s.directory.SubordinateIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.store.ListPending(ctx, ids)
}
