package attendance

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ams/internal/domain/auth"
	"ams/internal/domain/identity"
)

// fakeTx buffers writes until Commit so tests observe real transactional
// behavior: nothing staged through it is visible after a rollback.
type fakeTx struct {
	pgx.Tx
	staged []func()
}

func (t *fakeTx) Commit(context.Context) error {
	for _, apply := range t.staged {
		apply()
	}
	t.staged = nil
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.staged = nil
	return nil
}

func stage(tx pgx.Tx, apply func()) {
	ft := tx.(*fakeTx)
	ft.staged = append(ft.staged, apply)
}

type fakeStore struct {
	records []*Record
	nextID  int
}

func (f *fakeStore) ByID(_ context.Context, recordID string) (Record, error) {
	for _, r := range f.records {
		if r.ID == recordID {
			return *r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (f *fakeStore) ByUserDate(_ context.Context, userID string, date time.Time) (Record, error) {
	for _, r := range f.records {
		if r.UserID == userID && r.Date.Equal(date) {
			return *r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, r Record) (Record, error) {
	for _, existing := range f.records {
		if existing.UserID == r.UserID && existing.Date.Equal(r.Date) {
			return Record{}, ErrDuplicateDate
		}
	}
	f.nextID++
	r.ID = "att-" + strconv.Itoa(f.nextID)
	f.records = append(f.records, &r)
	return r, nil
}

func (f *fakeStore) BeginTx(_ context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

func (f *fakeStore) SetLogoutTx(_ context.Context, tx pgx.Tx, recordID string, logoutTime time.Time) error {
	for _, r := range f.records {
		if r.ID == recordID && r.LogoutTime == nil {
			stage(tx, func() {
				r.LogoutTime = &logoutTime
			})
			return nil
		}
	}
	return ErrNoActiveLogin
}

func (f *fakeStore) Decide(_ context.Context, recordID, status, approverID string, decidedAt time.Time) error {
	for _, r := range f.records {
		if r.ID == recordID {
			if r.Status != StatusPending {
				return ErrAlreadyDecided
			}
			r.Status = status
			r.ApprovedBy = &approverID
			r.ApprovedAt = &decidedAt
			return nil
		}
	}
	return ErrAlreadyDecided
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if r.UserID == userID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPending(_ context.Context, userIDs []string) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if r.Status != StatusPending {
			continue
		}
		for _, id := range userIDs {
			if r.UserID == id {
				out = append(out, *r)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingAll(_ context.Context) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if r.Status == StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeCalendar struct {
	holidays map[string]bool
}

func (f *fakeCalendar) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	return f.holidays[date.Format(time.DateOnly)], nil
}

type fakeLedger struct {
	accruals  int
	accrueErr error
}

func (f *fakeLedger) AccrueCompOffTx(_ context.Context, tx pgx.Tx, _ string, _ int) error {
	if f.accrueErr != nil {
		return f.accrueErr
	}
	stage(tx, func() {
		f.accruals++
	})
	return nil
}

type fakeDirectory struct {
	users map[string]identity.User
}

func (f *fakeDirectory) UserByID(_ context.Context, userID string) (identity.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return u, nil
}

func (f *fakeDirectory) ManagerID(_ context.Context, userID string) (string, error) {
	u, ok := f.users[userID]
	if !ok {
		return "", identity.ErrNotFound
	}
	if u.ManagerID == nil {
		return "", nil
	}
	return *u.ManagerID, nil
}

func (f *fakeDirectory) SubordinateIDs(_ context.Context, managerID string) ([]string, error) {
	var ids []string
	for id, u := range f.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func strPtr(s string) *string { return &s }

func newTestService(clock time.Time) (*Service, *fakeStore, *fakeCalendar, *fakeLedger, *fakeDirectory) {
	store := &fakeStore{}
	calendar := &fakeCalendar{holidays: map[string]bool{}}
	ledger := &fakeLedger{}
	directory := &fakeDirectory{users: map[string]identity.User{
		"emp1": {ID: "emp1", IsActive: true, ManagerID: strPtr("mgr1")},
		"emp2": {ID: "emp2", IsActive: true, ManagerID: strPtr("mgr2")},
		"mgr1": {ID: "mgr1", Role: auth.RoleManager, IsActive: true},
	}}
	svc := NewService(store, calendar, ledger, directory).WithClock(func() time.Time { return clock })
	return svc, store, calendar, ledger, directory
}

// Monday 2026-03-02 09:00 UTC.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// Saturday 2026-03-07 10:00 UTC.
var saturday = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

func TestLoginGuards(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.IsWeekend)

	_, err = svc.Login(ctx, "emp1")
	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)

	_, err = svc.Logout(ctx, "emp1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "emp1")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestLogoutWithoutLogin(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	_, err := svc.Logout(context.Background(), "emp1")
	assert.ErrorIs(t, err, ErrNoActiveLogin)
}

func TestWeekendLogoutAccruesCompOff(t *testing.T) {
	svc, _, _, ledger, _ := newTestService(saturday)
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	assert.True(t, r.IsWeekend)

	_, err = svc.Logout(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.accruals)
}

func TestWeekdayLogoutDoesNotAccrue(t *testing.T) {
	svc, _, _, ledger, _ := newTestService(monday)
	ctx := context.Background()

	_, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	_, err = svc.Logout(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.accruals)
}

func TestHolidayLogoutAccruesCompOff(t *testing.T) {
	svc, _, calendar, ledger, _ := newTestService(monday)
	calendar.holidays["2026-03-02"] = true
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	assert.True(t, r.IsPublicHoliday)

	_, err = svc.Logout(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.accruals)
}

func TestHolidayFlagFrozenAtLogin(t *testing.T) {
	svc, _, calendar, ledger, _ := newTestService(monday)
	calendar.holidays["2026-03-02"] = true
	ctx := context.Background()

	_, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)

	// Holiday removed after login; the frozen flag still drives accrual.
	calendar.holidays["2026-03-02"] = false

	_, err = svc.Logout(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.accruals)
}

func TestLogoutRollsBackWhenAccrualFails(t *testing.T) {
	svc, store, _, ledger, _ := newTestService(saturday)
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	require.True(t, r.IsWeekend)

	ledger.accrueErr = errors.New("ledger unavailable")
	_, err = svc.Logout(ctx, "emp1")
	require.Error(t, err)

	// The logout must not stick without its comp-off credit.
	stored, err := store.ByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LogoutTime)
	assert.Equal(t, 0, ledger.accruals)

	// The record is still open, so logout can be retried once the ledger
	// recovers, and the half day is credited exactly once.
	ledger.accrueErr = nil
	out, err := svc.Logout(ctx, "emp1")
	require.NoError(t, err)
	assert.NotNil(t, out.LogoutTime)
	assert.Equal(t, 1, ledger.accruals)
}

func TestDecideAuthority(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)

	manager := auth.Actor{ID: "mgr1", Role: auth.RoleManager}
	stranger := auth.Actor{ID: "mgr2", Role: auth.RoleManager}
	admin := auth.Actor{ID: "adm1", Role: auth.RoleAdministrator}

	_, err = svc.Decide(ctx, stranger, r.ID, true)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	decided, err := svc.Decide(ctx, manager, r.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, decided.Status)

	// Second decision on the same record must fail, even for an admin.
	_, err = svc.Decide(ctx, admin, r.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestDecideAdminSkipsHierarchy(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()

	r, err := svc.Login(ctx, "emp2")
	require.NoError(t, err)

	admin := auth.Actor{ID: "adm1", Role: auth.RoleAdministrator}
	decided, err := svc.Decide(ctx, admin, r.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, decided.Status)
}

func TestLogPastManagerRules(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()
	manager := auth.Actor{ID: "mgr1", Role: auth.RoleManager}

	past := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	login := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	logout := time.Date(2026, 2, 27, 17, 0, 0, 0, time.UTC)

	r, err := svc.LogPast(ctx, manager, LogPastInput{
		EmployeeID: "emp1", Date: past, LoginTime: login, LogoutTime: &logout,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, r.Status)
	require.NotNil(t, r.ApprovedBy)
	assert.Equal(t, "mgr1", *r.ApprovedBy)

	// Same date again is a conflict.
	_, err = svc.LogPast(ctx, manager, LogPastInput{
		EmployeeID: "emp1", Date: past, LoginTime: login,
	})
	assert.ErrorIs(t, err, ErrDuplicateDate)

	// Managers cannot log today or the future.
	_, err = svc.LogPast(ctx, manager, LogPastInput{
		EmployeeID: "emp1", Date: monday, LoginTime: monday,
	})
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Managers cannot log for someone else's report.
	_, err = svc.LogPast(ctx, manager, LogPastInput{
		EmployeeID: "emp2", Date: past, LoginTime: login,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestLogPastAdminMayUseAnyDate(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()
	admin := auth.Actor{ID: "adm1", Role: auth.RoleAdministrator}

	r, err := svc.LogPast(ctx, admin, LogPastInput{
		EmployeeID: "emp2", Date: monday, LoginTime: monday,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, r.Status)
}

func TestLogPastRejectsBadTimes(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()
	admin := auth.Actor{ID: "adm1", Role: auth.RoleAdministrator}

	login := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	badLogout := login.Add(-time.Hour)
	_, err := svc.LogPast(ctx, admin, LogPastInput{
		EmployeeID: "emp1", Date: login, LoginTime: login, LogoutTime: &badLogout,
	})
	assert.ErrorIs(t, err, ErrInvalidTimes)
}

func TestLogPastClassifiesFromActiveHolidays(t *testing.T) {
	svc, _, calendar, _, _ := newTestService(monday)
	ctx := context.Background()
	admin := auth.Actor{ID: "adm1", Role: auth.RoleAdministrator}

	day := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	calendar.holidays["2026-02-26"] = true

	r, err := svc.LogPast(ctx, admin, LogPastInput{EmployeeID: "emp1", Date: day, LoginTime: day})
	require.NoError(t, err)
	assert.True(t, r.IsPublicHoliday)

	// A deactivated holiday no longer classifies.
	calendar.holidays["2026-02-26"] = false
	other := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	calendar.holidays["2026-02-25"] = false
	r2, err := svc.LogPast(ctx, admin, LogPastInput{EmployeeID: "emp2", Date: other, LoginTime: other})
	require.NoError(t, err)
	assert.False(t, r2.IsPublicHoliday)
}

func TestPendingForActor(t *testing.T) {
	svc, _, _, _, _ := newTestService(monday)
	ctx := context.Background()

	_, err := svc.Login(ctx, "emp1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "emp2")
	require.NoError(t, err)

	mine, err := svc.PendingForActor(ctx, auth.Actor{ID: "mgr1", Role: auth.RoleManager})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "emp1", mine[0].UserID)

	all, err := svc.PendingForActor(ctx, auth.Actor{ID: "adm1", Role: auth.RoleAdministrator})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
