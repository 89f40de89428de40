package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ams/internal/domain/auth"
)

type fakeStore struct {
	users       []User
	departments []Department
}

func (f *fakeStore) UserByID(_ context.Context, userID string) (User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) ManagerID(ctx context.Context, userID string) (string, error) {
	u, err := f.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ManagerID == nil {
		return "", nil
	}
	return *u.ManagerID, nil
}

func (f *fakeStore) EmailExists(_ context.Context, email, excludeUserID string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email && u.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) EmployeeNoExists(_ context.Context, employeeNo string) (bool, error) {
	for _, u := range f.users {
		if u.EmployeeNo == employeeNo {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateUser(_ context.Context, input CreateUserInput, passwordHash string) (User, error) {
	u := User{
		ID:           fmt.Sprintf("user-%d", len(f.users)+1),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		EmployeeNo:   input.EmployeeNo,
		Role:         input.Role,
		ManagerID:    input.ManagerID,
		DepartmentID: input.DepartmentID,
		IsActive:     true,
	}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, userID string, u User) (User, error) {
	for i := range f.users {
		if f.users[i].ID == userID {
			u.ID = userID
			f.users[i] = u
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) ListActiveUsers(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) SubordinateIDs(_ context.Context, managerID string) ([]string, error) {
	var out []string
	for _, u := range f.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateDepartment(_ context.Context, name, description, weeklyOffDays string) (Department, error) {
	d := Department{
		ID:            fmt.Sprintf("dept-%d", len(f.departments)+1),
		Name:          name,
		Description:   description,
		WeeklyOffDays: weeklyOffDays,
		IsActive:      true,
	}
	f.departments = append(f.departments, d)
	return d, nil
}

func (f *fakeStore) UpdateDepartment(_ context.Context, departmentID string, d Department) (Department, error) {
	for i := range f.departments {
		if f.departments[i].ID == departmentID {
			d.ID = departmentID
			f.departments[i] = d
			return d, nil
		}
	}
	return Department{}, ErrDepartmentNotFound
}

func (f *fakeStore) DepartmentByID(_ context.Context, departmentID string) (Department, error) {
	for _, d := range f.departments {
		if d.ID == departmentID {
			return d, nil
		}
	}
	return Department{}, ErrDepartmentNotFound
}

func (f *fakeStore) ListActiveDepartments(_ context.Context) ([]Department, error) {
	var out []Department
	for _, d := range f.departments {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) DepartmentHasActiveEmployees(_ context.Context, departmentID string) (bool, error) {
	for _, u := range f.users {
		if u.IsActive && u.DepartmentID != nil && *u.DepartmentID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeactivateDepartment(_ context.Context, departmentID string) error {
	for i := range f.departments {
		if f.departments[i].ID == departmentID {
			f.departments[i].IsActive = false
			return nil
		}
	}
	return ErrDepartmentNotFound
}

func (f *fakeStore) TeamMembers(_ context.Context, managerID string, _ int, _ time.Time) ([]TeamMember, error) {
	var out []TeamMember
	for _, u := range f.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, TeamMember{ID: u.ID, EmployeeNo: u.EmployeeNo, Email: u.Email})
		}
	}
	return out, nil
}

func strptr(s string) *string { return &s }

func TestCreateUserHashesPassword(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:      "a@example.com",
		Password:   "Secret123!",
		EmployeeNo: "EMP0001",
		Role:       auth.RoleEmployee,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123!", user.PasswordHash)
	assert.NoError(t, auth.CheckPassword(user.PasswordHash, "Secret123!"))
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@example.com", Password: "x", EmployeeNo: "EMP0001", Role: auth.RoleEmployee})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "a@example.com", Password: "x", EmployeeNo: "EMP0002", Role: auth.RoleEmployee})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "b@example.com", Password: "x", EmployeeNo: "EMP0001", Role: auth.RoleEmployee})
	assert.ErrorIs(t, err, ErrEmployeeNoTaken)
}

func TestCreateUserValidatesRole(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:      "a@example.com",
		Password:   "x",
		EmployeeNo: "EMP0001",
		Role:       "SuperUser",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateUserManagerMustHoldManagerRole(t *testing.T) {
	store := &fakeStore{users: []User{
		{ID: "emp-1", Email: "peer@example.com", EmployeeNo: "EMP0009", Role: auth.RoleEmployee, IsActive: true},
	}}
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Email: "a@example.com", Password: "x", EmployeeNo: "EMP0001",
		Role: auth.RoleEmployee, ManagerID: strptr("emp-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidManager)

	_, err = svc.CreateUser(ctx, CreateUserInput{
		Email: "b@example.com", Password: "x", EmployeeNo: "EMP0002",
		Role: auth.RoleEmployee, ManagerID: strptr("no-such-user"),
	})
	assert.ErrorIs(t, err, ErrInvalidManager)
}

func TestCreateUserRejectsInactiveDepartment(t *testing.T) {
	store := &fakeStore{departments: []Department{
		{ID: "dept-1", Name: "Closed", IsActive: false},
	}}
	svc := NewService(store)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email: "a@example.com", Password: "x", EmployeeNo: "EMP0001",
		Role: auth.RoleEmployee, DepartmentID: strptr("dept-1"),
	})
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestUpdateUserMergesOnlyProvidedFields(t *testing.T) {
	store := &fakeStore{users: []User{
		{ID: "u1", Email: "old@example.com", FirstName: "Old", LastName: "Name", EmployeeNo: "EMP0001", Role: auth.RoleEmployee, IsActive: true},
	}}
	svc := NewService(store)

	updated, err := svc.UpdateUser(context.Background(), "u1", UpdateUserInput{
		FirstName: strptr("New"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "old@example.com", updated.Email)
	assert.Equal(t, "Name", updated.LastName)
	assert.True(t, updated.IsActive)
}

func TestDeleteDepartmentBlockedWhileInUse(t *testing.T) {
	store := &fakeStore{
		departments: []Department{{ID: "dept-1", Name: "Eng", IsActive: true}},
		users: []User{
			{ID: "u1", Email: "a@example.com", EmployeeNo: "EMP0001", Role: auth.RoleEmployee, DepartmentID: strptr("dept-1"), IsActive: true},
		},
	}
	svc := NewService(store)
	ctx := context.Background()

	err := svc.DeleteDepartment(ctx, "dept-1")
	assert.ErrorIs(t, err, ErrDepartmentInUse)

	store.users[0].IsActive = false
	require.NoError(t, svc.DeleteDepartment(ctx, "dept-1"))
	assert.False(t, store.departments[0].IsActive)
}
