package identity

import (
	"context"
	"time"
)

type StoreAPI interface {
	UserByID(ctx context.Context, userID string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	ManagerID(ctx context.Context, userID string) (string, error)
	EmailExists(ctx context.Context, email, excludeUserID string) (bool, error)
	EmployeeNoExists(ctx context.Context, employeeNo string) (bool, error)
	CreateUser(ctx context.Context, input CreateUserInput, passwordHash string) (User, error)
	UpdateUser(ctx context.Context, userID string, u User) (User, error)
	ListActiveUsers(ctx context.Context) ([]User, error)
	SubordinateIDs(ctx context.Context, managerID string) ([]string, error)
	CreateDepartment(ctx context.Context, name, description, weeklyOffDays string) (Department, error)
	UpdateDepartment(ctx context.Context, departmentID string, d Department) (Department, error)
	DepartmentByID(ctx context.Context, departmentID string) (Department, error)
	ListActiveDepartments(ctx context.Context) ([]Department, error)
	DepartmentHasActiveEmployees(ctx context.Context, departmentID string) (bool, error)
	DeactivateDepartment(ctx context.Context, departmentID string) error
	TeamMembers(ctx context.Context, managerID string, year int, today time.Time) ([]TeamMember, error)
}
