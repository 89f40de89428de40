package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ams/internal/domain/auth"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock; tests use it to pin dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) User(ctx context.Context, userID string) (User, error) {
	return s.store.UserByID(ctx, userID)
}

func (s *Service) ManagerID(ctx context.Context, userID string) (string, error) {
	return s.store.ManagerID(ctx, userID)
}

func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if taken, err := s.store.EmailExists(ctx, input.Email, ""); err != nil {
		return User{}, err
	} else if taken {
		return User{}, ErrEmailTaken
	}
	if taken, err := s.store.EmployeeNoExists(ctx, input.EmployeeNo); err != nil {
		return User{}, err
	} else if taken {
		return User{}, ErrEmployeeNoTaken
	}
	if !auth.ValidRole(input.Role) {
		return User{}, ErrInvalidRole
	}

	if input.ManagerID != nil {
		manager, err := s.store.UserByID(ctx, *input.ManagerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return User{}, ErrInvalidManager
			}
			return User{}, err
		}
		if manager.Role != auth.RoleManager && manager.Role != auth.RoleAdministrator {
			return User{}, ErrInvalidManager
		}
	}

	if input.DepartmentID != nil {
		department, err := s.store.DepartmentByID(ctx, *input.DepartmentID)
		if err != nil {
			return User{}, err
		}
		if !department.IsActive {
			return User{}, ErrDepartmentNotFound
		}
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	user, err := s.store.CreateUser(ctx, input, passwordHash)
	if err != nil {
		return User{}, err
	}
	slog.Info("user created", "userId", user.ID, "role", user.Role)
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if input.Email != nil {
		if taken, err := s.store.EmailExists(ctx, *input.Email, userID); err != nil {
			return User{}, err
		} else if taken {
			return User{}, ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		if !auth.ValidRole(*input.Role) {
			return User{}, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.ManagerID != nil {
		if _, err := s.store.UserByID(ctx, *input.ManagerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return User{}, ErrInvalidManager
			}
			return User{}, err
		}
		user.ManagerID = input.ManagerID
	}
	if input.DepartmentID != nil {
		department, err := s.store.DepartmentByID(ctx, *input.DepartmentID)
		if err != nil {
			return User{}, err
		}
		if !department.IsActive {
			return User{}, ErrDepartmentNotFound
		}
		user.DepartmentID = input.DepartmentID
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	return s.store.UpdateUser(ctx, userID, user)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListActiveUsers(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, name, description, weeklyOffDays string) (Department, error) {
	return s.store.CreateDepartment(ctx, name, description, weeklyOffDays)
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID string, d Department) (Department, error) {
	if _, err := s.store.DepartmentByID(ctx, departmentID); err != nil {
		return Department{}, err
	}
	return s.store.UpdateDepartment(ctx, departmentID, d)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListActiveDepartments(ctx)
}

// DeleteDepartment soft-deletes. Departments with active employees are kept
// until everyone is reassigned.
func (s *Service) DeleteDepartment(ctx context.Context, departmentID string) error {
	if _, err := s.store.DepartmentByID(ctx, departmentID); err != nil {
		return err
	}
	inUse, err := s.store.DepartmentHasActiveEmployees(ctx, departmentID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrDepartmentInUse
	}
	return s.store.DeactivateDepartment(ctx, departmentID)
}

func (s *Service) TeamMembers(ctx context.Context, managerID string) ([]TeamMember, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.TeamMembers(ctx, managerID, now.Year(), today)
}
