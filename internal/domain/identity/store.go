package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, employee_no, role, manager_id, department_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.EmployeeNo, &u.Role, &u.ManagerID, &u.DepartmentID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// ManagerID returns the subject's direct manager, or "" when the user has
// none. Callers must not cache the result across approval decisions.
func (s *Store) ManagerID(ctx context.Context, userID string) (string, error) {
	var managerID *string
	err := s.DB.QueryRow(ctx, "SELECT manager_id FROM users WHERE id = $1", userID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if managerID == nil {
		return "", nil
	}
	return *managerID, nil
}

func (s *Store) EmailExists(ctx context.Context, email, excludeUserID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1 AND id::text <> $2", email, excludeUserID).Scan(&count)
	return count > 0, err
}

func (s *Store) EmployeeNoExists(ctx context.Context, employeeNo string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE employee_no = $1", employeeNo).Scan(&count)
	return count > 0, err
}

func (s *Store) CreateUser(ctx context.Context, input CreateUserInput, passwordHash string) (User, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, employee_no, role, manager_id, department_id, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true)
    RETURNING `+userColumns+`
  `, input.Email, passwordHash, input.FirstName, input.LastName, input.EmployeeNo, input.Role, input.ManagerID, input.DepartmentID)
	return scanUser(row)
}

func (s *Store) UpdateUser(ctx context.Context, userID string, u User) (User, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE users
    SET email = $1, first_name = $2, last_name = $3, role = $4, manager_id = $5, department_id = $6, is_active = $7, updated_at = now()
    WHERE id = $8
    RETURNING `+userColumns+`
  `, u.Email, u.FirstName, u.LastName, u.Role, u.ManagerID, u.DepartmentID, u.IsActive, userID)
	return scanUser(row)
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE is_active ORDER BY first_name, last_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.EmployeeNo, &u.Role, &u.ManagerID, &u.DepartmentID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) SubordinateIDs(ctx context.Context, managerID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE manager_id = $1 AND is_active", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, name, description, weeklyOffDays string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description, weekly_off_days, is_active)
    VALUES ($1,$2,$3,true)
    RETURNING id, name, description, weekly_off_days, is_active, created_at, updated_at
  `, name, description, weeklyOffDays).Scan(&d.ID, &d.Name, &d.Description, &d.WeeklyOffDays, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID string, d Department) (Department, error) {
	var out Department
	err := s.DB.QueryRow(ctx, `
    UPDATE departments
    SET name = $1, description = $2, weekly_off_days = $3, is_active = $4, updated_at = now()
    WHERE id = $5
    RETURNING id, name, description, weekly_off_days, is_active, created_at, updated_at
  `, d.Name, d.Description, d.WeeklyOffDays, d.IsActive, departmentID).Scan(&out.ID, &out.Name, &out.Description, &out.WeeklyOffDays, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return out, err
}

func (s *Store) DepartmentByID(ctx context.Context, departmentID string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, weekly_off_days, is_active, created_at, updated_at
    FROM departments
    WHERE id = $1
  `, departmentID).Scan(&d.ID, &d.Name, &d.Description, &d.WeeklyOffDays, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return d, err
}

func (s *Store) ListActiveDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, weekly_off_days, is_active, created_at, updated_at
    FROM departments
    WHERE is_active
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.WeeklyOffDays, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) DepartmentHasActiveEmployees(ctx context.Context, departmentID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE department_id = $1 AND is_active", departmentID).Scan(&count)
	return count > 0, err
}

func (s *Store) DeactivateDepartment(ctx context.Context, departmentID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE departments SET is_active = false, updated_at = now() WHERE id = $1", departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// TeamMembers lists active users with their current-year balances and up to
// five upcoming leaves. An empty managerID means all non-administrator users.
func (s *Store) TeamMembers(ctx context.Context, managerID string, year int, today time.Time) ([]TeamMember, error) {
	query := `
    SELECT u.id, u.employee_no, u.first_name, u.last_name, u.email,
           e.casual_balance, e.earned_balance, e.comp_off_balance
    FROM users u
    LEFT JOIN leave_entitlements e ON e.user_id = u.id AND e.year = $1
    WHERE u.is_active
  `
	args := []any{year}
	if managerID != "" {
		query += " AND u.manager_id = $2"
		args = append(args, managerID)
	} else {
		query += " AND u.role <> $2"
		args = append(args, "Administrator")
	}
	query += " ORDER BY u.employee_no"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.EmployeeNo, &m.FirstName, &m.LastName, &m.Email, &m.CasualBalance, &m.EarnedBalance, &m.CompOffBalance); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range members {
		leaves, err := s.upcomingLeaves(ctx, members[i].ID, today)
		if err != nil {
			return nil, err
		}
		members[i].UpcomingLeaves = leaves
	}
	return members, nil
}

func (s *Store) upcomingLeaves(ctx context.Context, userID string, today time.Time) ([]UpcomingLeave, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, leave_type, start_date, end_date, total_days, status
    FROM leave_requests
    WHERE user_id = $1 AND start_date >= $2 AND status IN ('Pending','Approved')
    ORDER BY start_date
    LIMIT 5
  `, userID, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaves := []UpcomingLeave{}
	for rows.Next() {
		var l UpcomingLeave
		var days decimal.Decimal
		if err := rows.Scan(&l.ID, &l.LeaveType, &l.StartDate, &l.EndDate, &days, &l.Status); err != nil {
			return nil, err
		}
		l.TotalDays = days
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}
