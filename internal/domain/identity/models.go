package identity

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	EmployeeNo   string    `json:"employeeNo"`
	Role         string    `json:"role"`
	ManagerID    *string   `json:"managerId,omitempty"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	WeeklyOffDays string    `json:"weeklyOffDays"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type UpcomingLeave struct {
	ID        string          `json:"id"`
	LeaveType string          `json:"leaveType"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	TotalDays decimal.Decimal `json:"totalDays"`
	Status    string          `json:"status"`
}

type TeamMember struct {
	ID             string           `json:"id"`
	EmployeeNo     string           `json:"employeeNo"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	CasualBalance  *decimal.Decimal `json:"casualLeaveBalance,omitempty"`
	EarnedBalance  *decimal.Decimal `json:"earnedLeaveBalance,omitempty"`
	CompOffBalance *decimal.Decimal `json:"compensatoryOffBalance,omitempty"`
	UpcomingLeaves []UpcomingLeave  `json:"upcomingLeaves"`
}

type CreateUserInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	EmployeeNo   string
	Role         string
	ManagerID    *string
	DepartmentID *string
}

type UpdateUserInput struct {
	Email        *string
	FirstName    *string
	LastName     *string
	Role         *string
	ManagerID    *string
	DepartmentID *string
	IsActive     *bool
}
