package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AttendanceRow struct {
	EmployeeNo      string     `json:"employeeNo"`
	EmployeeName    string     `json:"employeeName"`
	Date            time.Time  `json:"date"`
	LoginTime       time.Time  `json:"loginTime"`
	LogoutTime      *time.Time `json:"logoutTime,omitempty"`
	IsWeekend       bool       `json:"isWeekend"`
	IsPublicHoliday bool       `json:"isPublicHoliday"`
	Status          string     `json:"status"`
}

type LeaveRow struct {
	EmployeeNo   string          `json:"employeeNo"`
	EmployeeName string          `json:"employeeName"`
	LeaveType    string          `json:"leaveType"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	TotalDays    decimal.Decimal `json:"totalDays"`
	Status       string          `json:"status"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Attendance(ctx context.Context, from, to time.Time) ([]AttendanceRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.employee_no, u.first_name || ' ' || u.last_name,
           a.date, a.login_time, a.logout_time, a.is_weekend, a.is_public_holiday, a.status
    FROM attendance a
    JOIN users u ON u.id = a.user_id
    WHERE a.date >= $1 AND a.date <= $2
    ORDER BY a.date, u.employee_no
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AttendanceRow{}
	for rows.Next() {
		var row AttendanceRow
		if err := rows.Scan(&row.EmployeeNo, &row.EmployeeName, &row.Date, &row.LoginTime, &row.LogoutTime, &row.IsWeekend, &row.IsPublicHoliday, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Service) Leave(ctx context.Context, year int) ([]LeaveRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.employee_no, u.first_name || ' ' || u.last_name,
           l.leave_type, l.start_date, l.end_date, l.total_days, l.status
    FROM leave_requests l
    JOIN users u ON u.id = l.user_id
    WHERE EXTRACT(YEAR FROM l.start_date) = $1
    ORDER BY l.start_date, u.employee_no
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaveRow{}
	for rows.Next() {
		var row LeaveRow
		if err := rows.Scan(&row.EmployeeNo, &row.EmployeeName, &row.LeaveType, &row.StartDate, &row.EndDate, &row.TotalDays, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
