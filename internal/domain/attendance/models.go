package attendance

import "time"

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Record is one attendance entry per (user, date). The weekend and holiday
// flags are classified when the record is created and never recomputed, even
// if the holiday calendar changes afterwards.
type Record struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Date            time.Time  `json:"date"`
	LoginTime       time.Time  `json:"loginTime"`
	LogoutTime      *time.Time `json:"logoutTime,omitempty"`
	IsWeekend       bool       `json:"isWeekend"`
	IsPublicHoliday bool       `json:"isPublicHoliday"`
	Status          string     `json:"status"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Open reports whether the record has a login but no logout yet.
func (r Record) Open() bool {
	return r.LogoutTime == nil
}

type LogPastInput struct {
	EmployeeID string     `json:"employeeId"`
	Date       time.Time  `json:"date"`
	LoginTime  time.Time  `json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
}
