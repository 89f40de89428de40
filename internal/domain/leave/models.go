package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

type Request struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	LeaveType       string          `json:"leaveType"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	TotalDays       decimal.Decimal `json:"totalDays"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	LeaveType string    `json:"leaveType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason"`
}

// AvailableBalance is the ledger balance with currently-pending requests
// reserved against it. It is derived on read and never stored.
type AvailableBalance struct {
	Year    int             `json:"year"`
	Casual  decimal.Decimal `json:"casualLeave"`
	Earned  decimal.Decimal `json:"earnedLeave"`
	CompOff decimal.Decimal `json:"compensatoryOff"`
}
