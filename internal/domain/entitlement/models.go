package entitlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entitlement is the per-user, per-year leave ledger. Balances are stored as
// decimals because compensatory off accrues in half-day increments.
type Entitlement struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Year           int             `json:"year"`
	CasualBalance  decimal.Decimal `json:"casualLeaveBalance"`
	EarnedBalance  decimal.Decimal `json:"earnedLeaveBalance"`
	CompOffBalance decimal.Decimal `json:"compensatoryOffBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type AllocateInput struct {
	UserID         string          `json:"userId"`
	Year           int             `json:"year"`
	CasualBalance  decimal.Decimal `json:"casualLeaveBalance"`
	EarnedBalance  decimal.Decimal `json:"earnedLeaveBalance"`
	CompOffBalance decimal.Decimal `json:"compensatoryOffBalance"`
}
