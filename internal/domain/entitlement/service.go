package entitlement

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var compOffIncrement = decimal.NewFromFloat(0.5)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Allocate sets a user's balances for a year to the given absolute values.
// Re-allocating the same values is a no-op on the ledger.
func (s *Service) Allocate(ctx context.Context, input AllocateInput) (Entitlement, error) {
	if input.Year < 2000 || input.Year > 2100 {
		return Entitlement{}, ErrInvalidYear
	}
	if input.CasualBalance.IsNegative() || input.EarnedBalance.IsNegative() || input.CompOffBalance.IsNegative() {
		return Entitlement{}, ErrNegative
	}
	e, err := s.store.Upsert(ctx, input)
	if err != nil {
		return Entitlement{}, err
	}
	slog.Info("entitlement allocated", "userId", input.UserID, "year", input.Year)
	return e, nil
}

// Balance returns the raw ledger row. A missing row is ErrNoEntitlement,
// which callers must treat differently from an all-zero row.
func (s *Service) Balance(ctx context.Context, userID string, year int) (Entitlement, error) {
	return s.store.ByUserYear(ctx, userID, year)
}

// DeductTx subtracts days from a bucket without re-checking sufficiency. The
// decision to deduct was validated when the leave request was created; a
// balance spent in the meantime may legitimately go negative. It runs inside
// the caller's transaction so the deduction commits with the status change
// that earned it.
func (s *Service) DeductTx(ctx context.Context, tx pgx.Tx, userID string, year int, leaveType string, days decimal.Decimal) error {
	return s.store.AddToBalanceTx(ctx, tx, userID, year, leaveType, days.Neg())
}

// AccrueCompOffTx credits half a day for working a weekend or holiday. The
// ledger row is created lazily so accrual works before any allocation. Runs
// inside the caller's transaction; the credit stands or falls with the
// logout that earned it.
func (s *Service) AccrueCompOffTx(ctx context.Context, tx pgx.Tx, userID string, year int) error {
	if err := s.store.EnsureRowTx(ctx, tx, userID, year); err != nil {
		return err
	}
	if err := s.store.AddToBalanceTx(ctx, tx, userID, year, TypeCompOff, compOffIncrement); err != nil {
		return err
	}
	slog.Info("comp off accrued", "userId", userID, "year", year)
	return nil
}

// AssignCompOff credits an arbitrary number of comp-off days, used by
// administrators to grant comp off outside the automatic accrual path.
func (s *Service) AssignCompOff(ctx context.Context, userID string, year int, days decimal.Decimal) error {
	if days.IsNegative() || days.IsZero() {
		return ErrNegative
	}
	if err := s.store.EnsureRow(ctx, userID, year); err != nil {
		return err
	}
	return s.store.AddToBalance(ctx, userID, year, TypeCompOff, days)
}
