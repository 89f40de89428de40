package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// execer is the slice of pgx shared by the pool and a transaction, so balance
// writes can run standalone or inside a caller-owned pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const entitlementColumns = `id, user_id, year, casual_balance, earned_balance, comp_off_balance, created_at, updated_at`

func scanEntitlement(row pgx.Row) (Entitlement, error) {
	var e Entitlement
	err := row.Scan(&e.ID, &e.UserID, &e.Year, &e.CasualBalance, &e.EarnedBalance, &e.CompOffBalance, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entitlement{}, ErrNoEntitlement
	}
	return e, err
}

func (s *Store) ByUserYear(ctx context.Context, userID string, year int) (Entitlement, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+entitlementColumns+" FROM leave_entitlements WHERE user_id = $1 AND year = $2", userID, year)
	return scanEntitlement(row)
}

// Upsert sets balances to the given absolute values. Allocation is not
// additive; repeating an allocation must be idempotent.
func (s *Store) Upsert(ctx context.Context, input AllocateInput) (Entitlement, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO leave_entitlements (user_id, year, casual_balance, earned_balance, comp_off_balance)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (user_id, year)
    DO UPDATE SET casual_balance = $3, earned_balance = $4, comp_off_balance = $5, updated_at = now()
    RETURNING `+entitlementColumns+`
  `, input.UserID, input.Year, input.CasualBalance, input.EarnedBalance, input.CompOffBalance)
	return scanEntitlement(row)
}

func balanceColumn(leaveType string) (string, error) {
	switch leaveType {
	case TypeCasual:
		return "casual_balance", nil
	case TypeEarned:
		return "earned_balance", nil
	case TypeCompOff:
		return "comp_off_balance", nil
	}
	return "", fmt.Errorf("unknown leave type %q", leaveType)
}

func (s *Store) AddToBalance(ctx context.Context, userID string, year int, leaveType string, delta decimal.Decimal) error {
	return addToBalance(ctx, s.DB, userID, year, leaveType, delta)
}

// AddToBalanceTx is AddToBalance inside a caller-owned transaction, so the
// ledger write commits or rolls back with the caller's other statements.
func (s *Store) AddToBalanceTx(ctx context.Context, tx pgx.Tx, userID string, year int, leaveType string, delta decimal.Decimal) error {
	return addToBalance(ctx, tx, userID, year, leaveType, delta)
}

func addToBalance(ctx context.Context, db execer, userID string, year int, leaveType string, delta decimal.Decimal) error {
	column, err := balanceColumn(leaveType)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, fmt.Sprintf(`
    UPDATE leave_entitlements
    SET %s = %s + $1, updated_at = now()
    WHERE user_id = $2 AND year = $3
  `, column, column), delta, userID, year)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoEntitlement
	}
	return nil
}

// EnsureRow creates a zero-balance ledger row if none exists for the year.
func (s *Store) EnsureRow(ctx context.Context, userID string, year int) error {
	return ensureRow(ctx, s.DB, userID, year)
}

func (s *Store) EnsureRowTx(ctx context.Context, tx pgx.Tx, userID string, year int) error {
	return ensureRow(ctx, tx, userID, year)
}

func ensureRow(ctx context.Context, db execer, userID string, year int) error {
	_, err := db.Exec(ctx, `
    INSERT INTO leave_entitlements (user_id, year, casual_balance, earned_balance, comp_off_balance)
    VALUES ($1,$2,0,0,0)
    ON CONFLICT (user_id, year) DO NOTHING
  `, userID, year)
	return err
}
