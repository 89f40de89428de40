package entitlement

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	ByUserYear(ctx context.Context, userID string, year int) (Entitlement, error)
	Upsert(ctx context.Context, input AllocateInput) (Entitlement, error)
	AddToBalance(ctx context.Context, userID string, year int, leaveType string, delta decimal.Decimal) error
	AddToBalanceTx(ctx context.Context, tx pgx.Tx, userID string, year int, leaveType string, delta decimal.Decimal) error
	EnsureRow(ctx context.Context, userID string, year int) error
	EnsureRowTx(ctx context.Context, tx pgx.Tx, userID string, year int) error
}
