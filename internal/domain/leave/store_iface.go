package leave

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	ByID(ctx context.Context, requestID string) (Request, error)
	Create(ctx context.Context, r Request) (Request, error)
	HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)
	BeginTx(ctx context.Context) (pgx.Tx, error)
	DecideTx(ctx context.Context, tx pgx.Tx, requestID, status, approverID string, decidedAt time.Time, rejectionReason *string) error
	Cancel(ctx context.Context, requestID string) error
	ListByUser(ctx context.Context, userID string) ([]Request, error)
	ListPending(ctx context.Context, userIDs []string) ([]Request, error)
	ListPendingAll(ctx context.Context) ([]Request, error)
	PendingTotals(ctx context.Context, userID string, year int) (map[string]decimal.Decimal, error)
}
