package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	ByID(ctx context.Context, recordID string) (Record, error)
	ByUserDate(ctx context.Context, userID string, date time.Time) (Record, error)
	Create(ctx context.Context, r Record) (Record, error)
	BeginTx(ctx context.Context) (pgx.Tx, error)
	SetLogoutTx(ctx context.Context, tx pgx.Tx, recordID string, logoutTime time.Time) error
	Decide(ctx context.Context, recordID, status, approverID string, decidedAt time.Time) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]Record, error)
	ListPending(ctx context.Context, userIDs []string) ([]Record, error)
	ListPendingAll(ctx context.Context) ([]Record, error)
}
