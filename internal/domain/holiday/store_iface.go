package holiday

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, input CreateInput) (Holiday, error)
	ByID(ctx context.Context, holidayID string) (Holiday, error)
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
	ActiveOnDate(ctx context.Context, date time.Time) (bool, error)
	Deactivate(ctx context.Context, holidayID string) error
}
