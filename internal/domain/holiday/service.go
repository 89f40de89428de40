package holiday

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Holiday, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Holiday{}, ErrMissingName
	}
	input.Date = truncateToDay(input.Date)
	exists, err := s.store.ActiveOnDate(ctx, input.Date)
	if err != nil {
		return Holiday{}, err
	}
	if exists {
		return Holiday{}, ErrDuplicateDate
	}
	return s.store.Create(ctx, input)
}

func (s *Service) ListByYear(ctx context.Context, year int) ([]Holiday, error) {
	return s.store.ListByYear(ctx, year)
}

// IsHoliday reports whether the date is an active public holiday. Day
// classification everywhere in the system goes through this, so a
// deactivated holiday counts as a working day.
func (s *Service) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return s.store.ActiveOnDate(ctx, truncateToDay(date))
}

func (s *Service) Delete(ctx context.Context, holidayID string) error {
	if _, err := s.store.ByID(ctx, holidayID); err != nil {
		return err
	}
	return s.store.Deactivate(ctx, holidayID)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
