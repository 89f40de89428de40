package holiday

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const holidayColumns = `id, date, name, description, year, is_active, created_at`

func (s *Store) Create(ctx context.Context, input CreateInput) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, `
    INSERT INTO public_holidays (date, name, description, year, is_active)
    VALUES ($1,$2,$3,$4,true)
    RETURNING `+holidayColumns+`
  `, input.Date, input.Name, input.Description, input.Date.Year()).
		Scan(&h.ID, &h.Date, &h.Name, &h.Description, &h.Year, &h.IsActive, &h.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Holiday{}, ErrDuplicateDate
	}
	return h, err
}

func (s *Store) ByID(ctx context.Context, holidayID string) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, "SELECT "+holidayColumns+" FROM public_holidays WHERE id = $1", holidayID).
		Scan(&h.ID, &h.Date, &h.Name, &h.Description, &h.Year, &h.IsActive, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holiday{}, ErrNotFound
	}
	return h, err
}

// ListByYear returns only active holidays; deactivated ones stay in the
// table for audit but never surface here.
func (s *Store) ListByYear(ctx context.Context, year int) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+holidayColumns+" FROM public_holidays WHERE year = $1 AND is_active ORDER BY date", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []Holiday{}
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.Description, &h.Year, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) ActiveOnDate(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM public_holidays WHERE date = $1 AND is_active", date).Scan(&count)
	return count > 0, err
}

func (s *Store) Deactivate(ctx context.Context, holidayID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE public_holidays SET is_active = false WHERE id = $1", holidayID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
