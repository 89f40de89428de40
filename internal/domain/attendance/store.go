package attendance

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

const recordColumns = `id, user_id, date, login_time, logout_time, is_weekend, is_public_holiday, status, approved_by, approved_at, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.UserID, &r.Date, &r.LoginTime, &r.LogoutTime, &r.IsWeekend, &r.IsPublicHoliday, &r.Status, &r.ApprovedBy, &r.ApprovedAt, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *Store) ByID(ctx context.Context, recordID string) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance WHERE id = $1", recordID))
}

func (s *Store) ByUserDate(ctx context.Context, userID string, date time.Time) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance WHERE user_id = $1 AND date = $2", userID, date))
}

// Create relies on the unique (user_id, date) constraint to serialize
// concurrent logins; the loser surfaces as ErrDuplicateDate.
func (s *Store) Create(ctx context.Context, r Record) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (user_id, date, login_time, logout_time, is_weekend, is_public_holiday, status, approved_by, approved_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING `+recordColumns+`
  `, r.UserID, r.Date, r.LoginTime, r.LogoutTime, r.IsWeekend, r.IsPublicHoliday, r.Status, r.ApprovedBy, r.ApprovedAt)

	out, err := scanRecord(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Record{}, ErrDuplicateDate
	}
	return out, err
}

// BeginTx opens a transaction on the pool; logout and the comp-off credit it
// can earn must land together.
func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// SetLogoutTx stamps the logout time inside the caller's transaction. The
// logout_time IS NULL guard makes a concurrent double-logout lose cleanly.
func (s *Store) SetLogoutTx(ctx context.Context, tx pgx.Tx, recordID string, logoutTime time.Time) error {
	tag, err := tx.Exec(ctx, `
    UPDATE attendance SET logout_time = $1, updated_at = now()
    WHERE id = $2 AND logout_time IS NULL
  `, logoutTime, recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveLogin
	}
	return nil
}

// Decide flips a pending record to its terminal status. The status guard in
// the WHERE clause makes concurrent double-approval lose cleanly.
func (s *Store) Decide(ctx context.Context, recordID, status, approverID string, decidedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance SET status = $1, approved_by = $2, approved_at = $3, updated_at = now()
    WHERE id = $4 AND status = $5
  `, status, approverID, decidedAt, recordID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+` FROM attendance
    WHERE user_id = $1 AND date >= $2 AND date <= $3
    ORDER BY date DESC
  `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *Store) ListPending(ctx context.Context, userIDs []string) ([]Record, error) {
	if len(userIDs) == 0 {
		return []Record{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+` FROM attendance
    WHERE status = $1 AND user_id = ANY($2)
    ORDER BY date DESC
  `, StatusPending, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *Store) ListPendingAll(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+` FROM attendance
    WHERE status = $1
    ORDER BY date DESC
  `, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.LoginTime, &r.LogoutTime, &r.IsWeekend, &r.IsPublicHoliday, &r.Status, &r.ApprovedBy, &r.ApprovedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
