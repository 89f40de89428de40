package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `id, user_id, leave_type, start_date, end_date, total_days, reason, status, approved_by, approved_at, rejection_reason, created_at, updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.UserID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.TotalDays, &r.Reason, &r.Status, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

func (s *Store) ByID(ctx context.Context, requestID string) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", requestID))
}

func (s *Store) Create(ctx context.Context, r Request) (Request, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, total_days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+requestColumns+`
  `, r.UserID, r.LeaveType, r.StartDate, r.EndDate, r.TotalDays, r.Reason, r.Status)
	return scanRequest(row)
}

// HasOverlap checks the user's live requests against [start, end]. Rejected
// and cancelled requests release their dates.
func (s *Store) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leave_requests
    WHERE user_id = $1
      AND status NOT IN ($2, $3)
      AND start_date <= $4
      AND end_date >= $5
  `, userID, StatusRejected, StatusCancelled, end, start).Scan(&count)
	return count > 0, err
}

// BeginTx opens a transaction on the pool; the decision flow spans the
// request table and the entitlement ledger, which must move together.
func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// DecideTx flips a pending request to its terminal status inside the caller's
// transaction. The status guard in the WHERE clause makes concurrent
// double-decisions lose cleanly.
func (s *Store) DecideTx(ctx context.Context, tx pgx.Tx, requestID, status, approverID string, decidedAt time.Time, rejectionReason *string) error {
	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4, updated_at = now()
    WHERE id = $5 AND status = $6
  `, status, approverID, decidedAt, rejectionReason, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (s *Store) Cancel(ctx context.Context, requestID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, StatusCancelled, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE user_id = $1 ORDER BY start_date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListPending(ctx context.Context, userIDs []string) ([]Request, error) {
	if len(userIDs) == 0 {
		return []Request{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+` FROM leave_requests
    WHERE status = $1 AND user_id = ANY($2)
    ORDER BY start_date
  `, StatusPending, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListPendingAll(ctx context.Context) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+` FROM leave_requests
    WHERE status = $1
    ORDER BY start_date
  `, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// PendingTotals sums pending days per leave type for requests starting in
// the given year.
func (s *Store) PendingTotals(ctx context.Context, userID string, year int) (map[string]decimal.Decimal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT leave_type, COALESCE(SUM(total_days), 0)
    FROM leave_requests
    WHERE user_id = $1 AND status = $2 AND EXTRACT(YEAR FROM start_date) = $3
    GROUP BY leave_type
  `, userID, StatusPending, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var leaveType string
		var sum decimal.Decimal
		if err := rows.Scan(&leaveType, &sum); err != nil {
			return nil, err
		}
		totals[leaveType] = sum
	}
	return totals, rows.Err()
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	requests := []Request{}
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.UserID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.TotalDays, &r.Reason, &r.Status, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
