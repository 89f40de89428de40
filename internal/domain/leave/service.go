package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"ams/internal/domain/auth"
	"ams/internal/domain/entitlement"
)

// Ledger is the entitlement side of the workflow: balances are read at
// request creation and deducted at approval. The deduction joins the
// approval's transaction; the two writes commit or roll back together.
type Ledger interface {
	Balance(ctx context.Context, userID string, year int) (entitlement.Entitlement, error)
	DeductTx(ctx context.Context, tx pgx.Tx, userID string, year int, leaveType string, days decimal.Decimal) error
}

// Directory resolves reporting lines, evaluated fresh on every decision.
type Directory interface {
	ManagerID(ctx context.Context, userID string) (string, error)
	SubordinateIDs(ctx context.Context, managerID string) ([]string, error)
}

type Service struct {
	store     StoreAPI
	ledger    Ledger
	directory Directory
	now       func() time.Time
}

func NewService(store StoreAPI, ledger Ledger, directory Directory) *Service {
	return &Service{store: store, ledger: ledger, directory: directory, now: time.Now}
}

// WithClock overrides the service clock; tests use it to pin dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateRequest validates and inserts a pending leave request. The ledger is
// only checked here, never mutated; deduction is deferred to approval.
func (s *Service) CreateRequest(ctx context.Context, userID string, input CreateInput) (Request, error) {
	if !entitlement.ValidType(input.LeaveType) {
		return Request{}, ErrInvalidType
	}
	start := day(input.StartDate)
	end := day(input.EndDate)
	if end.Before(start) {
		return Request{}, ErrInvalidRange
	}
	totalDays := TotalDays(start, end)

	balance, err := s.ledger.Balance(ctx, userID, start.Year())
	if err != nil {
		return Request{}, err
	}
	if balanceFor(balance, input.LeaveType).LessThan(totalDays) {
		return Request{}, ErrInsufficientBalance
	}

	overlaps, err := s.store.HasOverlap(ctx, userID, start, end)
	if err != nil {
		return Request{}, err
	}
	if overlaps {
		return Request{}, ErrOverlap
	}

	request, err := s.store.Create(ctx, Request{
		UserID:    userID,
		LeaveType: input.LeaveType,
		StartDate: start,
		EndDate:   end,
		TotalDays: totalDays,
		Reason:    input.Reason,
		Status:    StatusPending,
	})
	if err != nil {
		return Request{}, err
	}
	slog.Info("leave requested", "requestId", request.ID, "userId", userID, "type", input.LeaveType, "days", totalDays.String())
	return request, nil
}

// Decide approves or rejects a pending request. Approval deducts the full
// day count from the start-year ledger in the same transaction as the status
// change; a request is never left Approved with its days undeducted.
// Rejection leaves the ledger alone.
func (s *Service) Decide(ctx context.Context, actor auth.Actor, requestID string, approved bool, rejectionReason string) (Request, error) {
	request, err := s.store.ByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if request.Status != StatusPending {
		return Request{}, ErrAlreadyDecided
	}

	managerID, err := s.directory.ManagerID(ctx, request.UserID)
	if err != nil {
		return Request{}, err
	}
	if !auth.CanActOn(actor, managerID) {
		return Request{}, ErrNotAuthorized
	}

	status := StatusApproved
	var reason *string
	if !approved {
		status = StatusRejected
		if rejectionReason != "" {
			reason = &rejectionReason
		}
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)

	decidedAt := s.now()
	if err := s.store.DecideTx(ctx, tx, request.ID, status, actor.ID, decidedAt, reason); err != nil {
		return Request{}, err
	}

	if approved {
		year := request.StartDate.Year()
		if err := s.ledger.DeductTx(ctx, tx, request.UserID, year, request.LeaveType, request.TotalDays); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	request.Status = status
	request.ApprovedBy = &actor.ID
	request.ApprovedAt = &decidedAt
	request.RejectionReason = reason
	slog.Info("leave decided", "requestId", request.ID, "status", status, "actorId", actor.ID)
	return request, nil
}

// Cancel withdraws the caller's own pending request.
func (s *Service) Cancel(ctx context.Context, userID, requestID string) (Request, error) {
	request, err := s.store.ByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if request.UserID != userID {
		return Request{}, ErrNotOwner
	}
	if err := s.store.Cancel(ctx, request.ID); err != nil {
		return Request{}, err
	}
	request.Status = StatusCancelled
	return request, nil
}

// Balance returns the current-year ledger with pending requests reserved
// against it.
func (s *Service) Balance(ctx context.Context, userID string) (AvailableBalance, error) {
	year := s.now().Year()
	ledger, err := s.ledger.Balance(ctx, userID, year)
	if err != nil {
		return AvailableBalance{}, err
	}
	pending, err := s.store.PendingTotals(ctx, userID, year)
	if err != nil {
		return AvailableBalance{}, err
	}
	return AvailableBalance{
		Year:    year,
		Casual:  ledger.CasualBalance.Sub(pending[entitlement.TypeCasual]),
		Earned:  ledger.EarnedBalance.Sub(pending[entitlement.TypeEarned]),
		CompOff: ledger.CompOffBalance.Sub(pending[entitlement.TypeCompOff]),
	}, nil
}

func (s *Service) MyRequests(ctx context.Context, userID string) ([]Request, error) {
	return s.store.ListByUser(ctx, userID)
}

// PendingForActor lists requests awaiting the actor's decision.
func (s *Service) PendingForActor(ctx context.Context, actor auth.Actor) ([]Request, error) {
	if actor.Role == auth.RoleAdministrator {
		return s.store.ListPendingAll(ctx)
	}
	ids, err := s.directory.SubordinateIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.store.ListPending(ctx, ids)
}

func balanceFor(e entitlement.Entitlement, leaveType string) decimal.Decimal {
	switch leaveType {
	case entitlement.TypeCasual:
		return e.CasualBalance
	case entitlement.TypeEarned:
		return e.EarnedBalance
	case entitlement.TypeCompOff:
		return e.CompOffBalance
	}
	return decimal.Zero
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
