package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"hauskasse/internal/core"
)

// Event names published on ledger mutations.
const (
	EventExpenseCreated  = "expense.created"
	EventExpenseApproved = "expense.approved"
	EventExpenseRejected = "expense.rejected"
)

// ExpenseService enforces creation defaults and the approval state machine.
type ExpenseService struct {
	store  ExpenseStore
	events EventPublisher
}

// NewExpenseService creates the service. events may be nil; publishing is then
// skipped entirely.
func NewExpenseService(store ExpenseStore, events EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: events,
	}
}

// CreateParams carries the caller-supplied fields of a new expense. Amount is
// already in cents; decimal input is converted at the transport boundary via
// core.ParseDecimalToCents, which applies the half-up cent rounding.
type CreateParams struct {
	Date        core.Date
	Description string
	Amount      core.Money
	ClaimedBy   core.Role
}

// Create validates the claim, assigns a fresh id, and derives the initial
// status from the claimant: MaPi's claims are pre-trusted and start approved,
// Mila's start pending and wait for MaPi's sign-off.
func (s *ExpenseService) Create(ctx context.Context, p CreateParams) (core.Expense, error) {
	status := core.StatusPending
	if p.ClaimedBy == core.RoleMaPi {
		status = core.StatusApproved
	}

	e := core.Expense{
		ID:          uuid.NewString(),
		Date:        p.Date,
		Description: strings.TrimSpace(p.Description),
		Amount:      p.Amount,
		ClaimedBy:   p.ClaimedBy,
		Status:      status,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.store.Insert(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", e.ID,
		"claimed_by", e.ClaimedBy,
		"status", e.Status,
		"amount_cents", e.Amount.Cents)

	s.publish(ctx, EventExpenseCreated, e.ID, e.Status)

	return e, nil
}

// Approve moves a pending claim of Mila's to approved.
func (s *ExpenseService) Approve(ctx context.Context, id string) (core.Expense, error) {
	return s.resolve(ctx, id, "approve", core.StatusApproved, core.ErrApprovalNotAllowed, EventExpenseApproved)
}

// Reject moves a pending claim of Mila's to rejected.
func (s *ExpenseService) Reject(ctx context.Context, id string) (core.Expense, error) {
	return s.resolve(ctx, id, "reject", core.StatusRejected, core.ErrRejectionNotAllowed, EventExpenseRejected)
}

func (s *ExpenseService) resolve(ctx context.Context, id, action string, to core.Status, notAllowed error, event string) (core.Expense, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.ClaimedBy != core.RoleMila {
		return core.Expense{}, notAllowed
	}
	if e.Status != core.StatusPending {
		return core.Expense{}, &core.StateConflictError{Action: action, Status: e.Status}
	}

	updated, err := s.store.TransitionStatus(ctx, id, core.StatusPending, to)
	if err != nil {
		if errors.Is(err, core.ErrStatusChanged) {
			// Lost the race against a concurrent approve/reject; report the
			// state the winner left behind.
			if current, gerr := s.store.Get(ctx, id); gerr == nil {
				return core.Expense{}, &core.StateConflictError{Action: action, Status: current.Status}
			}
		}
		return core.Expense{}, fmt.Errorf("%s expense %s: %w", action, id, err)
	}

	slog.InfoContext(ctx, "Expense resolved",
		"id", updated.ID,
		"action", action,
		"status", updated.Status)

	s.publish(ctx, event, updated.ID, updated.Status)

	return updated, nil
}

// Get returns a single expense by id.
func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.Get(ctx, id)
}

// List returns expenses matching the filter, newest first. The limit defaults
// to DefaultListLimit and is rejected outside [1, MaxListLimit].
func (s *ExpenseService) List(ctx context.Context, filter ListFilter) ([]core.Expense, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		return nil, core.ErrInvalidLimit
	}
	if filter.Offset < 0 {
		return nil, core.ErrInvalidOffset
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, core.ErrInvalidStatus
	}
	if filter.ClaimedBy != nil && !filter.ClaimedBy.IsValid() {
		return nil, core.ErrInvalidClaimant
	}

	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}

func (s *ExpenseService) publish(ctx context.Context, event, id string, status core.Status) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, event, id, status); err != nil {
		// The ledger write already succeeded; events are best-effort.
		slog.WarnContext(ctx, "Failed to publish expense event",
			"event", event, "id", id, "error", err)
	}
}
