// Package ledger implements the expense approval workflow for the household
// ledger: creation defaults, the pending/approved/rejected state machine, and
// balance aggregation. Persistence and event delivery are ports implemented
// elsewhere.
package ledger

import (
	"context"

	"hauskasse/internal/core"
)

const (
	// DefaultListLimit applies when a list request carries no limit.
	DefaultListLimit = 10
	// MaxListLimit is the pagination ceiling.
	MaxListLimit = 100
)

// ListFilter narrows and pages a listing. Nil pointer fields mean "any".
type ListFilter struct {
	Status    *core.Status
	ClaimedBy *core.Role
	Limit     int
	Offset    int
}

// ExpenseStore is the durable keyed collection of expense records.
//
// List returns records ordered by (date descending, id descending); the id
// tiebreak keeps pagination deterministic. TransitionStatus must perform the
// status change as one atomic conditional write and return
// core.ErrStatusChanged when the record no longer carries the expected from
// status, so two concurrent approvals cannot both win.
type ExpenseStore interface {
	Insert(ctx context.Context, e core.Expense) error
	Get(ctx context.Context, id string) (core.Expense, error)
	List(ctx context.Context, filter ListFilter) ([]core.Expense, error)
	TransitionStatus(ctx context.Context, id string, from, to core.Status) (core.Expense, error)
	SummarizeClaims(ctx context.Context) (core.ClaimTotals, error)
}

// EventPublisher receives fire-and-forget notifications about ledger changes.
// Implementations must never be load-bearing: a failed publish is logged and
// the operation still succeeds.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event string, id string, status core.Status) error
}
