package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Currency is fixed for the whole ledger; all amounts are Swiss Francs.
const Currency = "CHF"

// MaxDescriptionLength bounds the free-text description of an expense.
const MaxDescriptionLength = 300

const (
	RoleMila Role = "Mila"
	RoleMaPi Role = "MaPi"
)

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type (
	// Role identifies the household member who claimed an expense.
	Role string

	// Status is the approval state of an expense.
	Status string

	// Date is a calendar date with no time component, always UTC midnight.
	Date struct {
		time.Time
	}

	// Expense is a single shared-household expense claim.
	Expense struct {
		ID          string
		Date        Date
		Description string
		Amount      Money
		ClaimedBy   Role
		Status      Status
	}
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidClaimant    = errors.New("unknown claimant")
	ErrInvalidStatus      = errors.New("unknown status")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description too long (max 300 characters)")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 100")
	ErrInvalidOffset      = errors.New("offset must not be negative")

	ErrNotFound      = errors.New("expense not found")
	ErrDuplicateID   = errors.New("duplicate expense id")
	ErrStatusChanged = errors.New("expense status changed concurrently")

	// MaPi's claims auto-approve at creation; only Mila's ever sit in pending.
	ErrApprovalNotAllowed  = errors.New("only Mila's claims require approval")
	ErrRejectionNotAllowed = errors.New("only Mila's claims can be rejected")
)

// StateConflictError reports an approve/reject attempt on a record that is no
// longer pending. Approved and rejected are terminal states.
type StateConflictError struct {
	Action string
	Status Status
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s from state %s", e.Action, e.Status)
}

// IsInvalidInput reports whether err belongs to the invalid-input family,
// the request-shape errors a caller must correct before retrying.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidClaimant) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrInvalidOffset)
}

// ParseRole converts external input into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMila, RoleMaPi:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidClaimant, s)
	}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleMila, RoleMaPi:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseStatus converts external input into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Expense) Validate() error {
	if e.ID == "" {
		return errors.New("empty expense id")
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.ClaimedBy.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidClaimant, string(e.ClaimedBy))
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(e.Status))
	}
	return nil
}
