package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validExpense() Expense {
	return Expense{
		ID:          "e-1",
		Date:        NewDate(2025, 3, 14),
		Description: "Groceries",
		Amount:      Money{Cents: 4250},
		ClaimedBy:   RoleMila,
		Status:      StatusPending,
	}
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *Expense) {}},
		{name: "empty description ok", mutate: func(e *Expense) { e.Description = "" }},
		{name: "description at limit", mutate: func(e *Expense) { e.Description = strings.Repeat("x", MaxDescriptionLength) }},
		{name: "description over limit", mutate: func(e *Expense) { e.Description = strings.Repeat("x", MaxDescriptionLength+1) }, wantErr: ErrDescriptionTooLong},
		{name: "zero date", mutate: func(e *Expense) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount = Money{} }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e *Expense) { e.Amount = Money{Cents: -100} }, wantErr: ErrInvalidAmount},
		{name: "unknown claimant", mutate: func(e *Expense) { e.ClaimedBy = "Nachbar" }, wantErr: ErrInvalidClaimant},
		{name: "unknown status", mutate: func(e *Expense) { e.Status = "archived" }, wantErr: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("empty id", func(t *testing.T) {
		e := validExpense()
		e.ID = ""
		if err := e.Validate(); err == nil {
			t.Error("Validate() with empty id = nil, want error")
		}
	})
}

func TestParseRole(t *testing.T) {
	for _, in := range []string{"Mila", "MaPi"} {
		role, err := ParseRole(in)
		if err != nil {
			t.Errorf("ParseRole(%q) error: %v", in, err)
		}
		if role.String() != in {
			t.Errorf("ParseRole(%q) = %q", in, role)
		}
	}
	for _, in := range []string{"", "mila", "MAPI", "Bob"} {
		if _, err := ParseRole(in); !errors.Is(err, ErrInvalidClaimant) {
			t.Errorf("ParseRole(%q) = %v, want ErrInvalidClaimant", in, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"pending", "approved", "rejected"} {
		status, err := ParseStatus(in)
		if err != nil {
			t.Errorf("ParseStatus(%q) error: %v", in, err)
		}
		if status.String() != in {
			t.Errorf("ParseStatus(%q) = %q", in, status)
		}
	}
	for _, in := range []string{"", "Pending", "done"} {
		if _, err := ParseStatus(in); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q) = %v, want ErrInvalidStatus", in, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-14"` {
		t.Errorf("marshal = %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip changed date: %v != %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"14.03.2025"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("unmarshal non ISO date = %v, want ErrInvalidDate", err)
	}
	if err := json.Unmarshal([]byte(`"2025-02-30"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("unmarshal impossible date = %v, want ErrInvalidDate", err)
	}
}

func TestStateConflictError(t *testing.T) {
	err := &StateConflictError{Action: "approve", Status: StatusRejected}
	if got := err.Error(); got != "cannot approve from state rejected" {
		t.Errorf("Error() = %q", got)
	}
}
