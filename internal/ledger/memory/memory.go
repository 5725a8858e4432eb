// Package memory provides the in-memory ExpenseStore, used for tests and as
// the default backend when no SQLite path is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hauskasse/internal/core"
	"hauskasse/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Expense
}

func New() *Store {
	return &Store{items: make(map[string]core.Expense)}
}

func (s *Store) Insert(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[e.ID]; exists {
		return core.ErrDuplicateID
	}
	s.items[e.ID] = e
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) List(_ context.Context, filter ledger.ListFilter) ([]core.Expense, error) {
	s.mu.Lock()
	matched := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.ClaimedBy != nil && e.ClaimedBy != *filter.ClaimedBy {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.Unlock()

	// Date descending, id descending on ties, matching the SQL backend.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date.Time) {
			return matched[i].Date.After(matched[j].Date.Time)
		}
		return strings.Compare(matched[i].ID, matched[j].ID) > 0
	})

	if filter.Offset >= len(matched) {
		return []core.Expense{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// TransitionStatus performs the conditional status write under the store lock,
// so a concurrent approve and reject cannot both succeed.
func (s *Store) TransitionStatus(_ context.Context, id string, from, to core.Status) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	if e.Status != from {
		return core.Expense{}, core.ErrStatusChanged
	}
	e.Status = to
	s.items[id] = e
	return e, nil
}

func (s *Store) SummarizeClaims(_ context.Context) (core.ClaimTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t core.ClaimTotals
	for _, e := range s.items {
		switch {
		case e.ClaimedBy == core.RoleMaPi && e.Status == core.StatusApproved:
			t.ApprovedMaPiCents += e.Amount.Cents
		case e.ClaimedBy == core.RoleMila && e.Status == core.StatusApproved:
			t.ApprovedMilaCents += e.Amount.Cents
		case e.ClaimedBy == core.RoleMila && e.Status == core.StatusPending:
			t.PendingMilaCents += e.Amount.Cents
			t.PendingMilaCount++
		}
	}
	return t, nil
}
