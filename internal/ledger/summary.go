package ledger

import (
	"context"
	"fmt"

	"hauskasse/internal/core"
)

// SummaryService aggregates approved and pending totals per claimant.
type SummaryService struct {
	store ExpenseStore
}

func NewSummaryService(store ExpenseStore) *SummaryService {
	return &SummaryService{store: store}
}

// Summarize computes the household balance over all records. MaPi's total
// filters on status=approved explicitly rather than leaning on the creation
// invariant, so a future status the invariant does not cover cannot leak into
// the balance. Totals are exact cent sums; no rounding happens here.
func (s *SummaryService) Summarize(ctx context.Context) (core.Summary, error) {
	t, err := s.store.SummarizeClaims(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize claims: %w", err)
	}

	return core.Summary{
		Currency:                core.Currency,
		ApprovedTotalMaPiClaims: core.Money{Cents: t.ApprovedMaPiCents},
		ApprovedTotalMilaClaims: core.Money{Cents: t.ApprovedMilaCents},
		NetBalanceForMila:       core.Money{Cents: t.ApprovedMaPiCents - t.ApprovedMilaCents},
		PendingTotalMilaClaims:  core.Money{Cents: t.PendingMilaCents},
		PendingCountMilaClaims:  t.PendingMilaCount,
	}, nil
}
