package core

// ClaimTotals are the raw per-claimant aggregates a store computes over all
// expense records, in cents.
type ClaimTotals struct {
	ApprovedMaPiCents int64
	ApprovedMilaCents int64
	PendingMilaCents  int64
	PendingMilaCount  int64
}

// Summary is the household balance derived from ClaimTotals. A positive
// NetBalanceForMila means Mila owes MaPi: MaPi has covered more of the
// approved shared spend.
type Summary struct {
	Currency                string
	ApprovedTotalMaPiClaims Money
	ApprovedTotalMilaClaims Money
	NetBalanceForMila       Money
	PendingTotalMilaClaims  Money
	PendingCountMilaClaims  int64
}
