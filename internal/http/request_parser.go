package http

import (
	"net/http"
	"strconv"

	"hauskasse/internal/core"
	"hauskasse/internal/ledger"
)

// parseListQuery reads the optional status, claimed_by, limit, and offset
// query parameters. Out-of-range paging and unknown enum values come back as
// the core invalid-input errors so the handler can answer 422.
func parseListQuery(r *http.Request) (ledger.ListFilter, error) {
	var filter ledger.ListFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := core.ParseStatus(raw)
		if err != nil {
			return ledger.ListFilter{}, err
		}
		filter.Status = &status
	}

	if raw := q.Get("claimed_by"); raw != "" {
		role, err := core.ParseRole(raw)
		if err != nil {
			return ledger.ListFilter{}, err
		}
		filter.ClaimedBy = &role
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ledger.ListFilter{}, core.ErrInvalidLimit
		}
		filter.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return ledger.ListFilter{}, core.ErrInvalidOffset
		}
		filter.Offset = offset
	}

	return filter, nil
}
