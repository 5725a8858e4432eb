package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hauskasse/internal/core"
	"hauskasse/internal/ledger"
	"hauskasse/internal/log"
)

type createExpenseRequest struct {
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	ClaimedBy   string     `json:"claimed_by"`
}

type expenseResponse struct {
	ID          string      `json:"id"`
	Date        core.Date   `json:"date"`
	Description string      `json:"description"`
	Amount      core.Money  `json:"amount"`
	ClaimedBy   core.Role   `json:"claimed_by"`
	Status      core.Status `json:"status"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		ClaimedBy:   e.ClaimedBy,
		Status:      e.Status,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	claimedBy, err := core.ParseRole(req.ClaimedBy)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	expense, err := s.expenses.Create(r.Context(), ledger.CreateParams{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		ClaimedBy:   claimedBy,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	s.invalidateSummary()
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListQuery(r)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	expenses, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	// An empty page is a JSON array, never null.
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleApproveExpense(w http.ResponseWriter, r *http.Request) {
	s.resolveExpense(w, r, s.expenses.Approve)
}

func (s *Server) handleRejectExpense(w http.ResponseWriter, r *http.Request) {
	s.resolveExpense(w, r, s.expenses.Reject)
}

func (s *Server) resolveExpense(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, id string) (core.Expense, error)) {
	id := chi.URLParam(r, "id")

	expense, err := resolve(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	log.FromContext(r.Context()).Info("Expense status resolved",
		log.FieldExpenseID, expense.ID,
		log.FieldStatus, expense.Status)

	s.invalidateSummary()
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}
