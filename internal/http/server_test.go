package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hauskasse/internal/ledger"
	"hauskasse/internal/ledger/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	srv := NewServer(
		ledger.NewExpenseService(store, nil),
		ledger.NewSummaryService(store),
		Options{Port: 0, AllowedOrigins: []string{"http://localhost:3000"}},
	)
	t.Cleanup(func() { srv.cacheManager.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeExpense(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createExpense(t *testing.T, srv *Server, claimedBy, amount string) map[string]any {
	t.Helper()
	body := fmt.Sprintf(`{"date":"2025-03-14","description":"Groceries","amount":%s,"claimed_by":%q}`, amount, claimedBy)
	rec := doJSON(t, srv, http.MethodPost, "/expenses", body)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	return decodeExpense(t, rec)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateExpenseStatuses(t *testing.T) {
	srv := newTestServer(t)

	mila := createExpense(t, srv, "Mila", "42.50")
	assert.Equal(t, "pending", mila["status"])
	assert.NotEmpty(t, mila["id"])

	mapi := createExpense(t, srv, "MaPi", "10")
	assert.Equal(t, "approved", mapi["status"])
}

func TestCreateExpenseAmountIsPlainNumber(t *testing.T) {
	srv := newTestServer(t)

	body := `{"date":"2025-03-14","description":"Bus","amount":3.005,"claimed_by":"Mila"}`
	rec := doJSON(t, srv, http.MethodPost, "/expenses", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// Half-up rounding applied at the boundary, serialized unquoted.
	assert.Contains(t, rec.Body.String(), `"amount":3.01`)
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "unknown claimant", body: `{"date":"2025-03-14","description":"x","amount":1,"claimed_by":"Bob"}`, want: http.StatusUnprocessableEntity},
		{name: "zero amount", body: `{"date":"2025-03-14","description":"x","amount":0,"claimed_by":"Mila"}`, want: http.StatusUnprocessableEntity},
		{name: "negative amount", body: `{"date":"2025-03-14","description":"x","amount":-5,"claimed_by":"Mila"}`, want: http.StatusUnprocessableEntity},
		{name: "bad date", body: `{"date":"14.03.2025","description":"x","amount":1,"claimed_by":"Mila"}`, want: http.StatusUnprocessableEntity},
		{name: "overlong description", body: fmt.Sprintf(`{"date":"2025-03-14","description":%q,"amount":1,"claimed_by":"Mila"}`, strings.Repeat("x", 301)), want: http.StatusUnprocessableEntity},
		{name: "malformed json", body: `{"date":`, want: http.StatusUnprocessableEntity},
		{name: "unknown field", body: `{"date":"2025-03-14","description":"x","amount":1,"claimed_by":"Mila","tip":1}`, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/expenses", tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var errBody map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
			assert.NotEmpty(t, errBody["detail"])
		})
	}
}

func TestCreateExpenseRequiresJSONContentType(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("date=2025-03-14"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApproveAndRejectFlow(t *testing.T) {
	srv := newTestServer(t)

	e := createExpense(t, srv, "Mila", "20")
	id := e["id"].(string)

	rec := doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decodeExpense(t, rec)["status"])

	// Approved is terminal.
	rec = doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"detail":"cannot approve from state approved"}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/reject", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"detail":"cannot reject from state approved"}`, rec.Body.String())
}

func TestRejectPending(t *testing.T) {
	srv := newTestServer(t)

	e := createExpense(t, srv, "Mila", "20")
	id := e["id"].(string)

	rec := doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/reject", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decodeExpense(t, rec)["status"])
}

func TestApproveMaPiClaim(t *testing.T) {
	srv := newTestServer(t)

	e := createExpense(t, srv, "MaPi", "20")
	id := e["id"].(string)

	rec := doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/approve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Only Mila's claims require approval."}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/expenses/"+id+"/reject", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Only Mila's claims can be rejected."}`, rec.Body.String())
}

func TestApproveUnknownExpense(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/expenses/nope/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"expense not found"}`, rec.Body.String())
}

func TestGetExpense(t *testing.T) {
	srv := newTestServer(t)

	e := createExpense(t, srv, "Mila", "7.25")
	id := e["id"].(string)

	rec := doJSON(t, srv, http.MethodGet, "/expenses/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeExpense(t, rec)
	assert.Equal(t, "Groceries", got["description"])
	assert.Equal(t, 7.25, got["amount"])

	rec = doJSON(t, srv, http.MethodGet, "/expenses/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListExpenses(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String(), "empty ledger is an empty array")

	createExpense(t, srv, "Mila", "1")
	createExpense(t, srv, "MaPi", "2")

	rec = doJSON(t, srv, http.MethodGet, "/expenses?status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Mila", page[0]["claimed_by"])

	rec = doJSON(t, srv, http.MethodGet, "/expenses?claimed_by=MaPi&limit=5&offset=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "approved", page[0]["status"])
}

func TestListExpensesValidation(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/expenses?limit=0",
		"/expenses?limit=101",
		"/expenses?limit=abc",
		"/expenses?offset=-1",
		"/expenses?status=archived",
		"/expenses?claimed_by=Bob",
	} {
		rec := doJSON(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "path %s, body %s", path, rec.Body.String())
	}
}

func TestSummaryReflectsMutations(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"currency": "CHF",
		"approved_total_mapi_claims": 0.00,
		"approved_total_mila_claims": 0.00,
		"net_balance_for_mila": 0.00,
		"pending_total_mila_claims": 0.00,
		"pending_count_mila_claims": 0
	}`, rec.Body.String())

	createExpense(t, srv, "MaPi", "10")
	mila := createExpense(t, srv, "Mila", "4")
	createExpense(t, srv, "Mila", "2.50")

	// Mutations must invalidate the cached summary.
	rec = doJSON(t, srv, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 10.0, s["approved_total_mapi_claims"])
	assert.Equal(t, 10.0, s["net_balance_for_mila"])
	assert.Equal(t, 6.5, s["pending_total_mila_claims"])
	assert.Equal(t, 2.0, s["pending_count_mila_claims"])

	rec = doJSON(t, srv, http.MethodPost, "/expenses/"+mila["id"].(string)+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 4.0, s["approved_total_mila_claims"])
	assert.Equal(t, 6.0, s["net_balance_for_mila"])
	assert.Equal(t, 2.5, s["pending_total_mila_claims"])
	assert.Equal(t, 1.0, s["pending_count_mila_claims"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
