// Package storage provides the SQLite-backed ExpenseStore.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"hauskasse/internal/core"
	"hauskasse/internal/ledger"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = "id, date, description, amount_cents, claimed_by, status"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e          core.Expense
		dateStr    string
		claimedBy  string
		statusStr  string
		amountCent int64
	)
	if err := s.Scan(&e.ID, &dateStr, &e.Description, &amountCent, &claimedBy, &statusStr); err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	e.Date = date
	e.Amount = core.Money{Cents: amountCent}
	e.ClaimedBy = core.Role(claimedBy)
	e.Status = core.Status(statusStr)
	return e, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) error {
	// INSERT OR IGNORE keeps the duplicate check free of driver-specific
	// constraint error parsing.
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO expenses (id, date, description, amount_cents, claimed_by, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.String(), e.Description, e.Amount.Cents, string(e.ClaimedBy), string(e.Status))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert expense rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrDuplicateID
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"claimed_by", e.ClaimedBy,
		"status", e.Status,
		"amount_cents", e.Amount.Cents)

	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Expense{}, core.ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context, filter ledger.ListFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE 1=1`
	var args []any

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.ClaimedBy != nil {
		query += " AND claimed_by = ?"
		args = append(args, string(*filter.ClaimedBy))
	}

	// Dates are stored as YYYY-MM-DD text, so lexicographic order is
	// chronological. The id tiebreak keeps pagination deterministic.
	query += " ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	items := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return items, nil
}

// TransitionStatus applies the status change as a single conditional UPDATE.
// A zero row count means either the id is unknown or another writer already
// moved the record out of the expected state.
func (r *SQLiteRepository) TransitionStatus(ctx context.Context, id string, from, to core.Status) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return core.Expense{}, gerr
		}
		return core.Expense{}, core.ErrStatusChanged
	}

	slog.InfoContext(ctx, "Expense status updated",
		"id", id, "from", from, "to", to)

	return r.Get(ctx, id)
}

func (r *SQLiteRepository) SummarizeClaims(ctx context.Context) (core.ClaimTotals, error) {
	var t core.ClaimTotals
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN claimed_by = 'MaPi' AND status = 'approved' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN claimed_by = 'Mila' AND status = 'approved' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN claimed_by = 'Mila' AND status = 'pending' THEN amount_cents END), 0),
			COUNT(CASE WHEN claimed_by = 'Mila' AND status = 'pending' THEN 1 END)
		FROM expenses`)
	if err := row.Scan(&t.ApprovedMaPiCents, &t.ApprovedMilaCents, &t.PendingMilaCents, &t.PendingMilaCount); err != nil {
		return core.ClaimTotals{}, fmt.Errorf("summarize claims: %w", err)
	}
	return t, nil
}
