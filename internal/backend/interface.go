package backend

import (
	"context"

	"hauskasse/internal/ledger"
)

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// StoreResult contains the store instance and an optional cleanup function.
type StoreResult struct {
	Store   ledger.ExpenseStore
	Cleanup CleanupFunc
}

// Factory creates expense stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type selects the store implementation.
type Type string

const (
	SQLiteStore Type = "sqlite"
	MemoryStore Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the store type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteStore, MemoryStore:
		return true
	default:
		return false
	}
}
