package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// TransactionWriter appends a transaction row to the export ledger.
	// Appending an ID that already exists replaces the previous row.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes a previously exported transaction row.
	// Deleting an unknown ID is not an error.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// Ledger is the full export surface the worker needs.
	Ledger interface {
		TransactionWriter
		TransactionDeleter
	}
)
