// Package sheets defines the outbound ports for mirroring the ledger to a
// spreadsheet. Rows are plain strings; adapters decide how cells are typed.
package sheets

import "context"

// Ports for outbound adapters.
type (
	// TransactionWriter replaces the transactions tab with rows, header first.
	TransactionWriter interface {
		WriteTransactions(ctx context.Context, rows [][]string) error
	}

	// SummaryWriter replaces the summary tab with rows, header first.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, rows [][]string) error
	}

	Mirror interface {
		TransactionWriter
		SummaryWriter
	}
)
