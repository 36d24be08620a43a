// Package worker moves saved transactions from SQLite into the export
// ledger, driven by AMQP messages with a periodic sweep as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// Repository is the slice of the SQLite repository the worker needs.
type Repository interface {
	GetExportRow(ctx context.Context, id string) (storage.ExportRow, error)
	GetPendingExportRows(ctx context.Context, limit int) ([]storage.ExportRow, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

type ExportWorker struct {
	storage   Repository
	ledger    sheets.Ledger
	batchSize int
}

func NewExportWorker(repo Repository, ledger sheets.Ledger, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   repo,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"transaction_id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionDelete:
		if err := w.ledger.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete ledger row: %w", err)
		}
		return nil
	case amqp.ActionUpsert:
		return w.exportOne(ctx, msg.ID)
	default:
		// Unknown actions are dropped, requeueing would loop forever
		slog.WarnContext(ctx, "Dropping message with unknown action",
			"transaction_id", msg.ID, "action", msg.Action)
		return nil
	}
}

func (w *ExportWorker) exportOne(ctx context.Context, id string) error {
	row, err := w.storage.GetExportRow(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the message was consumed
		slog.InfoContext(ctx, "Transaction gone, skipping export", "transaction_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if _, err := w.ledger.Append(ctx, row.Transaction); err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported", "transaction_id", id)
	return nil
}

// ProcessPending exports transactions still marked pending. This is a backup
// mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingExportRows(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	var failed int
	for _, row := range pending {
		if err := w.exportOne(ctx, row.Transaction.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"transaction_id", row.Transaction.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pending exports failed", failed, len(pending))
	}
	return nil
}
