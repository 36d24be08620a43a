package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishTransactionExport(ctx context.Context, id, action string) error
}

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// The write lands in SQLite first; the export message is best-effort.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher Publisher
}

func NewTransactionService(repo *storage.SQLiteRepository, publisher Publisher) *TransactionService {
	return &TransactionService{
		storage:   repo,
		publisher: publisher,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	saved, err := s.storage.CreateTransaction(ctx, userID, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, saved.ID, amqp.ActionUpsert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", saved.ID, "error", err)
		// Don't fail the request - the transaction is saved locally
	}

	return saved, nil
}

func (s *TransactionService) Update(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	saved, err := s.storage.UpdateTransaction(ctx, userID, t)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.publish(ctx, saved.ID, amqp.ActionUpsert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", saved.ID, "error", err)
	}

	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	if err := s.publish(ctx, id, amqp.ActionDelete); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"transaction_id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) MonthlyTrend(ctx context.Context, userID string, monthsBack int, now time.Time) ([]storage.TrendPoint, error) {
	return s.storage.MonthlyTrend(ctx, userID, monthsBack, now)
}

func (s *TransactionService) publish(ctx context.Context, id, action string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping export message")
		return nil
	}
	return s.publisher.PublishTransactionExport(ctx, id, action)
}

// Close closes storage; the AMQP client is owned by the caller.
func (s *TransactionService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
