package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

type fakeRepo struct {
	rows        map[string]storage.ExportRow
	exported    []string
	exportError []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]storage.ExportRow)}
}

func (r *fakeRepo) add(t core.Transaction) {
	r.rows[t.ID] = storage.ExportRow{Transaction: t, UserID: "user-1"}
}

func (r *fakeRepo) GetExportRow(_ context.Context, id string) (storage.ExportRow, error) {
	row, ok := r.rows[id]
	if !ok {
		return storage.ExportRow{}, storage.ErrNotFound
	}
	return row, nil
}

func (r *fakeRepo) GetPendingExportRows(_ context.Context, limit int) ([]storage.ExportRow, error) {
	var out []storage.ExportRow
	for _, row := range r.rows {
		if len(out) == limit {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeRepo) MarkExported(_ context.Context, id string) error {
	r.exported = append(r.exported, id)
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) MarkExportError(_ context.Context, id string) error {
	r.exportError = append(r.exportError, id)
	return nil
}

type failingLedger struct{}

func (failingLedger) Append(context.Context, core.Transaction) (string, error) {
	return "", errors.New("sheets unavailable")
}
func (failingLedger) Delete(context.Context, string) error {
	return errors.New("sheets unavailable")
}

func tx(id string) core.Transaction {
	return core.Transaction{
		ID:              id,
		Title:           "Coffee",
		Amount:          core.Money{Cents: 350},
		Type:            core.Expense,
		TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleExportMessage_Upsert(t *testing.T) {
	repo := newFakeRepo()
	repo.add(tx("tx-1"))
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, 10)

	msg := amqp.NewTransactionExportMessage("tx-1", amqp.ActionUpsert)
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}

	if items := ledger.Items(); len(items) != 1 || items[0].ID != "tx-1" {
		t.Errorf("ledger = %+v, want tx-1 appended", items)
	}
	if len(repo.exported) != 1 || repo.exported[0] != "tx-1" {
		t.Errorf("exported = %v, want [tx-1]", repo.exported)
	}
}

func TestHandleExportMessage_Delete(t *testing.T) {
	repo := newFakeRepo()
	ledger := memory.New()
	if _, err := ledger.Append(context.Background(), tx("tx-1")); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	w := NewExportWorker(repo, ledger, 10)

	msg := amqp.NewTransactionExportMessage("tx-1", amqp.ActionDelete)
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage() error = %v", err)
	}
	if items := ledger.Items(); len(items) != 0 {
		t.Errorf("ledger = %+v, want empty after delete", items)
	}
}

func TestHandleExportMessage_MissingTransaction(t *testing.T) {
	w := NewExportWorker(newFakeRepo(), memory.New(), 10)

	// Row deleted between publish and consume: ack, don't requeue forever
	msg := amqp.NewTransactionExportMessage("gone", amqp.ActionUpsert)
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Errorf("HandleExportMessage() error = %v, want nil for missing row", err)
	}
}

func TestHandleExportMessage_UnknownAction(t *testing.T) {
	repo := newFakeRepo()
	repo.add(tx("tx-1"))
	w := NewExportWorker(repo, memory.New(), 10)

	msg := amqp.NewTransactionExportMessage("tx-1", "rename")
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Errorf("HandleExportMessage() error = %v, want nil for unknown action", err)
	}
	if len(repo.exported) != 0 {
		t.Errorf("exported = %v, want none", repo.exported)
	}
}

func TestHandleExportMessage_LedgerFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.add(tx("tx-1"))
	w := NewExportWorker(repo, failingLedger{}, 10)

	msg := amqp.NewTransactionExportMessage("tx-1", amqp.ActionUpsert)
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleExportMessage() should fail when the ledger is down")
	}
	if len(repo.exportError) != 1 || repo.exportError[0] != "tx-1" {
		t.Errorf("exportError = %v, want [tx-1]", repo.exportError)
	}
}

func TestProcessPending(t *testing.T) {
	repo := newFakeRepo()
	repo.add(tx("tx-1"))
	repo.add(tx("tx-2"))
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if items := ledger.Items(); len(items) != 2 {
		t.Errorf("ledger = %+v, want both rows exported", items)
	}
	if len(repo.exported) != 2 {
		t.Errorf("exported = %v, want both rows marked", repo.exported)
	}
}

func TestProcessPending_Empty(t *testing.T) {
	w := NewExportWorker(newFakeRepo(), memory.New(), 10)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Errorf("ProcessPending() on empty backlog error = %v", err)
	}
}
