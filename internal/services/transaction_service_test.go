package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type recordingPublisher struct {
	published []string // "id:action"
	fail      bool
}

func (p *recordingPublisher) PublishTransactionExport(ctx context.Context, id, action string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, id+":"+action)
	return nil
}

func newTestService(t *testing.T, pub Publisher) (*TransactionService, string) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	u, err := repo.CreateUser(context.Background(), "mario@example.com", "Mario", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	svc := NewTransactionService(repo, pub)
	t.Cleanup(func() { svc.Close() })
	return svc, u.ID
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Title:           "Coffee",
		Amount:          core.Money{Cents: 350},
		Type:            core.Expense,
		TransactionDate: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesUpsert(t *testing.T) {
	pub := &recordingPublisher{}
	svc, userID := newTestService(t, pub)

	saved, err := svc.Create(context.Background(), userID, sampleTransaction())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != saved.ID+":upsert" {
		t.Errorf("published = %v, want one upsert for %s", pub.published, saved.ID)
	}
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	svc, userID := newTestService(t, &recordingPublisher{fail: true})

	saved, err := svc.Create(context.Background(), userID, sampleTransaction())
	if err != nil {
		t.Fatalf("Create() should not fail on publish error, got %v", err)
	}
	if saved.ID == "" {
		t.Error("Create() should still return the saved transaction")
	}
}

func TestCreateWithoutPublisher(t *testing.T) {
	svc, userID := newTestService(t, nil)

	if _, err := svc.Create(context.Background(), userID, sampleTransaction()); err != nil {
		t.Fatalf("Create() without publisher error = %v", err)
	}
}

func TestUpdateAndDeletePublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc, userID := newTestService(t, pub)
	ctx := context.Background()

	saved, err := svc.Create(ctx, userID, sampleTransaction())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	saved.Title = "Espresso"
	if _, err := svc.Update(ctx, userID, saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := svc.Delete(ctx, userID, saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []string{saved.ID + ":upsert", saved.ID + ":upsert", saved.ID + ":delete"}
	if len(pub.published) != len(want) {
		t.Fatalf("published = %v, want %v", pub.published, want)
	}
	for i := range want {
		if pub.published[i] != want[i] {
			t.Errorf("published[%d] = %v, want %v", i, pub.published[i], want[i])
		}
	}
}

func TestDeleteMissingTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	svc, userID := newTestService(t, pub)

	err := svc.Delete(context.Background(), userID, "no-such-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("published = %v, want none for a failed delete", pub.published)
	}
}
