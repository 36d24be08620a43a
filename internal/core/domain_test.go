package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Title:           "Coffee",
		Amount:          Money{Cents: 350},
		Type:            Expense,
		TransactionDate: date(2024, time.January, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Title: "", Amount: Money{Cents: 1}, Type: Expense, TransactionDate: date(2024, time.January, 1)},
		{Title: "a", Amount: Money{Cents: 0}, Type: Expense, TransactionDate: date(2024, time.January, 1)},
		{Title: "a", Amount: Money{Cents: -1}, Type: Expense, TransactionDate: date(2024, time.January, 1)},
		{Title: "a", Amount: Money{Cents: 1}, Type: "transfer", TransactionDate: date(2024, time.January, 1)},
		{Title: "a", Amount: Money{Cents: 1}, Type: Income, TransactionDate: time.Time{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionCategoryName(t *testing.T) {
	tx := Transaction{Title: "a"}
	if got := tx.CategoryName(); got != UncategorizedLabel {
		t.Fatalf("got %q, want %q", got, UncategorizedLabel)
	}
	tx.Category = &Category{Name: "Food"}
	if got := tx.CategoryName(); got != "Food" {
		t.Fatalf("got %q, want Food", got)
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "Main checking", Type: AccountBank, Balance: Money{Cents: -500}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok (negative balance is debt, not invalid), got %v", err)
	}
	if err := (Account{Name: "", Type: AccountBank}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Account{Name: "x", Type: "wallet"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown account type")
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Groceries", Type: Expense, Icon: CategoryIcons[0], Color: CategoryColors[0]}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{Name: "", Type: Expense, Icon: CategoryIcons[0], Color: CategoryColors[0]},
		{Name: "a", Type: "both", Icon: CategoryIcons[0], Color: CategoryColors[0]},
		{Name: "a", Type: Expense, Icon: "🚀", Color: CategoryColors[0]},
		{Name: "a", Type: Expense, Icon: CategoryIcons[0], Color: "#123456"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
