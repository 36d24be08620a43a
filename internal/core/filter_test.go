package core

import (
	"testing"
	"time"
)

func sampleTransactions() []Transaction {
	groceries := &Category{ID: "c1", Name: "Groceries", Type: Expense, Icon: "🛒", Color: "#4ADE80"}
	salary := &Category{ID: "c2", Name: "Salary", Type: Income, Icon: "💼", Color: "#60A5FA"}
	return []Transaction{
		{ID: "t1", Title: "Supermarket", Amount: Money{Cents: 10000}, Type: Expense, TransactionDate: date(2024, time.January, 5), Category: groceries},
		{ID: "t2", Title: "Paycheck", Amount: Money{Cents: 50000}, Type: Income, TransactionDate: date(2024, time.January, 10), Category: salary},
		{ID: "t3", Title: "Pharmacy", Amount: Money{Cents: 5000}, Type: Expense, TransactionDate: date(2024, time.February, 1), Category: nil},
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Transaction, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	}
}

func TestFilterTransactionsUnboundedNoQuery(t *testing.T) {
	txs := sampleTransactions()
	got := FilterTransactions(txs, Unbounded(), "")
	// Everything survives, reordered newest first.
	assertIDs(t, got, "t3", "t2", "t1")
	// Input untouched.
	if txs[0].ID != "t1" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestFilterTransactionsMonthRange(t *testing.T) {
	ref := date(2024, time.January, 20)
	iv, err := ResolveDateRange(RangeMonth, time.Time{}, time.Time{}, ref)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := FilterTransactions(sampleTransactions(), iv, "")
	assertIDs(t, got, "t2", "t1")

	sum := Summarize(got)
	if sum.TotalExpenses.Cents != 10000 || sum.TotalIncome.Cents != 50000 ||
		sum.NetSavings.Cents != 40000 || sum.Count != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestFilterTransactionsSearch(t *testing.T) {
	txs := sampleTransactions()
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"title substring, case-insensitive", "superm", []string{"t1"}},
		{"category name", "salary", []string{"t2"}},
		{"amount decimal string", "500", []string{"t2"}},
		// Matches both amounts; results still come back newest first.
		{"amount without trailing zeros", "50", []string{"t3", "t2"}},
		{"no match", "grocery trip", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTransactions(txs, Unbounded(), tc.query)
			assertIDs(t, got, tc.want...)
		})
	}
}

func TestFilterTransactionsNilCategorySearch(t *testing.T) {
	// An uncategorized transaction contributes no searchable category text:
	// it neither matches nor panics.
	txs := []Transaction{
		{ID: "t1", Title: "Cash withdrawal", Amount: Money{Cents: 2000}, Type: Expense, TransactionDate: date(2024, time.March, 1)},
	}
	if got := FilterTransactions(txs, Unbounded(), "grocery"); len(got) != 0 {
		t.Fatalf("expected no match, got %v", ids(got))
	}
}

func TestFilterTransactionsConjunctive(t *testing.T) {
	// Date AND search must both pass.
	iv := Interval{Start: date(2024, time.January, 1), End: date(2024, time.January, 31)}
	got := FilterTransactions(sampleTransactions(), iv, "pharmacy")
	if len(got) != 0 {
		t.Fatalf("pharmacy is outside January, expected empty result")
	}
}

func TestFilterTransactionsIdempotent(t *testing.T) {
	iv := Interval{Start: date(2024, time.January, 1), End: date(2024, time.January, 31)}
	once := FilterTransactions(sampleTransactions(), iv, "")
	twice := FilterTransactions(once, Unbounded(), "")
	assertIDs(t, twice, ids(once)...)
}

func TestFilterTransactionsStableTies(t *testing.T) {
	same := date(2024, time.May, 5)
	txs := []Transaction{
		{ID: "a", Title: "first", Amount: Money{Cents: 100}, Type: Expense, TransactionDate: same},
		{ID: "b", Title: "second", Amount: Money{Cents: 200}, Type: Expense, TransactionDate: same},
		{ID: "c", Title: "third", Amount: Money{Cents: 300}, Type: Expense, TransactionDate: same},
	}
	got := FilterTransactions(txs, Unbounded(), "")
	assertIDs(t, got, "a", "b", "c")
}

func TestFilterTransactionsEmptyInput(t *testing.T) {
	got := FilterTransactions(nil, Unbounded(), "anything")
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}
