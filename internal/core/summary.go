package core

// Summary holds exact totals over a transaction list.
type Summary struct {
	TotalExpenses Money
	TotalIncome   Money
	NetSavings    Money
	Count         int
}

// Summarize reduces a transaction list to totals. The sign of each
// contribution comes from the transaction type, never from the amount.
// An empty list yields all-zero totals.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Type {
		case Expense:
			s.TotalExpenses.Cents += tx.Amount.Cents
		case Income:
			s.TotalIncome.Cents += tx.Amount.Cents
		}
	}
	s.NetSavings.Cents = s.TotalIncome.Cents - s.TotalExpenses.Cents
	s.Count = len(txs)
	return s
}

// SumBalances adds up signed account balances; debt subtracts from the total.
func SumBalances(accounts []Account) Money {
	var total Money
	for _, a := range accounts {
		total.Cents += a.Balance.Cents
	}
	return total
}
