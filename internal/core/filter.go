package core

import (
	"sort"
	"strings"
)

// FilterTransactions returns the transactions visible under the given date
// interval and search query, newest first.
//
// A transaction is kept when its day-truncated date falls inside the interval
// AND, if the query is non-empty, the query is a case-insensitive substring of
// the title, the category name (uncategorized never matches), or the decimal
// string form of the amount. Ties on the same instant keep their input order.
func FilterTransactions(txs []Transaction, interval Interval, query string) []Transaction {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !interval.Contains(tx.TransactionDate) {
			continue
		}
		if query != "" && !matchesQuery(tx, query) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out
}

func matchesQuery(tx Transaction, query string) bool {
	if strings.Contains(strings.ToLower(tx.Title), query) {
		return true
	}
	if tx.Category != nil && strings.Contains(strings.ToLower(tx.Category.Name), query) {
		return true
	}
	return strings.Contains(tx.Amount.SearchText(), query)
}
