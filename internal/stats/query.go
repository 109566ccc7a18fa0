package stats

import (
	"sort"
	"strings"
	"time"

	"hamanets/internal/core"
)

const dayKeyLayout = "2006-01-02"

// Query narrows a transaction list. Zero fields match everything.
type Query struct {
	Text       string
	Type       core.TransactionType
	CategoryID string
}

// Filter returns the transactions matching q, preserving order. Text
// matches case-insensitively against the description or the resolved
// category name.
func Filter(txns []core.Transaction, categories []core.Category, q Query) []core.Transaction {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]core.Transaction, 0)
	for _, tx := range txns {
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if q.CategoryID != "" && tx.CategoryID != q.CategoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(tx.Description), needle) &&
			!strings.Contains(strings.ToLower(names[tx.CategoryID]), needle) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// GroupByDay buckets transactions by calendar date in loc, newest day
// first. Transactions keep their relative order inside a day.
func GroupByDay(txns []core.Transaction, loc *time.Location) []core.DayGroup {
	if loc == nil {
		loc = time.Local
	}
	index := make(map[string]int)
	groups := make([]core.DayGroup, 0)
	for _, tx := range txns {
		key := tx.Date.In(loc).Format(dayKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, core.DayGroup{Date: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
		groups[i].Net = groups[i].Net.Add(tx.Signed())
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

// Recent returns the first n transactions of a newest-first list.
func Recent(txns []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if len(txns) > n {
		txns = txns[:n]
	}
	return append([]core.Transaction{}, txns...)
}
