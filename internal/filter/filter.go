// Package filter narrows and aggregates transaction collections. Every
// function here is pure; persistence of the filter state lives in
// persist.go and goes through the cache store.
package filter

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bix-dev/bixdash/internal/model"
)

// Apply returns the transactions matching every active constraint of f.
// Date bounds are inclusive. A nil constraint matches everything, so
// empty filters return ts itself.
func Apply(ts []model.Transaction, f model.TransactionFilters) []model.Transaction {
	if f.IsEmpty() {
		return ts
	}
	out := make([]model.Transaction, 0, len(ts))
	for _, t := range ts {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Transaction, f model.TransactionFilters) bool {
	if f.DateRange.From != nil && t.Date < f.DateRange.From.UnixMilli() {
		return false
	}
	if f.DateRange.To != nil && t.Date > f.DateRange.To.UnixMilli() {
		return false
	}
	if f.Account != nil && t.Account != *f.Account {
		return false
	}
	if f.Industry != nil && t.Industry != *f.Industry {
		return false
	}
	if f.State != nil && t.State != *f.State {
		return false
	}
	return true
}

// Summarize totals ts. Transactions dated on or after local midnight of
// now count as pending.
func Summarize(ts []model.Transaction, now time.Time) (model.TransactionSummary, error) {
	revenue := decimal.Zero
	expenses := decimal.Zero
	pending := 0
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()

	for i, t := range ts {
		cents, err := t.Cents()
		if err != nil {
			return model.TransactionSummary{}, fmt.Errorf("summarizing transaction %d: %w", i, err)
		}
		switch t.Type {
		case model.TypeDeposit:
			revenue = revenue.Add(cents)
		case model.TypeWithdraw:
			expenses = expenses.Add(cents)
		}
		if t.Date >= midnight {
			pending++
		}
	}

	return model.TransactionSummary{
		TotalBalance:        revenue.Sub(expenses),
		TotalRevenue:        revenue,
		TotalExpenses:       expenses,
		PendingTransactions: pending,
	}, nil
}

// DistinctValues returns the values of field across ts, deduplicated and
// sorted ascending. The result is never nil.
func DistinctValues(ts []model.Transaction, field model.Field) []string {
	seen := make(map[string]struct{}, len(ts))
	out := []string{}
	for _, t := range ts {
		v := t.Value(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
