package filter

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bix-dev/bixdash/internal/model"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// MonthPoint is one bar of the revenue and expenses chart.
type MonthPoint struct {
	Month    string // YYYY-MM
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
}

// MonthlySeries groups ts by calendar month in loc, oldest month first.
func MonthlySeries(ts []model.Transaction, loc *time.Location) ([]MonthPoint, error) {
	byMonth := make(map[string]*MonthPoint)
	for i, t := range ts {
		cents, err := t.Cents()
		if err != nil {
			return nil, fmt.Errorf("grouping transaction %d: %w", i, err)
		}
		key := t.Time(loc).Format(monthLayout)
		p, ok := byMonth[key]
		if !ok {
			p = &MonthPoint{Month: key, Revenue: decimal.Zero, Expenses: decimal.Zero}
			byMonth[key] = p
		}
		if t.Type == model.TypeDeposit {
			p.Revenue = p.Revenue.Add(cents)
		} else {
			p.Expenses = p.Expenses.Add(cents)
		}
	}

	out := make([]MonthPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b MonthPoint) int {
		switch {
		case a.Month < b.Month:
			return -1
		case a.Month > b.Month:
			return 1
		}
		return 0
	})
	return out, nil
}

// BalancePoint is the running balance at the end of one day.
type BalancePoint struct {
	Day     string // YYYY-MM-DD
	Balance decimal.Decimal
}

// DailyBalance replays ts in date order and records the running balance
// after each day's last transaction. Days are taken in loc.
func DailyBalance(ts []model.Transaction, loc *time.Location) ([]BalancePoint, error) {
	ordered := slices.Clone(ts)
	slices.SortStableFunc(ordered, func(a, b model.Transaction) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})

	var out []BalancePoint
	balance := decimal.Zero
	for i, t := range ordered {
		cents, err := t.Cents()
		if err != nil {
			return nil, fmt.Errorf("replaying transaction %d: %w", i, err)
		}
		if t.Type == model.TypeDeposit {
			balance = balance.Add(cents)
		} else {
			balance = balance.Sub(cents)
		}

		day := t.Time(loc).Format(dayLayout)
		if n := len(out); n > 0 && out[n-1].Day == day {
			out[n-1].Balance = balance
			continue
		}
		out = append(out, BalancePoint{Day: day, Balance: balance})
	}
	return out, nil
}
