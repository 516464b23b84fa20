package filter

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/kv"
	"github.com/bix-dev/bixdash/internal/model"
)

var now = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func fixture() []model.Transaction {
	return []model.Transaction{
		{Date: 1682698259192, Amount: "5565", Type: model.TypeDeposit, Currency: model.CurrencyBRL, Account: "Baker Hughes", Industry: "Oil and Gas Equipment", State: "TX"},
		{Date: 1673216606378, Amount: "3716", Type: model.TypeWithdraw, Currency: model.CurrencyBRL, Account: "General Mills", Industry: "Food Consumer Products", State: "MN"},
		{Date: now.Add(-time.Hour).UnixMilli(), Amount: "10000", Type: model.TypeDeposit, Currency: model.CurrencyBRL, Account: "Test Company", Industry: "Technology", State: "CA"},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestApply_NoFiltersIsIdentity(t *testing.T) {
	ts := fixture()
	assert.Equal(t, ts, Apply(ts, model.TransactionFilters{}))
	assert.Empty(t, Apply(nil, model.TransactionFilters{}))
}

func TestApply_Fields(t *testing.T) {
	tests := []struct {
		name    string
		filters model.TransactionFilters
		want    []string
	}{
		{"account", model.TransactionFilters{Account: model.StringPtr("Baker Hughes")}, []string{"Baker Hughes"}},
		{"industry", model.TransactionFilters{Industry: model.StringPtr("Technology")}, []string{"Test Company"}},
		{"state", model.TransactionFilters{State: model.StringPtr("TX")}, []string{"Baker Hughes"}},
		{"combined", model.TransactionFilters{State: model.StringPtr("TX"), Industry: model.StringPtr("Oil and Gas Equipment")}, []string{"Baker Hughes"}},
		{"conflicting", model.TransactionFilters{State: model.StringPtr("TX"), Industry: model.StringPtr("Technology")}, nil},
		{"no match", model.TransactionFilters{Account: model.StringPtr("Nobody")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, txn := range Apply(fixture(), tt.filters) {
				got = append(got, txn.Account)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_DateRangeInclusive(t *testing.T) {
	ts := fixture()
	exact := time.UnixMilli(ts[0].Date)

	got := Apply(ts, model.TransactionFilters{DateRange: model.DateRange{From: timePtr(exact), To: timePtr(exact)}})
	require.Len(t, got, 1)
	assert.Equal(t, "Baker Hughes", got[0].Account)

	in2023 := model.TransactionFilters{DateRange: model.DateRange{
		From: timePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		To:   timePtr(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
	}}
	assert.Len(t, Apply(ts, in2023), 2)

	onlyFrom := model.TransactionFilters{DateRange: model.DateRange{From: timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}}
	got = Apply(ts, onlyFrom)
	require.Len(t, got, 1)
	assert.Equal(t, "Test Company", got[0].Account)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(fixture(), now)
	require.NoError(t, err)
	assert.True(t, dec("15565").Equal(s.TotalRevenue), s.TotalRevenue.String())
	assert.True(t, dec("3716").Equal(s.TotalExpenses), s.TotalExpenses.String())
	assert.True(t, dec("11849").Equal(s.TotalBalance), s.TotalBalance.String())
	assert.Equal(t, 1, s.PendingTransactions)
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(nil, now)
	require.NoError(t, err)
	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.TotalBalance.IsZero())
	assert.Zero(t, s.PendingTransactions)
}

func TestSummarize_BalanceIsRevenueMinusExpenses(t *testing.T) {
	sets := [][]model.Transaction{
		fixture(),
		fixture()[:1],
		fixture()[1:2],
		{{Amount: "99999999999999999999", Type: model.TypeWithdraw}, {Amount: "1", Type: model.TypeDeposit}},
	}
	for _, ts := range sets {
		s, err := Summarize(ts, now)
		require.NoError(t, err)
		assert.True(t, s.TotalBalance.Equal(s.TotalRevenue.Sub(s.TotalExpenses)))
	}
}

func TestSummarize_PendingBoundary(t *testing.T) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	ts := []model.Transaction{
		{Date: midnight.UnixMilli(), Amount: "1", Type: model.TypeDeposit},
		{Date: midnight.UnixMilli() - 1, Amount: "1", Type: model.TypeDeposit},
	}
	s, err := Summarize(ts, now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PendingTransactions)
}

func TestSummarize_BadAmount(t *testing.T) {
	_, err := Summarize([]model.Transaction{{Amount: "abc", Type: model.TypeDeposit}}, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarizing transaction 0")
}

func TestDistinctValues(t *testing.T) {
	ts := append(fixture(), fixture()...)
	assert.Equal(t, []string{"CA", "MN", "TX"}, DistinctValues(ts, model.FieldState))
	assert.Equal(t, []string{"Baker Hughes", "General Mills", "Test Company"}, DistinctValues(ts, model.FieldAccount))
	assert.Equal(t, []string{"deposit", "withdraw"}, DistinctValues(ts, model.FieldType))

	empty := DistinctValues(nil, model.FieldAccount)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestFiltersPersistence(t *testing.T) {
	clk := clock.Fake(now)
	store := cache.NewStore(kv.NewMemory(), clk, zerolog.Nop())

	assert.Nil(t, LoadFilters(store))

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	f := model.TransactionFilters{DateRange: model.DateRange{From: &from}, State: model.StringPtr("TX")}
	SaveFilters(store, f)

	raw, ok := store.ReadRaw(cache.Filters)
	require.True(t, ok)
	assert.Contains(t, raw, `"version":"1.0"`)
	assert.Contains(t, raw, `"from":"2023-01-01T00:00:00Z"`)

	got := LoadFilters(store)
	require.NotNil(t, got)
	require.NotNil(t, got.DateRange.From)
	assert.True(t, from.Equal(*got.DateRange.From))
	assert.Nil(t, got.DateRange.To)
	assert.Equal(t, "TX", *got.State)

	clk.Advance(24 * time.Hour)
	assert.Nil(t, LoadFilters(store))
	_, ok = store.ReadRaw(cache.Filters)
	assert.False(t, ok)

	SaveFilters(store, f)
	ClearFilters(store)
	assert.Nil(t, LoadFilters(store))
}
