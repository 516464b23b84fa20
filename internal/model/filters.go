package model

import "time"

// DateRange bounds transactions by date, inclusive at both ends. A nil
// bound is open.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// TransactionFilters is the dashboard's filter state. A nil field does
// not constrain anything.
type TransactionFilters struct {
	DateRange DateRange `json:"dateRange"`
	Account   *string   `json:"account"`
	Industry  *string   `json:"industry"`
	State     *string   `json:"state"`
}

// IsEmpty reports whether no constraint is active.
func (f TransactionFilters) IsEmpty() bool {
	return f.DateRange.From == nil && f.DateRange.To == nil &&
		f.Account == nil && f.Industry == nil && f.State == nil
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
