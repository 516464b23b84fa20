package model

import "github.com/shopspring/decimal"

// TransactionSummary is derived from a filtered transaction set and is
// never persisted. Money fields hold integer cents.
type TransactionSummary struct {
	TotalBalance        decimal.Decimal
	TotalRevenue        decimal.Decimal
	TotalExpenses       decimal.Decimal
	PendingTransactions int
}
