package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
)

// Currency is the ISO code (lower-case) of a transaction amount.
type Currency string

const CurrencyBRL Currency = "brl"

// Transaction is one record of transactions.json. Records have no id;
// identity is their position in the collection.
type Transaction struct {
	Date     int64           `json:"date"`   // Unix milliseconds
	Amount   string          `json:"amount"` // integer cents, as text
	Type     TransactionType `json:"transaction_type"`
	Currency Currency        `json:"currency"`
	Account  string          `json:"account"`
	Industry string          `json:"industry"`
	State    string          `json:"state"`
}

// Time returns Date as a time.Time in loc.
func (t Transaction) Time(loc *time.Location) time.Time {
	return time.UnixMilli(t.Date).In(loc)
}

// Cents parses Amount. Amounts are minor units, so the result is always
// an integer value.
func (t Transaction) Cents() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", t.Amount, err)
	}
	return d.Truncate(0), nil
}

// Field names a string-valued Transaction attribute that can be listed
// or filtered on.
type Field string

const (
	FieldAccount  Field = "account"
	FieldIndustry Field = "industry"
	FieldState    Field = "state"
	FieldType     Field = "transaction_type"
	FieldCurrency Field = "currency"
)

// Value returns the attribute named by f, or "" for an unknown field.
func (t Transaction) Value(f Field) string {
	switch f {
	case FieldAccount:
		return t.Account
	case FieldIndustry:
		return t.Industry
	case FieldState:
		return t.State
	case FieldType:
		return string(t.Type)
	case FieldCurrency:
		return string(t.Currency)
	default:
		return ""
	}
}
