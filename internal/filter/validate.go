package filter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bix-dev/bixdash/internal/id"
	"github.com/bix-dev/bixdash/internal/model"
)

// ValidationError describes a single malformed transaction.
type ValidationError struct {
	Key         string // row key, see id.FormatRowKey
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %s [%s]: %s", e.Key, e.Field, e.Description)
}

// Validate checks every transaction of ts and returns the problems
// found, in collection order.
func Validate(ts []model.Transaction) []ValidationError {
	var errs []ValidationError
	report := func(i int, t model.Transaction, field, format string, args ...any) {
		errs = append(errs, ValidationError{
			Key:         id.FormatRowKey(t.Date, i),
			Field:       field,
			Description: fmt.Sprintf(format, args...),
		})
	}

	for i, t := range ts {
		if t.Date <= 0 {
			report(i, t, "date", "date %d is not a positive timestamp", t.Date)
		}

		// Amounts are whole cents.
		d, err := decimal.NewFromString(t.Amount)
		switch {
		case err != nil:
			report(i, t, "amount", "amount %q is not a number", t.Amount)
		case !d.Equal(d.Truncate(0)):
			report(i, t, "amount", "amount %s has a fractional cent", t.Amount)
		case d.IsNegative():
			report(i, t, "amount", "amount %s is negative", t.Amount)
		}

		if t.Type != model.TypeDeposit && t.Type != model.TypeWithdraw {
			report(i, t, "transaction_type", "unknown type %q", t.Type)
		}
		if t.Currency != model.CurrencyBRL {
			report(i, t, "currency", "unknown currency %q", t.Currency)
		}

		for _, f := range []model.Field{model.FieldAccount, model.FieldIndustry, model.FieldState} {
			if t.Value(f) == "" {
				report(i, t, string(f), "%s is empty", f)
			}
		}
	}
	return errs
}
