// Package export writes and reads transactions as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bix-dev/bixdash/internal/model"
)

// Header is the CSV header of an export.
const Header = "date,amount,transaction_type,currency,account,industry,state"

// Dates keep millisecond precision so an export reads back unchanged.
const dateFormat = "2006-01-02T15:04:05.000Z07:00"

const (
	numFields   = 7
	colDate     = 0
	colAmount   = 1
	colType     = 2
	colCurrency = 3
	colAccount  = 4
	colIndustry = 5
	colState    = 6
)

// ReadTransactions reads all transactions from an export.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var ts []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// WriteTransactions writes ts, header first.
func WriteTransactions(w io.Writer, ts []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range ts {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.Time(time.UTC).Format(dateFormat)
	row[colAmount] = t.Amount
	row[colType] = string(t.Type)
	row[colCurrency] = string(t.Currency)
	row[colAccount] = t.Account
	row[colIndustry] = t.Industry
	row[colState] = t.State
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	if _, err := decimal.NewFromString(record[colAmount]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		Date:     date.UnixMilli(),
		Amount:   record[colAmount],
		Type:     model.TransactionType(record[colType]),
		Currency: model.Currency(record[colCurrency]),
		Account:  record[colAccount],
		Industry: record[colIndustry],
		State:    record[colState],
	}, nil
}
