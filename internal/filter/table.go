package filter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bix-dev/bixdash/internal/model"
)

// SortKey names a column the transaction table can be ordered by.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortAmount   SortKey = "amount"
	SortType     SortKey = SortKey(model.FieldType)
	SortCurrency SortKey = SortKey(model.FieldCurrency)
	SortAccount  SortKey = SortKey(model.FieldAccount)
	SortIndustry SortKey = SortKey(model.FieldIndustry)
	SortState    SortKey = SortKey(model.FieldState)
)

// ParseSortKey validates s. The empty string selects SortDate.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDate, nil
	}
	switch k := SortKey(s); k {
	case SortDate, SortAmount, SortType, SortCurrency, SortAccount, SortIndustry, SortState:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Direction orders a sort.
type Direction int

const (
	Desc Direction = iota
	Asc
)

// Sort returns a sorted copy of ts. Dates and amounts compare
// numerically, everything else as text. Ties keep their input order.
func Sort(ts []model.Transaction, key SortKey, dir Direction) []model.Transaction {
	out := slices.Clone(ts)
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		c := compare(a, b, key)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func compare(a, b model.Transaction, key SortKey) int {
	switch key {
	case SortDate, "":
		return cmp.Compare(a.Date, b.Date)
	case SortAmount:
		// Unparseable amounts sort as zero.
		ac, _ := a.Cents()
		bc, _ := b.Cents()
		return ac.Cmp(bc)
	default:
		return cmp.Compare(a.Value(model.Field(key)), b.Value(model.Field(key)))
	}
}

// DefaultPageSize is the number of table rows per page.
const DefaultPageSize = 10

// Page is one window of the transaction table.
type Page struct {
	Items      []model.Transaction
	Number     int // 1-based, after clamping
	TotalPages int
	Total      int
	Offset     int // index of Items[0] within the full collection
}

// Paginate returns page number of ts. The page is clamped into
// [1, TotalPages]; a non-positive size selects DefaultPageSize.
func Paginate(ts []model.Transaction, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(ts)
	pages := (total + size - 1) / size
	number = max(1, min(pages, number))

	start := min((number-1)*size, total)
	end := min(start+size, total)
	return Page{
		Items:      ts[start:end],
		Number:     number,
		TotalPages: pages,
		Total:      total,
		Offset:     start,
	}
}
