package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatCurrency renders an amount in cents as US dollars, e.g.
// "$1,234.56" or "-$55.65".
func FormatCurrency(cents decimal.Decimal) string {
	sign := ""
	if cents.IsNegative() {
		sign = "-"
		cents = cents.Neg()
	}
	s := cents.Div(hundred).StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	return sign + "$" + group(whole) + "." + frac
}

// FormatAmount is FormatCurrency for an amount in its text form. Text
// that does not parse renders as "$0.00".
func FormatAmount(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return FormatCurrency(decimal.Zero)
	}
	return FormatCurrency(d.Truncate(0))
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate renders a Unix millisecond timestamp as M/D/YYYY in loc.
func FormatDate(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("1/2/2006")
}
