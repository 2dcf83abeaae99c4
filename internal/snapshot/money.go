package snapshot

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders d as dollars with two decimals and thousands
// separators, e.g. $1,234.50 or -$12.00.
func FormatCurrency(d decimal.Decimal) string {
	rounded := d.Round(2)
	whole, cents, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}
