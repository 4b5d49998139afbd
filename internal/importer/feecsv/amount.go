package feecsv

import (
	"strings"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

// parseAmount accepts "1234.56", "1,234.56" and "1.234,56". A lone comma is a
// decimal separator only in semicolon-delimited files, where it cannot be a
// field separator.
func parseAmount(s string, delim rune) (money.Amount, error) {
	clean := strings.NewReplacer(" ", "", " ", "").Replace(s)

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	if lastComma > lastDot && (lastDot >= 0 || delim == ';') {
		return money.ParseEuropean(clean)
	}

	return money.Parse(clean)
}
