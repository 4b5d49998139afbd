package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value in minor units (e.g. paise). 150050 is 1500.50.
type Amount int64

const scale = 2

var (
	ErrPrecision  = errors.New("amount has more than two decimal places")
	ErrOutOfRange = errors.New("amount is out of range")
)

// FromDecimal converts a decimal into minor units. Values with sub-minor-unit
// precision are rejected rather than rounded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Round(scale)) {
		return 0, fmt.Errorf("%s: %w", d.String(), ErrPrecision)
	}

	minor := d.Shift(scale)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%s: %w", d.String(), ErrOutOfRange)
	}

	return Amount(minor.IntPart()), nil
}

// Parse reads a dot-decimal amount such as "1500", "1500.5" or "1,500.50".
func Parse(s string) (Amount, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return FromDecimal(d)
}

// ParseEuropean reads an amount written with "." grouping and "," decimals,
// e.g. "1.234,56".
func ParseEuropean(s string) (Amount, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return FromDecimal(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -scale)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(scale)
}

// MarshalJSON writes the amount as a plain JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number (or a quoted number).
func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("decoding amount: %w", err)
	}

	v, err := FromDecimal(d)
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// Formatter renders amounts for people, with currency symbol and grouping.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func NewFormatter(code string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}

	return &Formatter{
		unit:    unit,
		printer: message.NewPrinter(language.English),
	}, nil
}

func (f *Formatter) Format(a Amount) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(a.Decimal().InexactFloat64())))
}
