package fee

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

var (
	ErrNotFound            = errors.New("fee record not found")
	ErrInvalidFeeType      = errors.New("invalid fee type")
	ErrInvalidPaymentMode  = errors.New("invalid payment mode")
	ErrInvalidAcademicYear = errors.New("academic year is required")
	ErrInvalidDueDate      = errors.New("due date is required")
)

// InvalidAmountError reports an amount that can never be accepted,
// such as a non-positive payment or a negative total.
type InvalidAmountError struct {
	Amount money.Amount
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: %s", e.Amount, e.Reason)
}

// OverpaymentError reports a payment larger than the outstanding balance.
type OverpaymentError struct {
	Amount money.Amount
	Due    money.Amount
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount %s exceeds due amount %s", e.Amount, e.Due)
}

// RowError is a rejected line of a batch import.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportError carries every rejected line of a batch; nothing was written.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import rejected: %d invalid rows", len(e.Rows))
}
