package fee

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

// FeeType is the category a fee record is charged under.
type FeeType string

const (
	FeeTypeTuition       FeeType = "tuition"
	FeeTypeExam          FeeType = "exam"
	FeeTypeLibrary       FeeType = "library"
	FeeTypeTransport     FeeType = "transport"
	FeeTypeHostel        FeeType = "hostel"
	FeeTypeMiscellaneous FeeType = "miscellaneous"
)

var FeeTypes = []FeeType{
	FeeTypeTuition, FeeTypeExam, FeeTypeLibrary, FeeTypeTransport, FeeTypeHostel, FeeTypeMiscellaneous,
}

func (t FeeType) Valid() bool {
	for _, ft := range FeeTypes {
		if ft == t {
			return true
		}
	}

	return false
}

// PaymentMode is how a payment was tendered.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
)

var PaymentModes = []PaymentMode{
	PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeBankTransfer, PaymentModeCheque,
}

func (m PaymentMode) Valid() bool {
	for _, pm := range PaymentModes {
		if pm == m {
			return true
		}
	}

	return false
}

// Status is derived from the paid and total amounts and is never stored as input.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// DeriveStatus maps (paid, total) to a status. A zero total counts as paid.
func DeriveStatus(paid, total money.Amount) Status {
	switch {
	case paid >= total:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}

// Record is a single fee obligation of a student and its payment history.
type Record struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	AcademicYear string
	FeeType      FeeType
	TotalAmount  money.Amount
	PaidAmount   money.Amount
	DueDate      time.Time
	Payments     []Payment // append-only, oldest first
	Remarks      string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (r *Record) Due() money.Amount {
	return r.TotalAmount - r.PaidAmount
}

func (r *Record) Status() Status {
	return DeriveStatus(r.PaidAmount, r.TotalAmount)
}

// Payment is one entry of a record's payment history.
type Payment struct {
	ID            uuid.UUID
	Amount        money.Amount
	PaidAt        time.Time
	Mode          PaymentMode
	TransactionID string
	CollectedBy   string
	Remarks       string
}

// CollectedPayment is a payment enriched with its record's context, as used
// by the collection report.
type CollectedPayment struct {
	Payment
	RecordID     uuid.UUID
	StudentID    uuid.UUID
	FeeType      FeeType
	AcademicYear string
}

// PaymentCollected is published after a payment has been committed.
type PaymentCollected struct {
	RecordID      uuid.UUID    `json:"recordId"`
	StudentID     uuid.UUID    `json:"studentId"`
	PaymentID     uuid.UUID    `json:"paymentId"`
	FeeType       FeeType      `json:"feeType"`
	AcademicYear  string       `json:"academicYear"`
	Amount        money.Amount `json:"amount"`
	PaidAmount    money.Amount `json:"paidAmount"`
	DueAmount     money.Amount `json:"dueAmount"`
	Status        Status       `json:"status"`
	Mode          PaymentMode  `json:"paymentMode"`
	TransactionID string       `json:"transactionId,omitempty"`
	PaidAt        time.Time    `json:"paymentDate"`
}
