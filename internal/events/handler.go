package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/notify"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

//go:generate mockgen -source=handler.go -destination=handler_mock.go -package=events
type FeeSummarizer interface {
	StudentSummary(ctx context.Context, studentID uuid.UUID) (*fee.Summary, error)
}

type StudentDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*student.Student, error)
	UpdateFeeStatus(ctx context.Context, id uuid.UUID, status student.FeeStatus) error
}

type ReceiptSender interface {
	SendReceipt(ctx context.Context, to string, r notify.Receipt) error
}

// Handler applies the side effects of a collected payment. Every step is
// safe to repeat, so a retried task converges on the same state.
type Handler struct {
	fees     FeeSummarizer
	students StudentDirectory
	receipts ReceiptSender
}

// NewHandler builds a handler; receipts may be nil to skip mailing.
func NewHandler(fees FeeSummarizer, students StudentDirectory, receipts ReceiptSender) *Handler {
	return &Handler{fees: fees, students: students, receipts: receipts}
}

func (h *Handler) Handle(ctx context.Context, e fee.PaymentCollected) error {
	sum, err := h.fees.StudentSummary(ctx, e.StudentID)
	if err != nil {
		return fmt.Errorf("summarising student fees: %w", err)
	}

	status := student.FeeStatus(sum.Status())
	if err := h.students.UpdateFeeStatus(ctx, e.StudentID, status); err != nil {
		return fmt.Errorf("updating student fee status: %w", err)
	}

	zap.L().Info("student fee status refreshed",
		zap.Stringer("student_id", e.StudentID),
		zap.Stringer("payment_id", e.PaymentID),
		zap.String("status", string(status)),
	)

	if h.receipts == nil {
		return nil
	}

	st, err := h.students.Get(ctx, e.StudentID)
	if err != nil {
		return fmt.Errorf("getting student: %w", err)
	}

	if st.Email == "" {
		return nil
	}

	return h.receipts.SendReceipt(ctx, st.Email, notify.Receipt{
		StudentName:   st.Name,
		RollNumber:    st.RollNumber,
		FeeType:       string(e.FeeType),
		AcademicYear:  e.AcademicYear,
		Amount:        e.Amount,
		PaidAmount:    e.PaidAmount,
		DueAmount:     e.DueAmount,
		Status:        string(e.Status),
		Mode:          string(e.Mode),
		TransactionID: e.TransactionID,
		PaidAt:        e.PaidAt,
	})
}

// ProcessTask implements asynq.Handler. Undecodable payloads are not retried.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var e fee.PaymentCollected
	if err := json.Unmarshal(t.Payload(), &e); err != nil {
		return fmt.Errorf("decoding %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	return h.Handle(ctx, e)
}
