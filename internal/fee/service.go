package fee

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=fee
type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) error
	CreateRecords(ctx context.Context, recs []*Record) error
	GetRecord(ctx context.Context, id uuid.UUID) (*Record, error)
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, update MetadataUpdate) (*Record, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error

	// AppendPayment adds p to the history and increments the paid amount in
	// one atomic write, guarded by paid + p.Amount <= total. A failed guard
	// yields *OverpaymentError.
	AppendPayment(ctx context.Context, id uuid.UUID, p *Payment) (*Record, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*CollectedPayment, error)
}

type StudentDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*student.Student, error)
	GetByUserID(ctx context.Context, userID string) (*student.Student, error)
	Resolve(ctx context.Context, ref string) (*student.Student, error)
}

type Publisher interface {
	PublishPaymentCollected(ctx context.Context, e PaymentCollected) error
}

type Service struct {
	repo     Repository
	students StudentDirectory
	events   Publisher
}

func NewService(repo Repository, students StudentDirectory, events Publisher) *Service {
	return &Service{repo: repo, students: students, events: events}
}

type CreateParams struct {
	StudentID    uuid.UUID
	AcademicYear string
	FeeType      FeeType
	TotalAmount  money.Amount
	DueDate      time.Time
	Remarks      string
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.AcademicYear) == "" {
		return ErrInvalidAcademicYear
	}

	if !p.FeeType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFeeType, p.FeeType)
	}

	if p.TotalAmount < 0 {
		return &InvalidAmountError{Amount: p.TotalAmount, Reason: "total amount must not be negative"}
	}

	if p.DueDate.IsZero() {
		return ErrInvalidDueDate
	}

	return nil
}

func (p CreateParams) record() *Record {
	return &Record{
		StudentID:    p.StudentID,
		AcademicYear: strings.TrimSpace(p.AcademicYear),
		FeeType:      p.FeeType,
		TotalAmount:  p.TotalAmount,
		DueDate:      p.DueDate,
		Remarks:      p.Remarks,
	}
}

type ListFilter struct {
	Statuses      []Status
	AcademicYear  string
	StudentID     *uuid.UUID
	SortByDueDate bool // due date ascending instead of newest first
}

type MetadataUpdate struct {
	DueDate *time.Time
	Remarks *string
}

type PaymentFilter struct {
	From *time.Time
	To   *time.Time
}

type PaymentParams struct {
	RecordID      uuid.UUID
	Amount        money.Amount
	Mode          PaymentMode
	TransactionID string
	Remarks       string
	CollectedBy   string
}

// Create opens a new fee record for an existing student.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if _, err := s.students.Get(ctx, params.StudentID); err != nil {
		return nil, fmt.Errorf("resolving student %s: %w", params.StudentID, err)
	}

	rec := params.record()
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating fee record: %w", err)
	}

	return rec, nil
}

// CollectPayment applies a payment to a record. The student directory is
// refreshed afterwards through the publisher; a failure there does not undo
// the payment.
func (s *Service) CollectPayment(ctx context.Context, params PaymentParams) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, params.RecordID)
	if err != nil {
		return nil, fmt.Errorf("getting fee record: %w", err)
	}

	if params.Amount <= 0 {
		return nil, &InvalidAmountError{Amount: params.Amount, Reason: "payment amount must be greater than 0"}
	}

	mode := params.Mode
	if mode == "" {
		mode = PaymentModeCash
	}

	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMode, mode)
	}

	if params.Amount > rec.Due() {
		return nil, &OverpaymentError{Amount: params.Amount, Due: rec.Due()}
	}

	p := &Payment{
		ID:            uuid.New(),
		Amount:        params.Amount,
		PaidAt:        time.Now().UTC(),
		Mode:          mode,
		TransactionID: params.TransactionID,
		CollectedBy:   params.CollectedBy,
		Remarks:       params.Remarks,
	}

	updated, err := s.repo.AppendPayment(ctx, rec.ID, p)
	if err != nil {
		return nil, fmt.Errorf("collecting payment: %w", err)
	}

	s.publish(context.WithoutCancel(ctx), updated, p)

	return updated, nil
}

func (s *Service) publish(ctx context.Context, rec *Record, p *Payment) {
	if s.events == nil {
		return
	}

	err := s.events.PublishPaymentCollected(ctx, PaymentCollected{
		RecordID:      rec.ID,
		StudentID:     rec.StudentID,
		PaymentID:     p.ID,
		FeeType:       rec.FeeType,
		AcademicYear:  rec.AcademicYear,
		Amount:        p.Amount,
		PaidAmount:    rec.PaidAmount,
		DueAmount:     rec.Due(),
		Status:        rec.Status(),
		Mode:          p.Mode,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
	})
	if err != nil {
		zap.L().Warn("failed to publish payment collected event",
			zap.Stringer("record_id", rec.ID),
			zap.Stringer("student_id", rec.StudentID),
			zap.Error(err),
		)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return s.repo.ListRecords(ctx, filter)
}

func (s *Service) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Record, error) {
	return s.repo.ListRecords(ctx, ListFilter{StudentID: &studentID})
}

// DueList returns every record with an outstanding balance, earliest due first.
func (s *Service) DueList(ctx context.Context) ([]*Record, error) {
	return s.repo.ListRecords(ctx, ListFilter{
		Statuses:      []Status{StatusPending, StatusPartial},
		SortByDueDate: true,
	})
}

func (s *Service) UpdateMetadata(ctx context.Context, id uuid.UUID, update MetadataUpdate) (*Record, error) {
	if update.DueDate == nil && update.Remarks == nil {
		return s.repo.GetRecord(ctx, id)
	}

	if update.DueDate != nil && update.DueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	return s.repo.UpdateMetadata(ctx, id, update)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRecord(ctx, id)
}

// Summary aggregates a student's records. Sums are recomputed on every read.
type Summary struct {
	Records   []*Record
	TotalFees money.Amount
	TotalPaid money.Amount
	TotalDue  money.Amount
}

// Status applies the record status rule to the aggregate.
func (s *Summary) Status() Status {
	return DeriveStatus(s.TotalPaid, s.TotalFees)
}

func Summarize(recs []*Record) *Summary {
	sum := &Summary{Records: recs}
	for _, r := range recs {
		sum.TotalFees += r.TotalAmount
		sum.TotalPaid += r.PaidAmount
		sum.TotalDue += r.Due()
	}

	return sum
}

func (s *Service) StudentSummary(ctx context.Context, studentID uuid.UUID) (*Summary, error) {
	recs, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("listing student fees: %w", err)
	}

	return Summarize(recs), nil
}

// MySummary resolves the student linked to an identity and summarises their fees.
func (s *Service) MySummary(ctx context.Context, userID string) (*Summary, error) {
	st, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving student for user: %w", err)
	}

	return s.StudentSummary(ctx, st.ID)
}

type ReportFilter struct {
	Start *time.Time
	End   *time.Time
}

type Report struct {
	Payments        []*CollectedPayment
	TotalCollection money.Amount
	Count           int
}

// CollectionReport lists payments oldest first. The window applies only when
// both bounds are set, and both bounds are inclusive.
func (s *Service) CollectionReport(ctx context.Context, filter ReportFilter) (*Report, error) {
	var pf PaymentFilter
	if filter.Start != nil && filter.End != nil {
		pf = PaymentFilter{From: filter.Start, To: filter.End}
	}

	payments, err := s.repo.ListPayments(ctx, pf)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	slices.SortStableFunc(payments, func(a, b *CollectedPayment) int {
		return a.PaidAt.Compare(b.PaidAt)
	})

	report := &Report{Payments: payments, Count: len(payments)}
	for _, p := range payments {
		report.TotalCollection += p.Amount
	}

	return report, nil
}
