package fee

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        money.Amount    `json:"amount"`
	PaymentDate   time.Time       `json:"paymentDate"`
	PaymentMode   fee.PaymentMode `json:"paymentMode"`
	TransactionID string          `json:"transactionId,omitempty"`
	CollectedBy   string          `json:"collectedBy"`
	Remarks       string          `json:"remarks,omitempty"`
}

// studentRef is the record's student; only the id is set where the caller
// already knows who the student is.
type studentRef struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name,omitempty"`
	RollNumber string    `json:"rollNumber,omitempty"`
	Email      string    `json:"email,omitempty"`
	Course     string    `json:"course,omitempty"`
	Semester   int       `json:"semester,omitempty"`
}

func toStudentRef(st *student.Student) studentRef {
	return studentRef{
		ID:         st.ID,
		Name:       st.Name,
		RollNumber: st.RollNumber,
		Email:      st.Email,
		Course:     st.Course,
		Semester:   st.Semester,
	}
}

type feeResponse struct {
	ID             uuid.UUID         `json:"id"`
	Student        studentRef        `json:"student"`
	AcademicYear   string            `json:"academicYear"`
	FeeType        fee.FeeType       `json:"feeType"`
	TotalAmount    money.Amount      `json:"totalAmount"`
	PaidAmount     money.Amount      `json:"paidAmount"`
	DueAmount      money.Amount      `json:"dueAmount"`
	DueDate        time.Time         `json:"dueDate"`
	Status         fee.Status        `json:"status"`
	PaymentHistory []paymentResponse `json:"paymentHistory"`
	Remarks        string            `json:"remarks"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
}

type summaryResponse struct {
	TotalFees money.Amount `json:"totalFees"`
	TotalPaid money.Amount `json:"totalPaid"`
	TotalDue  money.Amount `json:"totalDue"`
	Status    fee.Status   `json:"status"`
}

type studentFeesResponse struct {
	Fees    []feeResponse   `json:"fees"`
	Summary summaryResponse `json:"summary"`
}

type collectedPaymentResponse struct {
	paymentResponse
	FeeRecord    uuid.UUID   `json:"feeRecord"`
	Student      studentRef  `json:"student"`
	FeeType      fee.FeeType `json:"feeType"`
	AcademicYear string      `json:"academicYear"`
}

type reportResponse struct {
	Payments        []collectedPaymentResponse `json:"payments"`
	TotalCollection money.Amount               `json:"totalCollection"`
	Count           int                        `json:"count"`
}

type messageResponse struct {
	Message string       `json:"message"`
	Fee     *feeResponse `json:"fee,omitempty"`
}

type importResponse struct {
	Imported int           `json:"imported"`
	Fees     []feeResponse `json:"fees"`
}

func toPaymentResponse(p fee.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		PaymentDate:   p.PaidAt,
		PaymentMode:   p.Mode,
		TransactionID: p.TransactionID,
		CollectedBy:   p.CollectedBy,
		Remarks:       p.Remarks,
	}
}

func toResponse(rec *fee.Record, st studentRef) feeResponse {
	resp := feeResponse{
		ID:             rec.ID,
		Student:        st,
		AcademicYear:   rec.AcademicYear,
		FeeType:        rec.FeeType,
		TotalAmount:    rec.TotalAmount,
		PaidAmount:     rec.PaidAmount,
		DueAmount:      rec.Due(),
		DueDate:        rec.DueDate,
		Status:         rec.Status(),
		PaymentHistory: make([]paymentResponse, 0, len(rec.Payments)),
		Remarks:        rec.Remarks,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}

	for _, p := range rec.Payments {
		resp.PaymentHistory = append(resp.PaymentHistory, toPaymentResponse(p))
	}

	return resp
}

func toResponseList(recs []*fee.Record) []feeResponse {
	resp := make([]feeResponse, len(recs))
	for i, rec := range recs {
		resp[i] = toResponse(rec, studentRef{ID: rec.StudentID})
	}

	return resp
}

func toStudentFeesResponse(sum *fee.Summary) studentFeesResponse {
	return studentFeesResponse{
		Fees: toResponseList(sum.Records),
		Summary: summaryResponse{
			TotalFees: sum.TotalFees,
			TotalPaid: sum.TotalPaid,
			TotalDue:  sum.TotalDue,
			Status:    sum.Status(),
		},
	}
}

func toReportResponse(ctx context.Context, students *student.Cache, report *fee.Report) (reportResponse, error) {
	resp := reportResponse{
		Payments:        make([]collectedPaymentResponse, 0, len(report.Payments)),
		TotalCollection: report.TotalCollection,
		Count:           report.Count,
	}

	for _, p := range report.Payments {
		st, err := students.Get(ctx, p.StudentID)
		if err != nil {
			return resp, err
		}

		resp.Payments = append(resp.Payments, collectedPaymentResponse{
			paymentResponse: toPaymentResponse(p.Payment),
			FeeRecord:       p.RecordID,
			Student:         toStudentRef(st),
			FeeType:         p.FeeType,
			AcademicYear:    p.AcademicYear,
		})
	}

	return resp, nil
}

// toStaffResponseList resolves each record's student once per request.
func toStaffResponseList(ctx context.Context, students *student.Cache, recs []*fee.Record) ([]feeResponse, error) {
	resp := make([]feeResponse, len(recs))

	for i, rec := range recs {
		st, err := students.Get(ctx, rec.StudentID)
		if err != nil {
			return nil, err
		}

		resp[i] = toResponse(rec, toStudentRef(st))
	}

	return resp, nil
}
