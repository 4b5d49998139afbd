package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/export"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type fakeReports struct {
	report *fee.Report
	err    error
	got    fee.ReportFilter
}

func (f *fakeReports) CollectionReport(_ context.Context, filter fee.ReportFilter) (*fee.Report, error) {
	f.got = filter
	return f.report, f.err
}

type fakeStudents struct {
	byID  map[uuid.UUID]*student.Student
	calls int
	err   error
}

func (f *fakeStudents) Get(_ context.Context, id uuid.UUID) (*student.Student, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	st, ok := f.byID[id]
	if !ok {
		return nil, student.ErrNotFound
	}

	return st, nil
}

func payment(studentID uuid.UUID, amount int64, at time.Time, mode fee.PaymentMode) *fee.CollectedPayment {
	return &fee.CollectedPayment{
		Payment: fee.Payment{
			ID:          uuid.New(),
			Amount:      money.Amount(amount),
			PaidAt:      at,
			Mode:        mode,
			CollectedBy: "acc-1",
		},
		StudentID:    studentID,
		FeeType:      fee.FeeTypeTuition,
		AcademicYear: "2025-2026",
	}
}

func TestService_WriteCollectionCSV(t *testing.T) {
	ana := &student.Student{ID: uuid.New(), Name: "Ana Sousa", RollNumber: "CS-014"}
	gone := uuid.New()

	feb := time.Date(2025, 2, 15, 10, 30, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	reports := &fakeReports{report: &fee.Report{
		Payments: []*fee.CollectedPayment{
			payment(ana.ID, 20000, feb, fee.PaymentModeUPI),
			payment(gone, 5050, mar, fee.PaymentModeCash),
			payment(ana.ID, 10000, mar, fee.PaymentModeCard),
		},
		TotalCollection: 35050,
		Count:           3,
	}}
	students := &fakeStudents{byID: map[uuid.UUID]*student.Student{ana.ID: ana}}

	svc := export.NewService(reports, students)

	var buf bytes.Buffer

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	report, err := svc.WriteCollectionCSV(context.Background(), &buf, fee.ReportFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count)
	assert.Equal(t, &start, reports.got.Start)
	assert.Equal(t, 2, students.calls, "students are looked up once each")

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 5)

	assert.Equal(t, "Date", lines[0][0])
	assert.Equal(t, []string{
		"2025-02-15 10:30", "CS-014", "Ana Sousa", "tuition", "2025-2026", "upi", "", "acc-1", "200.00",
	}, lines[1])
	assert.Equal(t, gone.String(), lines[2][2])
	assert.Equal(t, "50.50", lines[2][8])
	assert.Equal(t, []string{"Total", "", "3 payments", "", "", "", "", "", "350.50"}, lines[4])
}

func TestService_WriteCollectionCSV_Errors(t *testing.T) {
	t.Run("ReportFails", func(t *testing.T) {
		svc := export.NewService(&fakeReports{err: errors.New("db down")}, &fakeStudents{})

		_, err := svc.WriteCollectionCSV(context.Background(), &bytes.Buffer{}, fee.ReportFilter{})
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("DirectoryFails", func(t *testing.T) {
		reports := &fakeReports{report: &fee.Report{
			Payments: []*fee.CollectedPayment{payment(uuid.New(), 100, time.Now(), fee.PaymentModeCash)},
			Count:    1,
		}}

		svc := export.NewService(reports, &fakeStudents{err: errors.New("timeout")})

		_, err := svc.WriteCollectionCSV(context.Background(), &bytes.Buffer{}, fee.ReportFilter{})
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "collection_20250201-20250228.csv", export.Filename(fee.ReportFilter{Start: &start, End: &end}, now))
	assert.Equal(t, "collection_all_20250402.csv", export.Filename(fee.ReportFilter{Start: &start}, now))
}
