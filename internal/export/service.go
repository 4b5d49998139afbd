package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

var header = []string{
	"Date", "Roll Number", "Student", "Fee Type", "Academic Year",
	"Payment Mode", "Transaction ID", "Collected By", "Amount",
}

type ReportSource interface {
	CollectionReport(ctx context.Context, filter fee.ReportFilter) (*fee.Report, error)
}

// Service writes collection reports as CSV.
type Service struct {
	fees     ReportSource
	students student.Getter
}

func NewService(fees ReportSource, students student.Getter) *Service {
	return &Service{fees: fees, students: students}
}

// WriteCollectionCSV writes one line per payment, oldest first, followed by a
// total line. Students that can no longer be resolved are shown by id.
func (s *Service) WriteCollectionCSV(ctx context.Context, w io.Writer, filter fee.ReportFilter) (*fee.Report, error) {
	report, err := s.fees.CollectionReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("building collection report: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	names := student.NewCache(s.students)

	for _, p := range report.Payments {
		st, err := names.Get(ctx, p.StudentID)
		if err != nil {
			return nil, err
		}

		if err := cw.Write([]string{
			p.PaidAt.Format("2006-01-02 15:04"),
			st.RollNumber,
			st.Name,
			string(p.FeeType),
			p.AcademicYear,
			string(p.Mode),
			p.TransactionID,
			p.CollectedBy,
			p.Amount.String(),
		}); err != nil {
			return nil, fmt.Errorf("writing payment %s: %w", p.ID, err)
		}
	}

	total := []string{"Total", "", strconv.Itoa(report.Count) + " payments", "", "", "", "", "", report.TotalCollection.String()}
	if err := cw.Write(total); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return report, nil
}

// Filename names an export after its window, e.g. collection_20250201-20250228.csv.
func Filename(filter fee.ReportFilter, now time.Time) string {
	if filter.Start != nil && filter.End != nil {
		return fmt.Sprintf("collection_%s-%s.csv", filter.Start.Format("20060102"), filter.End.Format("20060102"))
	}

	return fmt.Sprintf("collection_all_%s.csv", now.Format("20060102"))
}
