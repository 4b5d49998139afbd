package fee

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

// ImportRow is one fee assignment read from an external file. StudentRef is
// either a student UUID or a roll number.
type ImportRow struct {
	Line         int
	StudentRef   string
	AcademicYear string
	FeeType      FeeType
	TotalAmount  money.Amount
	DueDate      time.Time
	Remarks      string
}

// ImportBatch creates a record per row, all or nothing. When any row is
// invalid nothing is written and an *ImportError lists every bad line.
func (s *Service) ImportBatch(ctx context.Context, rows []ImportRow) ([]*Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	recs := make([]*Record, 0, len(rows))

	var rowErrs []RowError

	for _, row := range rows {
		st, err := s.students.Resolve(ctx, row.StudentRef)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: row.Line, Message: fmt.Sprintf("student %q: %v", row.StudentRef, err)})
			continue
		}

		params := CreateParams{
			StudentID:    st.ID,
			AcademicYear: row.AcademicYear,
			FeeType:      row.FeeType,
			TotalAmount:  row.TotalAmount,
			DueDate:      row.DueDate,
			Remarks:      row.Remarks,
		}
		if err := params.validate(); err != nil {
			rowErrs = append(rowErrs, RowError{Line: row.Line, Message: err.Error()})
			continue
		}

		recs = append(recs, params.record())
	}

	if len(rowErrs) > 0 {
		return nil, &ImportError{Rows: rowErrs}
	}

	if err := s.repo.CreateRecords(ctx, recs); err != nil {
		return nil, fmt.Errorf("creating fee records: %w", err)
	}

	return recs, nil
}
