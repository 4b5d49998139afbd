package feecsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	enc "github.com/MrJamesThe3rd/bursar/internal/encoding"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
)

var ErrNoProfile = errors.New("no matching fee sheet layout: expected ledger or roster columns")

var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006"}

// Parser reads fee assignment sheets exported from spreadsheets.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns one ImportRow per data line. Lines that cannot be read are
// collected into a *fee.ImportError and no rows are returned.
func (p *Parser) Parse(r io.Reader) ([]fee.ImportRow, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	delim := detectDelimiter(content)

	zap.L().Debug("parsing fee sheet",
		zap.String("charset", string(charset)),
		zap.String("delimiter", string(delim)),
	)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		profile *Profile
		cols    colIndex
		rows    []fee.ImportRow
		rowErrs []fee.RowError
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if profile == nil {
			profile, cols = detectProfile(record)
			continue
		}

		if blank(record) {
			continue
		}

		row, err := parseRow(profile, cols, record, delim)
		if err != nil {
			rowErrs = append(rowErrs, fee.RowError{Line: line, Message: err.Error()})
			continue
		}

		row.Line = line
		rows = append(rows, row)
	}

	if profile == nil {
		return nil, ErrNoProfile
	}

	if len(rowErrs) > 0 {
		return nil, &fee.ImportError{Rows: rowErrs}
	}

	return rows, nil
}

// detectDelimiter picks ';' or ',' by counting them in the first non-empty line.
func detectDelimiter(content []byte) rune {
	for line := range bytes.Lines(content) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
			return ';'
		}

		return ','
	}

	return ','
}

// colIndex maps lower-cased header names to their index in the row.
type colIndex map[string]int

func detectProfile(record []string) (*Profile, colIndex) {
	cols := make(colIndex)

	for i, cell := range record {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name != "" {
			cols[name] = i
		}
	}

	for i := range profiles {
		if matchesProfile(&profiles[i], cols) {
			return &profiles[i], cols
		}
	}

	return nil, nil
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRow(p *Profile, cols colIndex, record []string, delim rune) (fee.ImportRow, error) {
	row := fee.ImportRow{
		StudentRef:   cellValue(record, cols, p.StudentCol),
		AcademicYear: cellValue(record, cols, p.YearCol),
		FeeType:      fee.FeeType(strings.ToLower(cellValue(record, cols, p.TypeCol))),
		Remarks:      cellValue(record, cols, p.RemarksCol),
	}

	if row.StudentRef == "" {
		return row, errors.New("missing student")
	}

	amount, err := parseAmount(cellValue(record, cols, p.AmountCol), delim)
	if err != nil {
		return row, err
	}

	row.TotalAmount = amount

	due, err := parseDate(cellValue(record, cols, p.DueCol))
	if err != nil {
		return row, err
	}

	row.DueDate = due

	return row, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// cellValue returns the trimmed cell under the named column, or "" when the
// column is absent or the row is short.
func cellValue(record []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
