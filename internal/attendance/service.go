package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bursar/internal/student"
)

const defaultSection = "A"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=attendance
type Repository interface {
	// Upsert inserts rec or, when the student already has an entry for the
	// same date and subject, overwrites its status and marker. rec is filled
	// with the stored row.
	Upsert(ctx context.Context, rec *Record) error
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StudentDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*student.Student, error)
	GetByUserID(ctx context.Context, userID string) (*student.Student, error)
}

type Service struct {
	repo     Repository
	students StudentDirectory
}

func NewService(repo Repository, students StudentDirectory) *Service {
	return &Service{repo: repo, students: students}
}

type Entry struct {
	StudentID uuid.UUID
	Status    Status
}

type MarkParams struct {
	Date     time.Time
	Subject  string
	Course   string
	Semester int
	Section  string
	Entries  []Entry
	MarkedBy string
}

// EntryError is a student whose attendance could not be marked.
type EntryError struct {
	StudentID uuid.UUID `json:"studentId"`
	Message   string    `json:"error"`
}

type MarkResult struct {
	Records []*Record
	Errors  []EntryError
}

type Filter struct {
	Date      *time.Time
	Subject   string
	Course    string
	Semester  *int
	Section   string
	StudentID *uuid.UUID
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Mark records attendance for a class. Entries are written independently: a
// failing entry is reported in the result and does not stop the others.
func (s *Service) Mark(ctx context.Context, params MarkParams) (*MarkResult, error) {
	if len(params.Entries) == 0 {
		return nil, ErrNoEntries
	}

	if params.Date.IsZero() || strings.TrimSpace(params.Subject) == "" || strings.TrimSpace(params.Course) == "" {
		return nil, ErrInvalidClass
	}

	section := params.Section
	if section == "" {
		section = defaultSection
	}

	result := &MarkResult{}

	for _, e := range params.Entries {
		rec, err := s.markOne(ctx, params, section, e)
		if err != nil {
			result.Errors = append(result.Errors, EntryError{StudentID: e.StudentID, Message: err.Error()})
			continue
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func (s *Service) markOne(ctx context.Context, params MarkParams, section string, e Entry) (*Record, error) {
	if !e.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}

	if _, err := s.students.Get(ctx, e.StudentID); err != nil {
		return nil, err
	}

	rec := &Record{
		StudentID: e.StudentID,
		Date:      day(params.Date),
		Subject:   strings.TrimSpace(params.Subject),
		Course:    strings.TrimSpace(params.Course),
		Semester:  params.Semester,
		Section:   section,
		Status:    e.Status,
		MarkedBy:  params.MarkedBy,
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("marking attendance: %w", err)
	}

	return rec, nil
}

// List returns matching records, newest date first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Record, error) {
	if filter.Date != nil {
		d := day(*filter.Date)
		filter.Date = &d
	}

	return s.repo.List(ctx, filter)
}

func (s *Service) StudentReport(ctx context.Context, studentID uuid.UUID) (*Report, error) {
	recs, err := s.repo.List(ctx, Filter{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}

	return BuildReport(recs), nil
}

// MyReport resolves the student linked to an identity and reports on them.
func (s *Service) MyReport(ctx context.Context, userID string) (*Report, error) {
	st, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving student for user: %w", err)
	}

	return s.StudentReport(ctx, st.ID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// BuildReport computes per-subject and overall statistics. Subjects appear in
// the order they are first seen in recs.
func BuildReport(recs []*Record) *Report {
	report := &Report{Records: recs}

	index := make(map[string]int)

	for _, r := range recs {
		i, ok := index[r.Subject]
		if !ok {
			i = len(report.Subjects)
			index[r.Subject] = i
			report.Subjects = append(report.Subjects, Stats{Subject: r.Subject})
		}

		report.Subjects[i].add(r.Status)
		report.Overall.add(r.Status)
	}

	for i := range report.Subjects {
		report.Subjects[i].Percentage = percentage(report.Subjects[i].Present, report.Subjects[i].Total)
	}

	report.Overall.Percentage = percentage(report.Overall.Present, report.Overall.Total)

	return report
}

func (s *Stats) add(st Status) {
	s.Total++

	switch st {
	case StatusPresent:
		s.Present++
	case StatusAbsent:
		s.Absent++
	case StatusLate:
		s.Late++
	}
}

// percentage is present/total*100 rounded to two places, 0 for no classes.
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}

	pct, _ := decimal.NewFromInt(int64(present)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		Float64()

	return pct
}
