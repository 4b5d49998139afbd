package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `
	id, student_id, date, subject, course, semester, section,
	status, marked_by, remarks, created_at, updated_at
`

func scanRecord(s scanner) (*attendance.Record, error) {
	var rec attendance.Record

	var status string

	if err := s.Scan(
		&rec.ID, &rec.StudentID, &rec.Date, &rec.Subject, &rec.Course, &rec.Semester, &rec.Section,
		&status, &rec.MarkedBy, &rec.Remarks, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.Status = attendance.Status(status)

	return &rec, nil
}

func (s *Store) Upsert(ctx context.Context, rec *attendance.Record) error {
	query := `
		INSERT INTO attendance (student_id, date, subject, course, semester, section, status, marked_by, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (student_id, date, subject) DO UPDATE
		SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = NOW()
		RETURNING ` + selectColumns

	stored, err := scanRecord(s.db.QueryRowContext(ctx, query,
		rec.StudentID, rec.Date, rec.Subject, rec.Course, rec.Semester, rec.Section,
		string(rec.Status), rec.MarkedBy, rec.Remarks,
	))
	if err != nil {
		return fmt.Errorf("upserting attendance: %w", err)
	}

	*rec = *stored

	return nil
}

func (s *Store) List(ctx context.Context, filter attendance.Filter) ([]*attendance.Record, error) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Date != nil {
		add("date = $%d", *filter.Date)
	}

	if filter.Subject != "" {
		add("subject = $%d", filter.Subject)
	}

	if filter.Course != "" {
		add("course = $%d", filter.Course)
	}

	if filter.Semester != nil {
		add("semester = $%d", *filter.Semester)
	}

	if filter.Section != "" {
		add("section = $%d", filter.Section)
	}

	if filter.StudentID != nil {
		add("student_id = $%d", *filter.StudentID)
	}

	query := `SELECT ` + selectColumns + ` FROM attendance`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	defer rows.Close()

	var recs []*attendance.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance: %w", err)
	}

	return recs, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting attendance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}

	if n == 0 {
		return attendance.ErrNotFound
	}

	return nil
}
