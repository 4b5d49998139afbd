package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectStudentColumns = `
	id, user_id, name, email, roll_number, course, semester, fee_status, created_at, updated_at
`

func scanStudent(row *sql.Row) (*student.Student, error) {
	var s student.Student

	var userID sql.NullString

	var status string

	if err := row.Scan(
		&s.ID, &userID, &s.Name, &s.Email, &s.RollNumber, &s.Course, &s.Semester, &status,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.UserID = userID.String
	s.FeeStatus = student.FeeStatus(status)

	return &s, nil
}

func (s *Store) getBy(ctx context.Context, column string, value any) (*student.Student, error) {
	query := `SELECT ` + selectStudentColumns + ` FROM students WHERE ` + column + ` = $1`

	st, err := scanStudent(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, student.ErrNotFound
		}

		return nil, fmt.Errorf("getting student by %s: %w", column, err)
	}

	return st, nil
}

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetStudentByUserID(ctx context.Context, userID string) (*student.Student, error) {
	return s.getBy(ctx, "user_id", userID)
}

func (s *Store) GetStudentByRollNumber(ctx context.Context, rollNumber string) (*student.Student, error) {
	return s.getBy(ctx, "roll_number", rollNumber)
}

func (s *Store) UpdateFeeStatus(ctx context.Context, id uuid.UUID, status student.FeeStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET fee_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating fee status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating fee status: %w", err)
	}

	if n == 0 {
		return student.ErrNotFound
	}

	return nil
}
