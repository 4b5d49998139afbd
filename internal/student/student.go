package student

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("student not found")

// FeeStatus is the denormalized summary of a student's fee records.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "pending"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusPaid    FeeStatus = "paid"
)

// Student is the directory's view of an enrolled student.
type Student struct {
	ID         uuid.UUID
	UserID     string // identity subject of the student's login
	Name       string
	Email      string
	RollNumber string
	Course     string
	Semester   int
	FeeStatus  FeeStatus
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
