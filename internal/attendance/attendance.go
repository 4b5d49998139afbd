package attendance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("attendance record not found")
	ErrNoEntries     = errors.New("no students provided")
	ErrInvalidStatus = errors.New("invalid attendance status")
	ErrInvalidClass  = errors.New("date, subject and course are required")
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}

	return false
}

// Record is one student's attendance for one subject on one day. The
// (StudentID, Date, Subject) triple is unique.
type Record struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	Date      time.Time
	Subject   string
	Course    string
	Semester  int
	Section   string
	Status    Status
	MarkedBy  string
	Remarks   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Stats struct {
	Subject    string
	Total      int
	Present    int
	Absent     int
	Late       int
	Percentage float64
}

type Report struct {
	Records  []*Record
	Subjects []Stats
	Overall  Stats
}
