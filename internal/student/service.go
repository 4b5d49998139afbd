package student

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=student
type Repository interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	GetStudentByUserID(ctx context.Context, userID string) (*Student, error)
	GetStudentByRollNumber(ctx context.Context, rollNumber string) (*Student, error)
	UpdateFeeStatus(ctx context.Context, id uuid.UUID, status FeeStatus) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	return s.repo.GetStudent(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (*Student, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	return s.repo.GetStudentByUserID(ctx, userID)
}

// Resolve finds a student by UUID, falling back to the roll number when ref
// is not a UUID.
func (s *Service) Resolve(ctx context.Context, ref string) (*Student, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.repo.GetStudent(ctx, id)
	}

	if ref == "" {
		return nil, ErrNotFound
	}

	return s.repo.GetStudentByRollNumber(ctx, ref)
}

func (s *Service) UpdateFeeStatus(ctx context.Context, id uuid.UUID, status FeeStatus) error {
	return s.repo.UpdateFeeStatus(ctx, id, status)
}
