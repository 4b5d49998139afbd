package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/bursar/internal/student"
)

const collection = "students"

type document struct {
	ID         string     `bson:"_id"`
	UserID     string     `bson:"user,omitempty"`
	Name       string     `bson:"name"`
	Email      string     `bson:"email"`
	RollNumber string     `bson:"rollNumber"`
	Course     string     `bson:"course"`
	Semester   int        `bson:"semester"`
	FeeStatus  string     `bson:"feeStatus"`
	CreatedAt  time.Time  `bson:"createdAt"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty"`
}

func (d document) toStudent() (*student.Student, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing student id %q: %w", d.ID, err)
	}

	return &student.Student{
		ID:         id,
		UserID:     d.UserID,
		Name:       d.Name,
		Email:      d.Email,
		RollNumber: d.RollNumber,
		Course:     d.Course,
		Semester:   d.Semester,
		FeeStatus:  student.FeeStatus(d.FeeStatus),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(collection)}
}

// EnsureIndexes creates the lookup indexes used by the directory.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "rollNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating student indexes: %w", err)
	}

	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*student.Student, error) {
	var doc document
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, student.ErrNotFound
		}

		return nil, fmt.Errorf("finding student: %w", err)
	}

	return doc.toStudent()
}

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *Store) GetStudentByUserID(ctx context.Context, userID string) (*student.Student, error) {
	return s.findOne(ctx, bson.M{"user": userID})
}

func (s *Store) GetStudentByRollNumber(ctx context.Context, rollNumber string) (*student.Student, error) {
	return s.findOne(ctx, bson.M{"rollNumber": rollNumber})
}

func (s *Store) UpdateFeeStatus(ctx context.Context, id uuid.UUID, status student.FeeStatus) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"feeStatus": string(status), "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("updating fee status: %w", err)
	}

	if res.MatchedCount == 0 {
		return student.ErrNotFound
	}

	return nil
}
