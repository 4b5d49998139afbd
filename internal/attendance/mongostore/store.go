package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
)

const collection = "attendances"

type document struct {
	ID        string     `bson:"_id"`
	StudentID string     `bson:"student"`
	Date      time.Time  `bson:"date"`
	Subject   string     `bson:"subject"`
	Course    string     `bson:"course"`
	Semester  int        `bson:"semester"`
	Section   string     `bson:"section"`
	Status    string     `bson:"status"`
	MarkedBy  string     `bson:"markedBy"`
	Remarks   string     `bson:"remarks"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

func (d document) toRecord() (*attendance.Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing attendance id %q: %w", d.ID, err)
	}

	studentID, err := uuid.Parse(d.StudentID)
	if err != nil {
		return nil, fmt.Errorf("parsing student id %q: %w", d.StudentID, err)
	}

	return &attendance.Record{
		ID:        id,
		StudentID: studentID,
		Date:      d.Date,
		Subject:   d.Subject,
		Course:    d.Course,
		Semester:  d.Semester,
		Section:   d.Section,
		Status:    attendance.Status(d.Status),
		MarkedBy:  d.MarkedBy,
		Remarks:   d.Remarks,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(collection)}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student", Value: 1}, {Key: "date", Value: 1}, {Key: "subject", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "semester", Value: 1}, {Key: "section", Value: 1}, {Key: "date", Value: -1}}},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating attendance indexes: %w", err)
	}

	return nil
}

// Upsert relies on the unique (student, date, subject) index; class details
// are only written on insert.
func (s *Store) Upsert(ctx context.Context, rec *attendance.Record) error {
	now := time.Now().UTC()

	filter := bson.M{"student": rec.StudentID.String(), "date": rec.Date, "subject": rec.Subject}
	update := bson.M{
		"$set": bson.M{"status": string(rec.Status), "markedBy": rec.MarkedBy, "updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"course":    rec.Course,
			"semester":  rec.Semester,
			"section":   rec.Section,
			"remarks":   rec.Remarks,
			"createdAt": now,
		},
	}

	var doc document

	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return fmt.Errorf("upserting attendance: %w", err)
	}

	stored, err := doc.toRecord()
	if err != nil {
		return err
	}

	*rec = *stored

	return nil
}

func (s *Store) List(ctx context.Context, filter attendance.Filter) ([]*attendance.Record, error) {
	q := bson.M{}

	if filter.Date != nil {
		q["date"] = *filter.Date
	}

	if filter.Subject != "" {
		q["subject"] = filter.Subject
	}

	if filter.Course != "" {
		q["course"] = filter.Course
	}

	if filter.Semester != nil {
		q["semester"] = *filter.Semester
	}

	if filter.Section != "" {
		q["section"] = filter.Section
	}

	if filter.StudentID != nil {
		q["student"] = filter.StudentID.String()
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("listing attendance: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []*attendance.Record

	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding attendance: %w", err)
		}

		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}

		recs = append(recs, rec)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance: %w", err)
	}

	return recs, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("deleting attendance: %w", err)
	}

	if res.DeletedCount == 0 {
		return attendance.ErrNotFound
	}

	return nil
}
