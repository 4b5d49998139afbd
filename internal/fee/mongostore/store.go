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

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
)

const collection = "fees"

type paymentDoc struct {
	ID            string    `bson:"id"`
	Amount        int64     `bson:"amount"`
	PaidAt        time.Time `bson:"paymentDate"`
	Mode          string    `bson:"paymentMode"`
	TransactionID string    `bson:"transactionId"`
	CollectedBy   string    `bson:"collectedBy"`
	Remarks       string    `bson:"remarks"`
}

type recordDoc struct {
	ID           string       `bson:"_id"`
	StudentID    string       `bson:"student"`
	AcademicYear string       `bson:"academicYear"`
	FeeType      string       `bson:"feeType"`
	TotalAmount  int64        `bson:"totalAmount"`
	PaidAmount   int64        `bson:"paidAmount"`
	DueDate      time.Time    `bson:"dueDate"`
	Payments     []paymentDoc `bson:"paymentHistory"`
	Remarks      string       `bson:"remarks"`
	CreatedAt    time.Time    `bson:"createdAt"`
	UpdatedAt    *time.Time   `bson:"updatedAt,omitempty"`
}

func toPaymentDoc(p *fee.Payment) paymentDoc {
	return paymentDoc{
		ID:            p.ID.String(),
		Amount:        int64(p.Amount),
		PaidAt:        p.PaidAt,
		Mode:          string(p.Mode),
		TransactionID: p.TransactionID,
		CollectedBy:   p.CollectedBy,
		Remarks:       p.Remarks,
	}
}

func (d paymentDoc) toPayment() (fee.Payment, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return fee.Payment{}, fmt.Errorf("parsing payment id %q: %w", d.ID, err)
	}

	return fee.Payment{
		ID:            id,
		Amount:        money.Amount(d.Amount),
		PaidAt:        d.PaidAt,
		Mode:          fee.PaymentMode(d.Mode),
		TransactionID: d.TransactionID,
		CollectedBy:   d.CollectedBy,
		Remarks:       d.Remarks,
	}, nil
}

func toRecordDoc(rec *fee.Record) recordDoc {
	doc := recordDoc{
		ID:           rec.ID.String(),
		StudentID:    rec.StudentID.String(),
		AcademicYear: rec.AcademicYear,
		FeeType:      string(rec.FeeType),
		TotalAmount:  int64(rec.TotalAmount),
		PaidAmount:   int64(rec.PaidAmount),
		DueDate:      rec.DueDate,
		Payments:     []paymentDoc{},
		Remarks:      rec.Remarks,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}

	for i := range rec.Payments {
		doc.Payments = append(doc.Payments, toPaymentDoc(&rec.Payments[i]))
	}

	return doc
}

func (d recordDoc) toRecord() (*fee.Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing fee record id %q: %w", d.ID, err)
	}

	studentID, err := uuid.Parse(d.StudentID)
	if err != nil {
		return nil, fmt.Errorf("parsing student id %q: %w", d.StudentID, err)
	}

	rec := &fee.Record{
		ID:           id,
		StudentID:    studentID,
		AcademicYear: d.AcademicYear,
		FeeType:      fee.FeeType(d.FeeType),
		TotalAmount:  money.Amount(d.TotalAmount),
		PaidAmount:   money.Amount(d.PaidAmount),
		DueDate:      d.DueDate,
		Remarks:      d.Remarks,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	for _, pd := range d.Payments {
		p, err := pd.toPayment()
		if err != nil {
			return nil, err
		}

		rec.Payments = append(rec.Payments, p)
	}

	return rec, nil
}

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(collection)}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "student", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "academicYear", Value: 1}}},
		{Keys: bson.D{{Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "paymentHistory.paymentDate", Value: 1}}},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating fee indexes: %w", err)
	}

	return nil
}

func (s *Store) CreateRecord(ctx context.Context, rec *fee.Record) error {
	prepareInsert(rec)

	if _, err := s.coll.InsertOne(ctx, toRecordDoc(rec)); err != nil {
		return fmt.Errorf("creating fee record: %w", err)
	}

	return nil
}

func prepareInsert(rec *fee.Record) {
	now := time.Now().UTC()
	rec.ID = uuid.New()
	rec.PaidAmount = 0
	rec.Payments = nil
	rec.CreatedAt = now
	rec.UpdatedAt = &now
}

// CreateRecords inserts the batch in order and removes any inserted documents
// if one of them fails.
func (s *Store) CreateRecords(ctx context.Context, recs []*fee.Record) error {
	docs := make([]any, len(recs))
	ids := make([]string, len(recs))

	for i, rec := range recs {
		prepareInsert(rec)
		docs[i] = toRecordDoc(rec)
		ids[i] = rec.ID.String()
	}

	if _, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if _, cleanupErr := s.coll.DeleteMany(context.WithoutCancel(ctx), bson.M{"_id": bson.M{"$in": ids}}); cleanupErr != nil {
			return fmt.Errorf("creating fee records: %w (cleanup failed: %v)", err, cleanupErr)
		}

		return fmt.Errorf("creating fee records: %w", err)
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*fee.Record, error) {
	var doc recordDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fee.ErrNotFound
		}

		return nil, fmt.Errorf("getting fee record: %w", err)
	}

	return doc.toRecord()
}

// statusFilter expresses the derived status as a query, since it is not stored.
func statusFilter(st fee.Status) bson.M {
	switch st {
	case fee.StatusPaid:
		return bson.M{"$expr": bson.M{"$gte": bson.A{"$paidAmount", "$totalAmount"}}}
	case fee.StatusPartial:
		return bson.M{
			"paidAmount": bson.M{"$gt": 0},
			"$expr":      bson.M{"$lt": bson.A{"$paidAmount", "$totalAmount"}},
		}
	case fee.StatusPending:
		return bson.M{"paidAmount": 0, "totalAmount": bson.M{"$gt": 0}}
	}

	return bson.M{"_id": bson.M{"$exists": false}}
}

func listQuery(filter fee.ListFilter) bson.M {
	q := bson.M{}

	if len(filter.Statuses) > 0 {
		or := make(bson.A, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			or = append(or, statusFilter(st))
		}

		q["$or"] = or
	}

	if filter.AcademicYear != "" {
		q["academicYear"] = filter.AcademicYear
	}

	if filter.StudentID != nil {
		q["student"] = filter.StudentID.String()
	}

	return q
}

func (s *Store) ListRecords(ctx context.Context, filter fee.ListFilter) ([]*fee.Record, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}}
	if filter.SortByDueDate {
		sort = bson.D{{Key: "dueDate", Value: 1}, {Key: "createdAt", Value: 1}}
	}

	cursor, err := s.coll.Find(ctx, listQuery(filter), options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("listing fee records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []*fee.Record

	for cursor.Next(ctx) {
		var doc recordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding fee record: %w", err)
		}

		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}

		recs = append(recs, rec)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating fee records: %w", err)
	}

	return recs, nil
}

// AppendPayment matches the record only while paid + amount stays within the
// total, so the increment and the history push happen in one document update.
func (s *Store) AppendPayment(ctx context.Context, id uuid.UUID, p *fee.Payment) (*fee.Record, error) {
	filter := bson.M{
		"_id": id.String(),
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$paidAmount", int64(p.Amount)}},
			"$totalAmount",
		}},
	}

	update := bson.M{
		"$inc":  bson.M{"paidAmount": int64(p.Amount)},
		"$push": bson.M{"paymentHistory": toPaymentDoc(p)},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc recordDoc

	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.rejectedPayment(ctx, id, p.Amount)
	}

	if err != nil {
		return nil, fmt.Errorf("appending payment: %w", err)
	}

	return doc.toRecord()
}

func (s *Store) rejectedPayment(ctx context.Context, id uuid.UUID, amount money.Amount) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	return &fee.OverpaymentError{Amount: amount, Due: rec.Due()}
}

func (s *Store) UpdateMetadata(ctx context.Context, id uuid.UUID, update fee.MetadataUpdate) (*fee.Record, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if update.DueDate != nil {
		set["dueDate"] = *update.DueDate
	}

	if update.Remarks != nil {
		set["remarks"] = *update.Remarks
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("updating fee record: %w", err)
	}

	if res.MatchedCount == 0 {
		return nil, fee.ErrNotFound
	}

	return s.GetRecord(ctx, id)
}

func (s *Store) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("deleting fee record: %w", err)
	}

	if res.DeletedCount == 0 {
		return fee.ErrNotFound
	}

	return nil
}

type collectedDoc struct {
	RecordID     string     `bson:"_id"`
	StudentID    string     `bson:"student"`
	FeeType      string     `bson:"feeType"`
	AcademicYear string     `bson:"academicYear"`
	Payment      paymentDoc `bson:"paymentHistory"`
}

func paymentsPipeline(filter fee.PaymentFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$paymentHistory"}},
	}

	if filter.From != nil && filter.To != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"paymentHistory.paymentDate": bson.M{"$gte": *filter.From, "$lte": *filter.To},
		}}})
	}

	return append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "paymentHistory.paymentDate", Value: 1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"student": 1, "feeType": 1, "academicYear": 1, "paymentHistory": 1,
		}}},
	)
}

func (s *Store) ListPayments(ctx context.Context, filter fee.PaymentFilter) ([]*fee.CollectedPayment, error) {
	cursor, err := s.coll.Aggregate(ctx, paymentsPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*fee.CollectedPayment

	for cursor.Next(ctx) {
		var doc collectedDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding payment: %w", err)
		}

		p, err := doc.Payment.toPayment()
		if err != nil {
			return nil, err
		}

		recordID, err := uuid.Parse(doc.RecordID)
		if err != nil {
			return nil, fmt.Errorf("parsing fee record id %q: %w", doc.RecordID, err)
		}

		studentID, err := uuid.Parse(doc.StudentID)
		if err != nil {
			return nil, fmt.Errorf("parsing student id %q: %w", doc.StudentID, err)
		}

		payments = append(payments, &fee.CollectedPayment{
			Payment:      p,
			RecordID:     recordID,
			StudentID:    studentID,
			FeeType:      fee.FeeType(doc.FeeType),
			AcademicYear: doc.AcademicYear,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}
