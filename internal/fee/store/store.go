package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, student_id, academic_year, fee_type, total_amount,
// paid_amount, due_date, remarks, created_at, updated_at
const selectRecordColumns = `
	r.id, r.student_id, r.academic_year, r.fee_type, r.total_amount,
	r.paid_amount, r.due_date, r.remarks, r.created_at, r.updated_at
`

func scanRecord(s scanner) (*fee.Record, error) {
	var rec fee.Record

	var feeType string

	if err := s.Scan(
		&rec.ID, &rec.StudentID, &rec.AcademicYear, &feeType, &rec.TotalAmount,
		&rec.PaidAmount, &rec.DueDate, &rec.Remarks, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.FeeType = fee.FeeType(feeType)

	return &rec, nil
}

const selectPaymentColumns = `
	p.id, p.amount, p.paid_at, p.payment_mode, p.transaction_id, p.collected_by, p.remarks
`

func scanPayment(s scanner, extra ...any) (fee.Payment, error) {
	var p fee.Payment

	var mode string

	dest := append([]any{&p.ID, &p.Amount, &p.PaidAt, &mode, &p.TransactionID, &p.CollectedBy, &p.Remarks}, extra...)
	if err := s.Scan(dest...); err != nil {
		return p, err
	}

	p.Mode = fee.PaymentMode(mode)

	return p, nil
}

func (s *Store) CreateRecord(ctx context.Context, rec *fee.Record) error {
	return insertRecord(ctx, s.db, rec)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertRecord(ctx context.Context, q queryRower, rec *fee.Record) error {
	query := `
		INSERT INTO fee_records (student_id, academic_year, fee_type, total_amount, due_date, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, paid_amount, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		rec.StudentID,
		rec.AcademicYear,
		rec.FeeType,
		rec.TotalAmount,
		rec.DueDate,
		rec.Remarks,
	).Scan(&rec.ID, &rec.PaidAmount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating fee record: %w", err)
	}

	return nil
}

func importLockKey(recs []*fee.Record) int64 {
	years := make([]string, 0, len(recs))
	for _, r := range recs {
		years = append(years, r.AcademicYear)
	}

	slices.Sort(years)
	years = slices.Compact(years)

	h := fnv.New64a()
	for _, y := range years {
		h.Write([]byte(y))
		h.Write([]byte{0})
	}

	return int64(h.Sum64())
}

// CreateRecords inserts a batch in one transaction. Concurrent imports for the
// same academic years are serialized by an advisory lock.
func (s *Store) CreateRecords(ctx context.Context, recs []*fee.Record) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(recs)); err != nil {
		return fmt.Errorf("acquiring import lock: %w", err)
	}

	for _, rec := range recs {
		if err := insertRecord(ctx, dbTx, rec); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*fee.Record, error) {
	query := `SELECT ` + selectRecordColumns + ` FROM fee_records r WHERE r.id = $1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fee.ErrNotFound
		}

		return nil, fmt.Errorf("getting fee record: %w", err)
	}

	if err := s.loadPayments(ctx, []*fee.Record{rec}); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, filter fee.ListFilter) ([]*fee.Record, error) {
	query := `SELECT ` + selectRecordColumns + ` FROM fee_records r WHERE TRUE`

	var args []any

	argIdx := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		query += fmt.Sprintf(" AND r.status = ANY($%d)", argIdx)

		args = append(args, statuses)
		argIdx++
	}

	if filter.AcademicYear != "" {
		query += fmt.Sprintf(" AND r.academic_year = $%d", argIdx)

		args = append(args, filter.AcademicYear)
		argIdx++
	}

	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND r.student_id = $%d", argIdx)

		args = append(args, *filter.StudentID)
		argIdx++
	}

	if filter.SortByDueDate {
		query += " ORDER BY r.due_date ASC, r.created_at ASC"
	} else {
		query += " ORDER BY r.created_at DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fee records: %w", err)
	}
	defer rows.Close()

	var recs []*fee.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fee record: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fee records: %w", err)
	}

	if err := s.loadPayments(ctx, recs); err != nil {
		return nil, err
	}

	return recs, nil
}

// loadPayments fills the payment history of recs in insertion order.
func (s *Store) loadPayments(ctx context.Context, recs []*fee.Record) error {
	if len(recs) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*fee.Record, len(recs))
	ids := make([]string, len(recs))

	for i, r := range recs {
		byID[r.ID] = r
		ids[i] = r.ID.String()
	}

	query := `SELECT ` + selectPaymentColumns + `, p.fee_record_id
		FROM fee_payments p
		WHERE p.fee_record_id = ANY($1::uuid[])
		ORDER BY p.seq ASC`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID uuid.UUID

		p, err := scanPayment(rows, &recordID)
		if err != nil {
			return fmt.Errorf("scanning payment: %w", err)
		}

		if rec, ok := byID[recordID]; ok {
			rec.Payments = append(rec.Payments, p)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating payments: %w", err)
	}

	return nil
}

// AppendPayment increments paid_amount only while the result stays within the
// total, and records the history entry in the same transaction.
func (s *Store) AppendPayment(ctx context.Context, id uuid.UUID, p *fee.Payment) (*fee.Record, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE fee_records
		SET paid_amount = paid_amount + $1, updated_at = NOW()
		WHERE id = $2 AND paid_amount + $1 <= total_amount
		RETURNING id
	`

	var updatedID uuid.UUID

	err = dbTx.QueryRowContext(ctx, updateQuery, p.Amount, id).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rejectedPayment(ctx, dbTx, id, p.Amount)
	}

	if err != nil {
		return nil, fmt.Errorf("incrementing paid amount: %w", err)
	}

	insertQuery := `
		INSERT INTO fee_payments (id, fee_record_id, amount, paid_at, payment_mode, transaction_id, collected_by, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := dbTx.ExecContext(ctx, insertQuery,
		p.ID, id, p.Amount, p.PaidAt, p.Mode, p.TransactionID, p.CollectedBy, p.Remarks,
	); err != nil {
		return nil, fmt.Errorf("inserting payment: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	return s.GetRecord(ctx, id)
}

// rejectedPayment explains why the guarded update matched no row.
func rejectedPayment(ctx context.Context, q queryRower, id uuid.UUID, amount money.Amount) error {
	var total, paid money.Amount

	err := q.QueryRowContext(ctx,
		`SELECT total_amount, paid_amount FROM fee_records WHERE id = $1`, id,
	).Scan(&total, &paid)
	if errors.Is(err, sql.ErrNoRows) {
		return fee.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("reading fee record balance: %w", err)
	}

	return &fee.OverpaymentError{Amount: amount, Due: total - paid}
}

func (s *Store) UpdateMetadata(ctx context.Context, id uuid.UUID, update fee.MetadataUpdate) (*fee.Record, error) {
	query := `
		UPDATE fee_records
		SET due_date = COALESCE($1, due_date), remarks = COALESCE($2, remarks), updated_at = NOW()
		WHERE id = $3
	`

	res, err := s.db.ExecContext(ctx, query, update.DueDate, update.Remarks, id)
	if err != nil {
		return nil, fmt.Errorf("updating fee record: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fee.ErrNotFound
	}

	return s.GetRecord(ctx, id)
}

func (s *Store) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fee_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting fee record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting fee record: %w", err)
	}

	if n == 0 {
		return fee.ErrNotFound
	}

	return nil
}

func (s *Store) ListPayments(ctx context.Context, filter fee.PaymentFilter) ([]*fee.CollectedPayment, error) {
	query := `SELECT ` + selectPaymentColumns + `, r.id, r.student_id, r.fee_type, r.academic_year
		FROM fee_payments p
		JOIN fee_records r ON r.id = p.fee_record_id`

	var args []any

	if filter.From != nil && filter.To != nil {
		query += ` WHERE p.paid_at >= $1 AND p.paid_at <= $2`

		args = append(args, *filter.From, *filter.To)
	}

	query += ` ORDER BY p.paid_at ASC, p.seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*fee.CollectedPayment

	for rows.Next() {
		var cp fee.CollectedPayment

		var feeType string

		p, err := scanPayment(rows, &cp.RecordID, &cp.StudentID, &feeType, &cp.AcademicYear)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		cp.Payment = p
		cp.FeeType = fee.FeeType(feeType)
		payments = append(payments, &cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}
