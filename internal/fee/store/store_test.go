package store_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/database"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/fee/store"
	"github.com/MrJamesThe3rd/bursar/internal/money"
)

// Set to a throwaway postgres:// URL to run these tests; the schema is migrated up.
const dsnEnv = "BURSAR_TEST_DATABASE_URL"

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	require.NoError(t, database.Migrate(dsn))

	db, err := database.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func seedStudent(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO students (name, roll_number) VALUES ($1, $2) RETURNING id`,
		"Store Test", "ST-"+uuid.NewString(),
	).Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.ExecContext(ctx, `DELETE FROM fee_records WHERE student_id = $1`, id)
		_, _ = db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	})

	return id
}

func seedRecord(t *testing.T, s *store.Store, studentID uuid.UUID, total money.Amount) *fee.Record {
	t.Helper()

	rec := &fee.Record{
		StudentID:    studentID,
		AcademicYear: "2024-2025",
		FeeType:      fee.FeeTypeTuition,
		TotalAmount:  total,
		DueDate:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateRecord(context.Background(), rec))

	return rec
}

func payment(amount money.Amount, paidAt time.Time) *fee.Payment {
	return &fee.Payment{
		ID:          uuid.New(),
		Amount:      amount,
		PaidAt:      paidAt,
		Mode:        fee.PaymentModeCash,
		CollectedBy: "acc-1",
	}
}

func TestStore_ListPayments_Window(t *testing.T) {
	db := openDB(t)
	s := store.New(db)
	ctx := context.Background()

	rec := seedRecord(t, s, seedStudent(t, db), 100000)

	for _, p := range []*fee.Payment{
		payment(10000, time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)),
		payment(20000, time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)),
		payment(30000, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
	} {
		_, err := s.AppendPayment(ctx, rec.ID, p)
		require.NoError(t, err)
	}

	ofRecord := func(payments []*fee.CollectedPayment) []*fee.CollectedPayment {
		var out []*fee.CollectedPayment
		for _, p := range payments {
			if p.RecordID == rec.ID {
				out = append(out, p)
			}
		}

		return out
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC)

	got, err := s.ListPayments(ctx, fee.PaymentFilter{From: &from, To: &to})
	require.NoError(t, err)

	feb := ofRecord(got)
	require.Len(t, feb, 1)
	assert.Equal(t, money.Amount(20000), feb[0].Amount)
	assert.Equal(t, rec.StudentID, feb[0].StudentID)
	assert.Equal(t, fee.FeeTypeTuition, feb[0].FeeType)

	// Both bounds are inclusive.
	edge := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	got, err = s.ListPayments(ctx, fee.PaymentFilter{From: &edge, To: &edge})
	require.NoError(t, err)
	assert.Len(t, ofRecord(got), 1)

	// A single bound is ignored.
	got, err = s.ListPayments(ctx, fee.PaymentFilter{From: &from})
	require.NoError(t, err)

	all := ofRecord(got)
	require.Len(t, all, 3)
	assert.True(t, all[0].PaidAt.Before(all[1].PaidAt))
	assert.True(t, all[1].PaidAt.Before(all[2].PaidAt))
}

func TestStore_AppendPayment_Guard(t *testing.T) {
	db := openDB(t)
	s := store.New(db)
	ctx := context.Background()
	studentID := seedStudent(t, db)

	t.Run("Overpayment", func(t *testing.T) {
		rec := seedRecord(t, s, studentID, 100000)

		_, err := s.AppendPayment(ctx, rec.ID, payment(80000, time.Now()))
		require.NoError(t, err)

		_, err = s.AppendPayment(ctx, rec.ID, payment(30000, time.Now()))

		var overErr *fee.OverpaymentError
		require.ErrorAs(t, err, &overErr)
		assert.Equal(t, money.Amount(20000), overErr.Due)

		got, err := s.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(80000), got.PaidAmount)
		assert.Len(t, got.Payments, 1)
	})

	t.Run("ExactPayoff", func(t *testing.T) {
		rec := seedRecord(t, s, studentID, 50000)

		got, err := s.AppendPayment(ctx, rec.ID, payment(50000, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, fee.StatusPaid, got.Status())
		assert.Equal(t, money.Amount(0), got.Due())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.AppendPayment(ctx, uuid.New(), payment(100, time.Now()))
		assert.ErrorIs(t, err, fee.ErrNotFound)
	})

	t.Run("Concurrent", func(t *testing.T) {
		rec := seedRecord(t, s, studentID, 100000)

		const attempts = 10

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			rejected int
		)

		for range attempts {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := s.AppendPayment(ctx, rec.ID, payment(30000, time.Now()))

				var overErr *fee.OverpaymentError

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					accepted++
				case errors.As(err, &overErr):
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 3, accepted)
		assert.Equal(t, attempts-3, rejected)

		got, err := s.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(90000), got.PaidAmount)
		assert.Len(t, got.Payments, 3)
	})
}

func TestStore_ListRecords_Status(t *testing.T) {
	db := openDB(t)
	s := store.New(db)
	ctx := context.Background()
	studentID := seedStudent(t, db)

	pending := seedRecord(t, s, studentID, 10000)
	partial := seedRecord(t, s, studentID, 10000)
	paid := seedRecord(t, s, studentID, 10000)

	_, err := s.AppendPayment(ctx, partial.ID, payment(4000, time.Now()))
	require.NoError(t, err)
	_, err = s.AppendPayment(ctx, paid.ID, payment(10000, time.Now()))
	require.NoError(t, err)

	got, err := s.ListRecords(ctx, fee.ListFilter{
		StudentID: &studentID,
		Statuses:  []fee.Status{fee.StatusPending, fee.StatusPartial},
	})
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}

	assert.ElementsMatch(t, []uuid.UUID{pending.ID, partial.ID}, ids)
}
