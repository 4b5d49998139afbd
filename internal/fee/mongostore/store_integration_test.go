package mongostore_test

import (
	"context"
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
	"github.com/MrJamesThe3rd/bursar/internal/fee/mongostore"
	"github.com/MrJamesThe3rd/bursar/internal/money"
)

// Set to a mongodb:// URI to run these tests against a scratch database.
const uriEnv = "BURSAR_TEST_MONGO_URI"

func openStore(t *testing.T) *mongostore.Store {
	t.Helper()

	uri := os.Getenv(uriEnv)
	if uri == "" {
		t.Skipf("%s not set", uriEnv)
	}

	ctx := context.Background()
	name := "bursar_test_" + uuid.NewString()[:8]

	db, err := database.NewMongo(ctx, uri, name)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	s := mongostore.New(db)
	require.NoError(t, s.EnsureIndexes(ctx))

	return s
}

func newRecord(t *testing.T, s *mongostore.Store, total money.Amount) *fee.Record {
	t.Helper()

	rec := &fee.Record{
		StudentID:    uuid.New(),
		AcademicYear: "2024-2025",
		FeeType:      fee.FeeTypeTuition,
		TotalAmount:  total,
		DueDate:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateRecord(context.Background(), rec))

	return rec
}

func cash(amount money.Amount, paidAt time.Time) *fee.Payment {
	return &fee.Payment{
		ID:          uuid.New(),
		Amount:      amount,
		PaidAt:      paidAt,
		Mode:        fee.PaymentModeCash,
		CollectedBy: "acc-1",
	}
}

func TestStore_ListPayments_Window(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	rec := newRecord(t, s, 100000)

	for _, p := range []*fee.Payment{
		cash(10000, time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)),
		cash(20000, time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)),
		cash(30000, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
	} {
		_, err := s.AppendPayment(ctx, rec.ID, p)
		require.NoError(t, err)
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC)

	got, err := s.ListPayments(ctx, fee.PaymentFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, money.Amount(20000), got[0].Amount)
	assert.Equal(t, rec.ID, got[0].RecordID)

	got, err = s.ListPayments(ctx, fee.PaymentFilter{To: &to})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStore_AppendPayment_Concurrent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	rec := newRecord(t, s, 100000)

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

			_, err := s.AppendPayment(ctx, rec.ID, cash(30000, time.Now()))

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
}
