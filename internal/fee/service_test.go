package fee_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type mocks struct {
	repo     *fee.MockRepository
	students *fee.MockStudentDirectory
	events   *fee.MockPublisher
}

func newService(t *testing.T) (*fee.Service, mocks) {
	ctrl := gomock.NewController(t)

	m := mocks{
		repo:     fee.NewMockRepository(ctrl),
		students: fee.NewMockStudentDirectory(ctrl),
		events:   fee.NewMockPublisher(ctrl),
	}

	return fee.NewService(m.repo, m.students, m.events), m
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name        string
		paid, total money.Amount
		want        fee.Status
	}{
		{name: "NothingPaid", paid: 0, total: 50000, want: fee.StatusPending},
		{name: "Partial", paid: 20000, total: 50000, want: fee.StatusPartial},
		{name: "Exact", paid: 50000, total: 50000, want: fee.StatusPaid},
		{name: "ZeroTotal", paid: 0, total: 0, want: fee.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fee.DeriveStatus(tt.paid, tt.total))

			rec := &fee.Record{PaidAmount: tt.paid, TotalAmount: tt.total}
			assert.Equal(t, tt.want, rec.Status())
			assert.Equal(t, tt.total-tt.paid, rec.Due())
		})
	}
}

func TestService_Create(t *testing.T) {
	studentID := uuid.New()

	valid := fee.CreateParams{
		StudentID:    studentID,
		AcademicYear: "2025-2026",
		FeeType:      fee.FeeTypeTuition,
		TotalAmount:  100000,
		DueDate:      date(2025, 9, 30),
	}

	type testCase struct {
		name      string
		params    func() fee.CreateParams
		setupMock func(m mocks)
		wantErr   func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name:   "Success",
			params: func() fee.CreateParams { return valid },
			setupMock: func(m mocks) {
				m.students.EXPECT().Get(gomock.Any(), studentID).Return(&student.Student{ID: studentID}, nil)
				m.repo.EXPECT().
					CreateRecord(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rec *fee.Record) error {
						rec.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "ZeroTotalIsPaid",
			params: func() fee.CreateParams {
				p := valid
				p.TotalAmount = 0

				return p
			},
			setupMock: func(m mocks) {
				m.students.EXPECT().Get(gomock.Any(), studentID).Return(&student.Student{ID: studentID}, nil)
				m.repo.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "StudentNotFound",
			params: func() fee.CreateParams {
				return valid
			},
			setupMock: func(m mocks) {
				m.students.EXPECT().Get(gomock.Any(), studentID).Return(nil, student.ErrNotFound)
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, student.ErrNotFound)
			},
		},
		{
			name: "NegativeTotal",
			params: func() fee.CreateParams {
				p := valid
				p.TotalAmount = -1

				return p
			},
			wantErr: func(t *testing.T, err error) {
				var amountErr *fee.InvalidAmountError
				assert.ErrorAs(t, err, &amountErr)
			},
		},
		{
			name: "UnknownFeeType",
			params: func() fee.CreateParams {
				p := valid
				p.FeeType = "canteen"

				return p
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fee.ErrInvalidFeeType)
			},
		},
		{
			name: "MissingAcademicYear",
			params: func() fee.CreateParams {
				p := valid
				p.AcademicYear = "  "

				return p
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fee.ErrInvalidAcademicYear)
			},
		},
		{
			name: "RepoError",
			params: func() fee.CreateParams {
				return valid
			},
			setupMock: func(m mocks) {
				m.students.EXPECT().Get(gomock.Any(), studentID).Return(&student.Student{ID: studentID}, nil)
				m.repo.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			params := tt.params()
			got, err := svc.Create(context.Background(), params)

			if tt.wantErr != nil {
				tt.wantErr(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, money.Amount(0), got.PaidAmount)
			assert.Equal(t, params.TotalAmount, got.Due())
			assert.Empty(t, got.Payments)

			if params.TotalAmount == 0 {
				assert.Equal(t, fee.StatusPaid, got.Status())
			} else {
				assert.Equal(t, fee.StatusPending, got.Status())
			}
		})
	}
}

// appendInPlace mimics a store's conditional update against rec.
func appendInPlace(rec *fee.Record) func(context.Context, uuid.UUID, *fee.Payment) (*fee.Record, error) {
	return func(_ context.Context, _ uuid.UUID, p *fee.Payment) (*fee.Record, error) {
		if rec.PaidAmount+p.Amount > rec.TotalAmount {
			return nil, &fee.OverpaymentError{Amount: p.Amount, Due: rec.Due()}
		}

		rec.PaidAmount += p.Amount
		rec.Payments = append(rec.Payments, *p)

		cp := *rec

		return &cp, nil
	}
}

func TestService_CollectPayment(t *testing.T) {
	recordID := uuid.New()

	type testCase struct {
		name       string
		total      money.Amount
		paid       money.Amount
		amount     money.Amount
		mode       fee.PaymentMode
		setupMock  func(m mocks, rec *fee.Record)
		wantErr    func(t *testing.T, err error)
		wantStatus fee.Status
		wantDue    money.Amount
	}

	tests := []testCase{
		{
			name:   "ExactPayoff",
			total:  50000,
			amount: 50000,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
				m.repo.EXPECT().AppendPayment(gomock.Any(), recordID, gomock.Any()).DoAndReturn(appendInPlace(rec))
				m.events.EXPECT().PublishPaymentCollected(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: fee.StatusPaid,
			wantDue:    0,
		},
		{
			name:   "Partial",
			total:  50000,
			amount: 20000,
			mode:   fee.PaymentModeUPI,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
				m.repo.EXPECT().AppendPayment(gomock.Any(), recordID, gomock.Any()).DoAndReturn(appendInPlace(rec))
				m.events.EXPECT().PublishPaymentCollected(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: fee.StatusPartial,
			wantDue:    30000,
		},
		{
			name:   "Overpayment",
			total:  100000,
			paid:   80000,
			amount: 30000,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
			},
			wantErr: func(t *testing.T, err error) {
				var overErr *fee.OverpaymentError
				require.ErrorAs(t, err, &overErr)
				assert.Equal(t, money.Amount(20000), overErr.Due)
			},
		},
		{
			name:   "ZeroAmount",
			total:  50000,
			amount: 0,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
			},
			wantErr: func(t *testing.T, err error) {
				var amountErr *fee.InvalidAmountError
				assert.ErrorAs(t, err, &amountErr)
			},
		},
		{
			name:   "NegativeAmount",
			total:  50000,
			amount: -5000,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
			},
			wantErr: func(t *testing.T, err error) {
				var amountErr *fee.InvalidAmountError
				assert.ErrorAs(t, err, &amountErr)
			},
		},
		{
			name:   "UnknownMode",
			total:  50000,
			amount: 100,
			mode:   "barter",
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fee.ErrInvalidPaymentMode)
			},
		},
		{
			name:   "NotFound",
			amount: 100,
			setupMock: func(m mocks, _ *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(nil, fee.ErrNotFound)
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fee.ErrNotFound)
			},
		},
		{
			name:   "ConcurrentPaymentWins",
			total:  50000,
			amount: 40000,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
				m.repo.EXPECT().
					AppendPayment(gomock.Any(), recordID, gomock.Any()).
					Return(nil, &fee.OverpaymentError{Amount: 40000, Due: 10000})
			},
			wantErr: func(t *testing.T, err error) {
				var overErr *fee.OverpaymentError
				assert.ErrorAs(t, err, &overErr)
			},
		},
		{
			name:   "PublishFailureIsNotFatal",
			total:  50000,
			amount: 10000,
			setupMock: func(m mocks, rec *fee.Record) {
				m.repo.EXPECT().GetRecord(gomock.Any(), recordID).Return(rec, nil)
				m.repo.EXPECT().AppendPayment(gomock.Any(), recordID, gomock.Any()).DoAndReturn(appendInPlace(rec))
				m.events.EXPECT().PublishPaymentCollected(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			wantStatus: fee.StatusPartial,
			wantDue:    40000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)

			rec := &fee.Record{ID: recordID, StudentID: uuid.New(), TotalAmount: tt.total, PaidAmount: tt.paid}
			if tt.paid > 0 {
				rec.Payments = []fee.Payment{{ID: uuid.New(), Amount: tt.paid}}
			}

			tt.setupMock(m, rec)

			got, err := svc.CollectPayment(context.Background(), fee.PaymentParams{
				RecordID:    recordID,
				Amount:      tt.amount,
				Mode:        tt.mode,
				CollectedBy: "accountant-1",
			})

			if tt.wantErr != nil {
				tt.wantErr(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status())
			assert.Equal(t, tt.wantDue, got.Due())
			require.NotEmpty(t, got.Payments)

			last := got.Payments[len(got.Payments)-1]
			assert.Equal(t, tt.amount, last.Amount)
			assert.Equal(t, "accountant-1", last.CollectedBy)
			assert.False(t, last.PaidAt.IsZero())

			if tt.mode == "" {
				assert.Equal(t, fee.PaymentModeCash, last.Mode)
			}
		})
	}
}

func TestService_CollectPayment_PublishesEvent(t *testing.T) {
	svc, m := newService(t)

	rec := &fee.Record{
		ID:           uuid.New(),
		StudentID:    uuid.New(),
		AcademicYear: "2025-2026",
		FeeType:      fee.FeeTypeHostel,
		TotalAmount:  60000,
	}

	m.repo.EXPECT().GetRecord(gomock.Any(), rec.ID).Return(rec, nil)
	m.repo.EXPECT().AppendPayment(gomock.Any(), rec.ID, gomock.Any()).DoAndReturn(appendInPlace(rec))
	m.events.EXPECT().
		PublishPaymentCollected(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e fee.PaymentCollected) error {
			assert.Equal(t, rec.ID, e.RecordID)
			assert.Equal(t, rec.StudentID, e.StudentID)
			assert.Equal(t, money.Amount(60000), e.Amount)
			assert.Equal(t, money.Amount(0), e.DueAmount)
			assert.Equal(t, fee.StatusPaid, e.Status)
			assert.Equal(t, fee.FeeTypeHostel, e.FeeType)

			return nil
		})

	_, err := svc.CollectPayment(context.Background(), fee.PaymentParams{RecordID: rec.ID, Amount: 60000})
	require.NoError(t, err)
}

// TestService_CollectPayment_Sequence drives random payments against one
// record and checks the ledger invariants after each attempt.
func TestService_CollectPayment_Sequence(t *testing.T) {
	svc, m := newService(t)

	rec := &fee.Record{ID: uuid.New(), StudentID: uuid.New(), TotalAmount: 100000}

	m.repo.EXPECT().GetRecord(gomock.Any(), rec.ID).
		DoAndReturn(func(context.Context, uuid.UUID) (*fee.Record, error) {
			cp := *rec
			return &cp, nil
		}).AnyTimes()
	m.repo.EXPECT().AppendPayment(gomock.Any(), rec.ID, gomock.Any()).DoAndReturn(appendInPlace(rec)).AnyTimes()
	m.events.EXPECT().PublishPaymentCollected(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		before := rec.PaidAmount
		amount := money.Amount(rng.Int64N(30000) - 2000)

		_, err := svc.CollectPayment(context.Background(), fee.PaymentParams{RecordID: rec.ID, Amount: amount})

		switch {
		case amount <= 0:
			var amountErr *fee.InvalidAmountError
			assert.ErrorAs(t, err, &amountErr)
		case before+amount > rec.TotalAmount:
			var overErr *fee.OverpaymentError
			assert.ErrorAs(t, err, &overErr)
		default:
			assert.NoError(t, err)
		}

		assert.GreaterOrEqual(t, rec.PaidAmount, before)
		assert.GreaterOrEqual(t, rec.PaidAmount, money.Amount(0))
		assert.LessOrEqual(t, rec.PaidAmount, rec.TotalAmount)

		var sum money.Amount
		for _, p := range rec.Payments {
			sum += p.Amount
		}

		assert.Equal(t, rec.PaidAmount, sum)
		assert.Equal(t, rec.PaidAmount == 0, rec.Status() == fee.StatusPending)
	}
}

func TestService_StudentSummary(t *testing.T) {
	studentID := uuid.New()

	t.Run("Aggregates", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().
			ListRecords(gomock.Any(), fee.ListFilter{StudentID: &studentID}).
			Return([]*fee.Record{
				{TotalAmount: 100000, PaidAmount: 100000},
				{TotalAmount: 50000, PaidAmount: 20000},
			}, nil).
			Times(2)

		first, err := svc.StudentSummary(context.Background(), studentID)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(150000), first.TotalFees)
		assert.Equal(t, money.Amount(120000), first.TotalPaid)
		assert.Equal(t, money.Amount(30000), first.TotalDue)
		assert.Equal(t, fee.StatusPartial, first.Status())

		second, err := svc.StudentSummary(context.Background(), studentID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("NoRecords", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().ListRecords(gomock.Any(), gomock.Any()).Return(nil, nil)

		got, err := svc.StudentSummary(context.Background(), studentID)
		require.NoError(t, err)
		assert.Zero(t, got.TotalFees)
		assert.Zero(t, got.TotalPaid)
		assert.Zero(t, got.TotalDue)
	})
}

func TestService_MySummary(t *testing.T) {
	t.Run("NoStudentForUser", func(t *testing.T) {
		svc, m := newService(t)

		m.students.EXPECT().GetByUserID(gomock.Any(), "user-9").Return(nil, student.ErrNotFound)

		_, err := svc.MySummary(context.Background(), "user-9")
		assert.ErrorIs(t, err, student.ErrNotFound)
	})

	t.Run("Resolved", func(t *testing.T) {
		svc, m := newService(t)

		st := &student.Student{ID: uuid.New(), UserID: "user-1"}
		m.students.EXPECT().GetByUserID(gomock.Any(), "user-1").Return(st, nil)
		m.repo.EXPECT().
			ListRecords(gomock.Any(), fee.ListFilter{StudentID: &st.ID}).
			Return([]*fee.Record{{TotalAmount: 1000, PaidAmount: 400}}, nil)

		got, err := svc.MySummary(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, money.Amount(600), got.TotalDue)
	})
}

func TestService_DueList(t *testing.T) {
	svc, m := newService(t)

	m.repo.EXPECT().
		ListRecords(gomock.Any(), fee.ListFilter{
			Statuses:      []fee.Status{fee.StatusPending, fee.StatusPartial},
			SortByDueDate: true,
		}).
		Return([]*fee.Record{{ID: uuid.New()}}, nil)

	got, err := svc.DueList(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_CollectionReport(t *testing.T) {
	jan := &fee.CollectedPayment{Payment: fee.Payment{Amount: 10000, PaidAt: date(2025, 1, 15)}}
	feb := &fee.CollectedPayment{Payment: fee.Payment{Amount: 25000, PaidAt: date(2025, 2, 10)}}

	type testCase struct {
		name      string
		filter    fee.ReportFilter
		setupMock func(m mocks)
		wantCount int
		wantTotal money.Amount
	}

	start, end := date(2025, 2, 1), date(2025, 2, 28)

	tests := []testCase{
		{
			name:   "Window",
			filter: fee.ReportFilter{Start: &start, End: &end},
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					ListPayments(gomock.Any(), fee.PaymentFilter{From: &start, To: &end}).
					Return([]*fee.CollectedPayment{feb}, nil)
			},
			wantCount: 1,
			wantTotal: 25000,
		},
		{
			name:   "SingleBoundIgnored",
			filter: fee.ReportFilter{Start: &start},
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					ListPayments(gomock.Any(), fee.PaymentFilter{}).
					Return([]*fee.CollectedPayment{feb, jan}, nil)
			},
			wantCount: 2,
			wantTotal: 35000,
		},
		{
			name: "Empty",
			setupMock: func(m mocks) {
				m.repo.EXPECT().ListPayments(gomock.Any(), fee.PaymentFilter{}).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.setupMock(m)

			got, err := svc.CollectionReport(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.Count)
			assert.Equal(t, tt.wantTotal, got.TotalCollection)

			for i := 1; i < len(got.Payments); i++ {
				assert.False(t, got.Payments[i].PaidAt.Before(got.Payments[i-1].PaidAt))
			}
		})
	}
}

func TestService_UpdateMetadata(t *testing.T) {
	id := uuid.New()

	t.Run("NothingToChange", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().GetRecord(gomock.Any(), id).Return(&fee.Record{ID: id}, nil)

		_, err := svc.UpdateMetadata(context.Background(), id, fee.MetadataUpdate{})
		require.NoError(t, err)
	})

	t.Run("Remarks", func(t *testing.T) {
		svc, m := newService(t)

		remarks := "scholarship review"
		update := fee.MetadataUpdate{Remarks: &remarks}
		m.repo.EXPECT().UpdateMetadata(gomock.Any(), id, update).Return(&fee.Record{ID: id, Remarks: remarks}, nil)

		got, err := svc.UpdateMetadata(context.Background(), id, update)
		require.NoError(t, err)
		assert.Equal(t, remarks, got.Remarks)
	})
}

func TestService_Delete(t *testing.T) {
	svc, m := newService(t)

	id := uuid.New()
	m.repo.EXPECT().DeleteRecord(gomock.Any(), id).Return(fee.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), fee.ErrNotFound)
}

func TestService_ImportBatch(t *testing.T) {
	known := &student.Student{ID: uuid.New(), RollNumber: "CS-01"}

	row := func(line int, ref string, amount money.Amount) fee.ImportRow {
		return fee.ImportRow{
			Line:         line,
			StudentRef:   ref,
			AcademicYear: "2025-2026",
			FeeType:      fee.FeeTypeExam,
			TotalAmount:  amount,
			DueDate:      date(2025, 11, 1),
		}
	}

	t.Run("AllValid", func(t *testing.T) {
		svc, m := newService(t)

		m.students.EXPECT().Resolve(gomock.Any(), "CS-01").Return(known, nil).Times(2)
		m.repo.EXPECT().
			CreateRecords(gomock.Any(), gomock.Len(2)).
			Return(nil)

		got, err := svc.ImportBatch(context.Background(), []fee.ImportRow{row(2, "CS-01", 5000), row(3, "CS-01", 0)})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, known.ID, got[0].StudentID)
	})

	t.Run("RejectsWholeBatch", func(t *testing.T) {
		svc, m := newService(t)

		m.students.EXPECT().Resolve(gomock.Any(), "CS-01").Return(known, nil).Times(2)
		m.students.EXPECT().Resolve(gomock.Any(), "CS-99").Return(nil, student.ErrNotFound)

		_, err := svc.ImportBatch(context.Background(), []fee.ImportRow{
			row(2, "CS-01", 5000),
			row(3, "CS-99", 5000),
			row(4, "CS-01", -100),
		})

		var importErr *fee.ImportError
		require.ErrorAs(t, err, &importErr)
		require.Len(t, importErr.Rows, 2)
		assert.Equal(t, 3, importErr.Rows[0].Line)
		assert.Equal(t, 4, importErr.Rows[1].Line)
	})

	t.Run("Empty", func(t *testing.T) {
		svc, _ := newService(t)

		got, err := svc.ImportBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
