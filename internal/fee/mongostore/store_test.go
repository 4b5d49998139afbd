package mongostore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/MrJamesThe3rd/bursar/internal/fee"
)

func TestPaymentsPipeline(t *testing.T) {
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC)

	tests := []struct {
		name      string
		filter    fee.PaymentFilter
		wantMatch bool
	}{
		{name: "NoBounds", filter: fee.PaymentFilter{}},
		{name: "OnlyFrom", filter: fee.PaymentFilter{From: &from}},
		{name: "OnlyTo", filter: fee.PaymentFilter{To: &to}},
		{name: "Window", filter: fee.PaymentFilter{From: &from, To: &to}, wantMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := paymentsPipeline(tt.filter)

			stages := make([]string, len(pipeline))
			for i, stage := range pipeline {
				require.Len(t, stage, 1)
				stages[i] = stage[0].Key
			}

			if !tt.wantMatch {
				assert.Equal(t, []string{"$unwind", "$sort", "$project"}, stages)
				return
			}

			require.Equal(t, []string{"$unwind", "$match", "$sort", "$project"}, stages)

			match, ok := pipeline[1][0].Value.(bson.M)
			require.True(t, ok)
			assert.Equal(t, bson.M{
				"paymentHistory.paymentDate": bson.M{"$gte": from, "$lte": to},
			}, match)
		})
	}

	sort, ok := paymentsPipeline(fee.PaymentFilter{})[1][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "paymentHistory.paymentDate", Value: 1}}, sort)
}

func TestStatusFilter(t *testing.T) {
	tests := []struct {
		status fee.Status
		want   bson.M
	}{
		{
			status: fee.StatusPaid,
			want:   bson.M{"$expr": bson.M{"$gte": bson.A{"$paidAmount", "$totalAmount"}}},
		},
		{
			status: fee.StatusPartial,
			want: bson.M{
				"paidAmount": bson.M{"$gt": 0},
				"$expr":      bson.M{"$lt": bson.A{"$paidAmount", "$totalAmount"}},
			},
		},
		{
			status: fee.StatusPending,
			want:   bson.M{"paidAmount": 0, "totalAmount": bson.M{"$gt": 0}},
		},
		{
			status: fee.Status("refunded"),
			want:   bson.M{"_id": bson.M{"$exists": false}},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFilter(tt.status))
		})
	}
}

func TestListQuery(t *testing.T) {
	studentID := uuid.New()

	tests := []struct {
		name   string
		filter fee.ListFilter
		want   bson.M
	}{
		{name: "Empty", filter: fee.ListFilter{}, want: bson.M{}},
		{
			name:   "AcademicYear",
			filter: fee.ListFilter{AcademicYear: "2025-2026"},
			want:   bson.M{"academicYear": "2025-2026"},
		},
		{
			name:   "Student",
			filter: fee.ListFilter{StudentID: &studentID},
			want:   bson.M{"student": studentID.String()},
		},
		{
			name:   "DueStatuses",
			filter: fee.ListFilter{Statuses: []fee.Status{fee.StatusPending, fee.StatusPartial}},
			want: bson.M{"$or": bson.A{
				statusFilter(fee.StatusPending),
				statusFilter(fee.StatusPartial),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listQuery(tt.filter))
		})
	}
}
