package money_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    money.Amount
		wantErr bool
	}{
		{name: "whole", input: "1500", want: 150000},
		{name: "one decimal", input: "1500.5", want: 150050},
		{name: "grouped", input: "1,234.56", want: 123456},
		{name: "padded", input: "  80.00 ", want: 8000},
		{name: "negative", input: "-50", want: -5000},
		{name: "sub-paisa precision", input: "10.005", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "largest", input: "92233720368547758.07", want: money.Amount(math.MaxInt64)},
		{name: "smallest", input: "-92233720368547758.08", want: money.Amount(math.MinInt64)},
		{name: "just past max", input: "92233720368547758.08", wantErr: true},
		{name: "wraps to one", input: "184467440737095517.16", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEuropean(t *testing.T) {
	got, err := money.ParseEuropean("1.234,56")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(123456), got)

	got, err = money.ParseEuropean("10,00")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(1000), got)
}

func TestAmount_JSON(t *testing.T) {
	type body struct {
		Amount money.Amount `json:"amount"`
	}

	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 300.25}`), &b))
	assert.Equal(t, money.Amount(30025), b.Amount)

	out, err := json.Marshal(body{Amount: 50000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 500.00}`, string(out))

	err = json.Unmarshal([]byte(`{"amount": 1.999}`), &b)
	assert.ErrorIs(t, err, money.ErrPrecision)
}

func TestAmount_JSONOutOfRange(t *testing.T) {
	for _, raw := range []string{"184467440737095517.16", "92233720368547758.08", "1e30", "-1e30"} {
		t.Run(raw, func(t *testing.T) {
			var a money.Amount
			err := json.Unmarshal([]byte(raw), &a)
			assert.ErrorIs(t, err, money.ErrOutOfRange)
			assert.Zero(t, a)
		})
	}

	_, err := money.ParseEuropean("184.467.440.737.095.517,16")
	assert.ErrorIs(t, err, money.ErrOutOfRange)
}

func TestFormatter(t *testing.T) {
	f, err := money.NewFormatter("INR")
	require.NoError(t, err)
	assert.Contains(t, f.Format(123456), "234")

	_, err = money.NewFormatter("XX")
	assert.Error(t, err)
}
