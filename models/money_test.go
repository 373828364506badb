package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to INR", code: "", want: "INR"},
		{name: "usd", code: "USD", want: "USD"},
		{name: "lower case", code: "inr", want: "INR"},
		{name: "unsupported", code: "EUR", wantErr: true},
		{name: "garbage", code: "XXXXX", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price := Money{Amount: decimal.RequireFromString("100.10"), Currency: "INR"}

	line := price.Times(3)

	assert.True(t, decimal.RequireFromString("300.30").Equal(line.Amount))
	assert.Equal(t, "INR", line.Currency)
	assert.Equal(t, int64(30030), line.MinorUnits())
	assert.Equal(t, "300.30 INR", line.String())
}

func TestMoneyJSONRendersNumber(t *testing.T) {
	data, err := json.Marshal(Money{Amount: decimal.NewFromInt(250), Currency: "INR"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":250,"currency":"INR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":12.5,"currency":"USD"}`), &back))
	assert.True(t, decimal.RequireFromString("12.5").Equal(back.Amount))
}

func TestMoneyBSONRoundTrip(t *testing.T) {
	in := Product{Title: "lamp", Price: Money{Amount: decimal.RequireFromString("19.99"), Currency: "USD"}}

	data, err := bson.Marshal(in)
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, "USD", raw.Lookup("price", "currency").StringValue())
	_, isDecimal := raw.Lookup("price", "amount").Decimal128OK()
	assert.True(t, isDecimal)

	var out Product
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.True(t, in.Price.Amount.Equal(out.Price.Amount))
	assert.Equal(t, "USD", out.Price.Currency)
}
