package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/currency"
)

const DefaultCurrency = "INR"

var supportedCurrencies = map[currency.Unit]struct{}{
	currency.INR: {},
	currency.USD: {},
}

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an exact decimal amount in a supported currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ParseCurrency normalises an ISO code, defaulting to INR when empty.
func ParseCurrency(code string) (string, error) {
	if code == "" {
		return DefaultCurrency, nil
	}

	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return "", fmt.Errorf("currency %q: %w", code, err)
	}
	if _, ok := supportedCurrencies[unit]; !ok {
		return "", fmt.Errorf("currency %q is not supported", code)
	}

	return unit.String(), nil
}

func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	cur, err := ParseCurrency(code)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: cur}, nil
}

// Times returns the amount multiplied by qty in the same currency.
func (m Money) Times(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

// MinorUnits returns the amount in paise/cents, rounded half away from zero.
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(2).Round(0).IntPart()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

type moneyDocument struct {
	Amount   primitive.Decimal128 `bson:"amount"`
	Currency string               `bson:"currency"`
}

func (m Money) MarshalBSON() ([]byte, error) {
	amount, err := primitive.ParseDecimal128(m.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("money.MarshalBSON: %w", err)
	}
	return bson.Marshal(moneyDocument{Amount: amount, Currency: m.Currency})
}

func (m *Money) UnmarshalBSON(data []byte) error {
	var doc moneyDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("money.UnmarshalBSON: %w", err)
	}

	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return fmt.Errorf("money.UnmarshalBSON: %w", err)
	}

	m.Amount = amount
	m.Currency = doc.Currency
	return nil
}
