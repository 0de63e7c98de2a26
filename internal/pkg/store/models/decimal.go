package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"loan-ledger/internal/pkg/consts"
)

// ToDecimal128 stores money as BSON decimal so no precision is lost at rest.
func ToDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("%w: amount %s not representable as Decimal128: %v",
			consts.ErrorInvalidAmount, d.String(), err)
	}
	return out, nil
}

// decimalWriter collects the first conversion error across many fields.
type decimalWriter struct {
	err error
}

func (w *decimalWriter) convert(d decimal.Decimal) primitive.Decimal128 {
	out, err := ToDecimal128(d)
	if err != nil && w.err == nil {
		w.err = err
	}
	return out
}

func FromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}
