package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts travel as JSON numbers, matching what clients send. The option is
// process-wide: every decimal.Decimal in a binary that links models encodes
// unquoted, including query.Summary.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const DateLayout = "2006-01-02"

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

// TransactionFields is the caller-writable part of a Transaction. Insert and
// update both take the full set; update replaces every field.
type TransactionFields struct {
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        string
}

// Validate reports the first field that cannot be stored.
func (f TransactionFields) Validate() error {
	if f.Type == "" {
		return &ValidationError{Field: "type", Message: "type is required"}
	}
	if !f.Type.Valid() {
		return &ValidationError{Field: "type", Message: "type must be income or expense"}
	}
	if f.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "amount must not be negative"}
	}
	if f.Date == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := time.Parse(DateLayout, f.Date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}
