package query

import (
	"github.com/shopspring/decimal"

	"fintrack-server/src/models"
)

// Uncategorized replaces an empty category in the expense breakdown.
const Uncategorized = "Uncategorized"

type Summary struct {
	TotalIncome  decimal.Decimal            `json:"totalIncome"`
	TotalExpense decimal.Decimal            `json:"totalExpense"`
	ByCategory   map[string]decimal.Decimal `json:"byCategory"`
}

// Summarize totals income and expense and breaks expenses down by category.
// Callers filter first; Summarize counts every row it is given.
func Summarize(txns []models.Transaction) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		ByCategory:   make(map[string]decimal.Decimal),
	}
	for _, t := range txns {
		switch t.Type {
		case models.TransactionTypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case models.TransactionTypeExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			category := t.Category
			if category == "" {
				category = Uncategorized
			}
			s.ByCategory[category] = s.ByCategory[category].Add(t.Amount)
		}
	}
	return s
}
