// Package querytest is the fixture table shared by the engine, store and
// client tests, so every implementation of the filter and summary is checked
// against the same expectations.
package querytest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fintrack-server/src/models"
	"fintrack-server/src/query"
)

type Row struct {
	Key    string
	Fields models.TransactionFields
}

// Rows must be inserted in this order; ties on date are broken by id, so
// insertion order is part of the expectations below.
var Rows = []Row{
	{"salary", fields(models.TransactionTypeIncome, "1000", "Salary", "January pay", "2024-01-01")},
	{"groceries", fields(models.TransactionTypeExpense, "200", "Food", "", "2024-01-02")},
	{"bus", fields(models.TransactionTypeExpense, "35.50", "Transport", "monthly pass", "2024-01-02")},
	{"misc", fields(models.TransactionTypeExpense, "12.25", "", "", "2024-01-15")},
	{"freelance", fields(models.TransactionTypeIncome, "150", "Freelance", "", "2024-02-01")},
	{"dinner", fields(models.TransactionTypeExpense, "80", "Food", "birthday", "2024-02-01")},
	{"coupon", fields(models.TransactionTypeExpense, "0", "Food", "", "2024-02-10")},
	{"refund", fields(models.TransactionTypeIncome, "50", "Food", "returned order", "2024-03-01")},
}

type Case struct {
	Name       string
	Filter     query.Filter
	WantKeys   []string
	Income     string
	Expense    string
	ByCategory map[string]string
}

var Cases = []Case{
	{
		Name:       "no filter",
		WantKeys:   []string{"refund", "coupon", "dinner", "freelance", "misc", "bus", "groceries", "salary"},
		Income:     "1200",
		Expense:    "327.75",
		ByCategory: map[string]string{"Food": "280", "Transport": "35.5", query.Uncategorized: "12.25"},
	},
	{
		Name:       "all sentinel",
		Filter:     query.Filter{Type: query.All, Category: query.All},
		WantKeys:   []string{"refund", "coupon", "dinner", "freelance", "misc", "bus", "groceries", "salary"},
		Income:     "1200",
		Expense:    "327.75",
		ByCategory: map[string]string{"Food": "280", "Transport": "35.5", query.Uncategorized: "12.25"},
	},
	{
		Name:       "expenses only",
		Filter:     query.Filter{Type: "expense"},
		WantKeys:   []string{"coupon", "dinner", "misc", "bus", "groceries"},
		Income:     "0",
		Expense:    "327.75",
		ByCategory: map[string]string{"Food": "280", "Transport": "35.5", query.Uncategorized: "12.25"},
	},
	{
		Name:       "income only zeroes expense",
		Filter:     query.Filter{Type: "income"},
		WantKeys:   []string{"refund", "freelance", "salary"},
		Income:     "1200",
		Expense:    "0",
		ByCategory: map[string]string{},
	},
	{
		Name:       "category spans both types",
		Filter:     query.Filter{Category: "Food"},
		WantKeys:   []string{"refund", "coupon", "dinner", "groceries"},
		Income:     "50",
		Expense:    "280",
		ByCategory: map[string]string{"Food": "280"},
	},
	{
		Name:       "lower bound inclusive",
		Filter:     query.Filter{From: "2024-02-01"},
		WantKeys:   []string{"refund", "coupon", "dinner", "freelance"},
		Income:     "200",
		Expense:    "80",
		ByCategory: map[string]string{"Food": "80"},
	},
	{
		Name:       "upper bound inclusive",
		Filter:     query.Filter{To: "2024-01-02"},
		WantKeys:   []string{"bus", "groceries", "salary"},
		Income:     "1000",
		Expense:    "235.5",
		ByCategory: map[string]string{"Food": "200", "Transport": "35.5"},
	},
	{
		Name:       "date range",
		Filter:     query.Filter{From: "2024-01-02", To: "2024-01-15"},
		WantKeys:   []string{"misc", "bus", "groceries"},
		Income:     "0",
		Expense:    "247.75",
		ByCategory: map[string]string{"Food": "200", "Transport": "35.5", query.Uncategorized: "12.25"},
	},
	{
		Name:       "every predicate",
		Filter:     query.Filter{Type: "expense", Category: "Food", From: "2024-02-01", To: "2024-02-28"},
		WantKeys:   []string{"coupon", "dinner"},
		Income:     "0",
		Expense:    "80",
		ByCategory: map[string]string{"Food": "80"},
	},
	{
		Name:       "unknown category",
		Filter:     query.Filter{Category: "Rent"},
		WantKeys:   []string{},
		Income:     "0",
		Expense:    "0",
		ByCategory: map[string]string{},
	},
	{
		Name:       "sentinel is not a stored category",
		Filter:     query.Filter{Category: query.Uncategorized},
		WantKeys:   []string{},
		Income:     "0",
		Expense:    "0",
		ByCategory: map[string]string{},
	},
	{
		Name:       "empty range",
		Filter:     query.Filter{From: "2024-03-02"},
		WantKeys:   []string{},
		Income:     "0",
		Expense:    "0",
		ByCategory: map[string]string{},
	},
}

// Transactions materialises Rows for ownerID with ids 1..n in insertion
// order, the way a fresh store would assign them.
func Transactions(ownerID int64) ([]models.Transaction, map[string]int64) {
	txns := make([]models.Transaction, 0, len(Rows))
	ids := make(map[string]int64, len(Rows))
	for i, r := range Rows {
		id := int64(i + 1)
		ids[r.Key] = id
		txns = append(txns, models.Transaction{
			ID:          id,
			UserID:      ownerID,
			Type:        r.Fields.Type,
			Amount:      r.Fields.Amount,
			Category:    r.Fields.Category,
			Description: r.Fields.Description,
			Date:        r.Fields.Date,
		})
	}
	return txns, ids
}

// WantIDs resolves the case's expected keys through ids.
func (c Case) WantIDs(ids map[string]int64) []int64 {
	out := make([]int64, 0, len(c.WantKeys))
	for _, k := range c.WantKeys {
		out = append(out, ids[k])
	}
	return out
}

func IDs(txns []models.Transaction) []int64 {
	out := make([]int64, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

// AssertSummary compares decimals by value so "35.50" equals "35.5".
func AssertSummary(t testing.TB, c Case, got query.Summary) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(c.Income).Equal(got.TotalIncome),
		"%s: totalIncome want %s got %s", c.Name, c.Income, got.TotalIncome)
	assert.True(t, decimal.RequireFromString(c.Expense).Equal(got.TotalExpense),
		"%s: totalExpense want %s got %s", c.Name, c.Expense, got.TotalExpense)
	if assert.Len(t, got.ByCategory, len(c.ByCategory), "%s: byCategory keys", c.Name) {
		for category, want := range c.ByCategory {
			amount, ok := got.ByCategory[category]
			if assert.True(t, ok, "%s: missing category %q", c.Name, category) {
				assert.True(t, decimal.RequireFromString(want).Equal(amount),
					"%s: byCategory[%s] want %s got %s", c.Name, category, want, amount)
			}
		}
	}
}

func fields(typ models.TransactionType, amount, category, description, date string) models.TransactionFields {
	return models.TransactionFields{
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
		Date:        date,
	}
}
