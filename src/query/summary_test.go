package query_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack-server/src/models"
	"fintrack-server/src/query"
	"fintrack-server/src/query/querytest"
)

func TestSummarizeFixtures(t *testing.T) {
	txns, _ := querytest.Transactions(1)

	for _, c := range querytest.Cases {
		t.Run(c.Name, func(t *testing.T) {
			s := query.Summarize(c.Filter.Apply(txns))

			querytest.AssertSummary(t, c, s)

			sum := decimal.Zero
			for _, amount := range s.ByCategory {
				sum = sum.Add(amount)
			}
			assert.True(t, sum.Equal(s.TotalExpense), "byCategory sums to totalExpense")
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := query.Summarize(nil)

	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpense.IsZero())
	assert.NotNil(t, s.ByCategory)
	assert.Empty(t, s.ByCategory)
}

func TestSummarizeIncomeAndFood(t *testing.T) {
	txns := []models.Transaction{
		{ID: 1, Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1000), Date: "2024-01-01"},
		{ID: 2, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(200), Category: "Food", Date: "2024-01-02"},
	}

	s := query.Summarize(txns)

	assert.Equal(t, "1000", s.TotalIncome.String())
	assert.Equal(t, "200", s.TotalExpense.String())
	assert.Len(t, s.ByCategory, 1)
	assert.Equal(t, "200", s.ByCategory["Food"].String())
}

func TestSummaryEncodesAmountsAsNumbers(t *testing.T) {
	s := query.Summary{
		TotalIncome:  decimal.RequireFromString("12345678901234567.89"),
		TotalExpense: decimal.RequireFromString("0.5"),
		ByCategory:   map[string]decimal.Decimal{"Food": decimal.RequireFromString("0.5")},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalIncome":12345678901234567.89,"totalExpense":0.5,"byCategory":{"Food":0.5}}`, string(b))
}
