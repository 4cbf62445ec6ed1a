// Package query holds the transaction filter predicate, the newest-first
// ordering and the summary aggregation. The server engine and the client
// controller both call these functions so the two never disagree.
package query

import (
	"net/url"
	"sort"
	"strings"

	"fintrack-server/src/models"
)

// All is the filter value meaning "no restriction" for type and category.
const All = "all"

// Filter restricts a listing or summary. Empty fields are inactive. From and
// To are inclusive YYYY-MM-DD bounds compared as strings.
type Filter struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// ParseFilter reads the type, category, from and to query parameters.
func ParseFilter(values url.Values) Filter {
	return Filter{
		Type:     strings.TrimSpace(values.Get("type")),
		Category: values.Get("category"),
		From:     strings.TrimSpace(values.Get("from")),
		To:       strings.TrimSpace(values.Get("to")),
	}.Normalize()
}

// Normalize clears the "all" sentinel so callers only need to test for "".
func (f Filter) Normalize() Filter {
	if f.Type == All {
		f.Type = ""
	}
	if f.Category == All {
		f.Category = ""
	}
	return f
}

// Values is the inverse of ParseFilter.
func (f Filter) Values() url.Values {
	f = f.Normalize()
	v := url.Values{}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.From != "" {
		v.Set("from", f.From)
	}
	if f.To != "" {
		v.Set("to", f.To)
	}
	return v
}

// Matches reports whether t satisfies every active predicate. Ownership is
// not part of the filter; stores scope by owner before this applies.
func (f Filter) Matches(t models.Transaction) bool {
	f = f.Normalize()
	if f.Type != "" && string(t.Type) != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.From != "" && t.Date < f.From {
		return false
	}
	if f.To != "" && t.Date > f.To {
		return false
	}
	return true
}

// Apply returns the matching transactions in input order.
func (f Filter) Apply(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortNewestFirst orders by date descending, then id descending.
func SortNewestFirst(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date != txns[j].Date {
			return txns[i].Date > txns[j].Date
		}
		return txns[i].ID > txns[j].ID
	})
}
