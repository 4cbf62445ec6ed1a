package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/query"
)

type TransactionService interface {
	Create(ctx context.Context, ownerID int64, fields models.TransactionFields) (*models.Transaction, error)
	Update(ctx context.Context, id, ownerID int64, fields models.TransactionFields) (*models.Transaction, error)
	Delete(ctx context.Context, id, ownerID int64) error
	List(ctx context.Context, ownerID int64, filter query.Filter) ([]models.Transaction, error)
	Summary(ctx context.Context, ownerID int64, filter query.Filter) (query.Summary, error)
}

type transactionRequest struct {
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// fields reports missing type, amount and date before anything the engine
// validates, so the message names the absent field.
func (req transactionRequest) fields() (models.TransactionFields, error) {
	if req.Type == "" {
		return models.TransactionFields{}, &models.ValidationError{Field: "type", Message: "type is required"}
	}
	if len(req.Amount) == 0 || string(req.Amount) == "null" {
		return models.TransactionFields{}, &models.ValidationError{Field: "amount", Message: "amount is required"}
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(req.Amount); err != nil {
		return models.TransactionFields{}, &models.ValidationError{Field: "amount", Message: "amount must be a number"}
	}
	if req.Date == "" {
		return models.TransactionFields{}, &models.ValidationError{Field: "date", Message: "date is required"}
	}
	return models.TransactionFields{
		Type:        models.TransactionType(req.Type),
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}, nil
}

func decodeTransaction(r *http.Request) (models.TransactionFields, error) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.TransactionFields{}, &models.ValidationError{Message: "invalid request"}
	}
	return req.fields()
}

func ListTransactions(svc TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())
		filter := query.ParseFilter(r.URL.Query())

		txns, err := svc.List(r.Context(), user.ID, filter)
		if err != nil {
			respondError(w, err, "list transactions for user "+strconv.FormatInt(user.ID, 10))
			return
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

func CreateTransaction(svc TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())

		fields, err := decodeTransaction(r)
		if err != nil {
			respondError(w, err, "decode transaction")
			return
		}

		created, err := svc.Create(r.Context(), user.ID, fields)
		if err != nil {
			respondError(w, err, "create transaction for user "+strconv.FormatInt(user.ID, 10))
			return
		}

		log.Printf("INFO: Created transaction id %d for user %d, type %s", created.ID, user.ID, created.Type)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(svc TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())

		fields, err := decodeTransaction(r)
		if err != nil {
			respondError(w, err, "decode transaction")
			return
		}

		// A non-numeric id cannot name any row.
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, models.ErrNotFound, "update transaction")
			return
		}

		updated, err := svc.Update(r.Context(), id, user.ID, fields)
		if err != nil {
			respondError(w, err, "update transaction "+strconv.FormatInt(id, 10))
			return
		}

		log.Printf("INFO: Updated transaction id %d for user %d", updated.ID, user.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteTransaction succeeds whether or not the row existed.
func DeleteTransaction(svc TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())

		if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
			if err := svc.Delete(r.Context(), id, user.ID); err != nil {
				respondError(w, err, "delete transaction "+strconv.FormatInt(id, 10))
				return
			}
			log.Printf("INFO: Deleted transaction id %d for user %d", id, user.ID)
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func GetSummary(svc TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())
		filter := query.ParseFilter(r.URL.Query())

		summary, err := svc.Summary(r.Context(), user.ID, filter)
		if err != nil {
			respondError(w, err, "summarize transactions for user "+strconv.FormatInt(user.ID, 10))
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
