package query

import (
	"context"
	"fmt"

	"fintrack-server/src/models"
)

// Store is the owner-scoped transaction persistence the engine runs on.
// Implementations must restrict every statement to ownerID themselves.
type Store interface {
	InsertTransaction(ctx context.Context, ownerID int64, fields models.TransactionFields) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id, ownerID int64, fields models.TransactionFields) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id, ownerID int64) error
	GetTransaction(ctx context.Context, id, ownerID int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, ownerID int64, filter Filter) ([]models.Transaction, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) Create(ctx context.Context, ownerID int64, fields models.TransactionFields) (*models.Transaction, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return e.store.InsertTransaction(ctx, ownerID, fields)
}

func (e *Engine) Update(ctx context.Context, id, ownerID int64, fields models.TransactionFields) (*models.Transaction, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return e.store.UpdateTransaction(ctx, id, ownerID, fields)
}

func (e *Engine) Delete(ctx context.Context, id, ownerID int64) error {
	return e.store.DeleteTransaction(ctx, id, ownerID)
}

func (e *Engine) Get(ctx context.Context, id, ownerID int64) (*models.Transaction, error) {
	return e.store.GetTransaction(ctx, id, ownerID)
}

// List returns the owner's matching transactions, newest first. The result
// is never nil so it encodes as an empty JSON array.
func (e *Engine) List(ctx context.Context, ownerID int64, filter Filter) ([]models.Transaction, error) {
	txns, err := e.store.ListTransactions(ctx, ownerID, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}

// Summary aggregates exactly the rows List would return for the same filter,
// so an active type filter also zeroes the other total.
func (e *Engine) Summary(ctx context.Context, ownerID int64, filter Filter) (Summary, error) {
	txns, err := e.List(ctx, ownerID, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return Summarize(txns), nil
}
