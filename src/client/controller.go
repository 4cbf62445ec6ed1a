package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack-server/src/models"
	"fintrack-server/src/query"
)

// API is the part of the server the controller drives. *HTTPClient
// implements it.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Signup(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	ListTransactions(ctx context.Context, token string, filter query.Filter) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, token string, f models.TransactionFields) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, token string, id int64) error
}

var ErrNotLoggedIn = errors.New("not logged in")

// Draft is the add-transaction form. Amount stays text until submitted.
type Draft struct {
	Type        models.TransactionType
	Amount      string
	Category    string
	Description string
	Date        string
}

// Controller holds the client state. Every method is safe for concurrent
// use; each network call is made once with no retry.
type Controller struct {
	api     API
	session KeyValueStore
	now     func() time.Time

	mu       sync.Mutex
	username string
	token    string
	txns     []models.Transaction
	filter   query.Filter
	draft    Draft
}

func NewController(api API, session KeyValueStore) *Controller {
	c := &Controller{api: api, session: session, now: time.Now}
	c.draft = c.defaultDraft()
	return c
}

// SetClock replaces the clock used for the draft's default date.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	c.draft = c.defaultDraft()
}

func (c *Controller) defaultDraft() Draft {
	return Draft{
		Type:     models.TransactionTypeExpense,
		Category: "Food",
		Date:     c.now().Format(models.DateLayout),
	}
}

// Start restores a persisted session and loads its transactions. A failed
// load is logged and leaves the cache empty.
func (c *Controller) Start(ctx context.Context) error {
	token, err := c.session.Get(sessionTokenKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	username, err := c.session.Get(sessionUsernameKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if token == "" || username == "" {
		return nil
	}

	c.mu.Lock()
	c.token, c.username = token, username
	c.mu.Unlock()

	txns, err := c.api.ListTransactions(ctx, token, query.Filter{})
	if err != nil {
		log.Printf("ERROR: Failed to load transactions for %s: %v", username, err)
		return nil
	}

	c.mu.Lock()
	c.txns = txns
	c.mu.Unlock()
	return nil
}

// Login signs in, creating the account when the server rejects the
// credentials, then persists the session and loads the transaction list.
// A failed load is logged like in Start; the session stays saved.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return &models.ValidationError{Message: "enter username and password"}
	}
	creds := models.Credentials{Username: username, Password: password}

	resp, err := c.api.Login(ctx, creds)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError {
			return fmt.Errorf("login failed: %w", err)
		}
		resp, err = c.api.Signup(ctx, creds)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}
	}
	if resp.Token == "" || resp.User.Username == "" {
		return errors.New("login response missing token or user data")
	}

	if err := c.session.Set(sessionTokenKey, resp.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := c.session.Set(sessionUsernameKey, resp.User.Username); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	c.mu.Lock()
	c.token, c.username = resp.Token, resp.User.Username
	c.txns = nil
	c.mu.Unlock()

	txns, err := c.api.ListTransactions(ctx, resp.Token, query.Filter{})
	if err != nil {
		log.Printf("ERROR: Failed to load transactions for %s: %v", resp.User.Username, err)
		return nil
	}

	c.mu.Lock()
	c.txns = txns
	c.mu.Unlock()
	return nil
}

// Logout forgets the persisted session and every piece of in-memory state.
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.token, c.username = "", ""
	c.txns = nil
	c.filter = query.Filter{}
	c.draft = c.defaultDraft()
	c.mu.Unlock()

	for _, key := range []string{sessionTokenKey, sessionUsernameKey} {
		if err := c.session.Delete(key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// Username is empty when logged out.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Token is the current bearer token, empty when logged out.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Controller) LoggedIn() bool {
	return c.Username() != ""
}

func (c *Controller) SetFilter(f query.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f.Normalize()
}

func (c *Controller) Filter() query.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Transactions returns the whole cache in display order.
func (c *Controller) Transactions() []models.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Transaction{}, c.txns...)
}

// Visible returns the cached transactions the current filter admits, in
// cache order.
func (c *Controller) Visible() []models.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Apply(c.txns)
}

// Summary aggregates Visible locally.
func (c *Controller) Summary() query.Summary {
	return query.Summarize(c.Visible())
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
}

// AddTransaction submits the draft. On success the stored row goes to the
// front of the cache and the draft is reset; on failure nothing changes.
func (c *Controller) AddTransaction(ctx context.Context) (*models.Transaction, error) {
	c.mu.Lock()
	token, draft := c.token, c.draft
	c.mu.Unlock()

	if token == "" {
		return nil, ErrNotLoggedIn
	}
	amountText := strings.TrimSpace(draft.Amount)
	if amountText == "" {
		return nil, &models.ValidationError{Field: "amount", Message: "enter amount"}
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return nil, &models.ValidationError{Field: "amount", Message: "amount must be a number"}
	}

	created, err := c.api.CreateTransaction(ctx, token, models.TransactionFields{
		Type:        draft.Type,
		Amount:      amount,
		Category:    draft.Category,
		Description: draft.Description,
		Date:        draft.Date,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.txns = append([]models.Transaction{*created}, c.txns...)
	c.draft = c.defaultDraft()
	c.mu.Unlock()
	return created, nil
}

// DeleteTransaction removes id on the server, then from the cache.
func (c *Controller) DeleteTransaction(ctx context.Context, id int64) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == "" {
		return ErrNotLoggedIn
	}
	if err := c.api.DeleteTransaction(ctx, token, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.txns[:0:0]
	for _, t := range c.txns {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.txns = kept
	return nil
}
