// Package client talks to the fintrack API and keeps the local view a
// terminal or other front end renders: session, cached transactions, the
// current filter and the add-transaction draft.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack-server/src/models"
	"fintrack-server/src/query"
)

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient uses httpClient as given; a nil client gets no timeout, so
// deadlines come from the caller's context.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Signup(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListTransactions(ctx context.Context, token string, filter query.Filter) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := c.do(ctx, http.MethodGet, withQuery("/api/transactions", filter), token, nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *HTTPClient) Summary(ctx context.Context, token string, filter query.Filter) (*query.Summary, error) {
	var s query.Summary
	if err := c.do(ctx, http.MethodGet, withQuery("/api/summary", filter), token, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateTransaction(ctx context.Context, token string, f models.TransactionFields) (*models.Transaction, error) {
	var txn models.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", token, fieldsBody(f), &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) UpdateTransaction(ctx context.Context, token string, id int64, f models.TransactionFields) (*models.Transaction, error) {
	var txn models.Transaction
	if err := c.do(ctx, http.MethodPut, "/api/transactions/"+strconv.FormatInt(id, 10), token, fieldsBody(f), &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *HTTPClient) DeleteTransaction(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func fieldsBody(f models.TransactionFields) map[string]any {
	return map[string]any{
		"type":        f.Type,
		"amount":      f.Amount,
		"category":    f.Category,
		"description": f.Description,
		"date":        f.Date,
	}
}

func withQuery(path string, filter query.Filter) string {
	if v := filter.Values(); len(v) > 0 {
		return path + "?" + v.Encode()
	}
	return path
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
