package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/api"
	"fintrack-server/src/auth"
	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
	"fintrack-server/src/models"
	"fintrack-server/src/query"
	"fintrack-server/src/query/querytest"
)

// newServer runs the real router over an in-memory sqlite store.
func newServer(t *testing.T) *HTTPClient {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, dbsql.MigrateSQLite(conn))

	store := dbsql.NewSQLiteStore(conn)
	authService := auth.NewService(store, []byte("client-test-secret"), auth.WithHashCost(bcrypt.MinCost))
	srv := httptest.NewServer(api.NewRouter(api.Services{
		Auth:         authService,
		Verifier:     authService,
		Transactions: query.NewEngine(store),
		CORSOrigins:  []string{"*"},
	}))
	t.Cleanup(srv.Close)

	return NewHTTPClient(srv.URL, srv.Client())
}

func signup(t *testing.T, c *HTTPClient, username, password string) string {
	t.Helper()
	resp, err := c.Signup(context.Background(), models.Credentials{Username: username, Password: password})
	require.NoError(t, err)
	return resp.Token
}

func TestLoginFallsBackToSignup(t *testing.T) {
	httpClient := newServer(t)
	session := NewMemoryStore()
	ctrl := NewController(httpClient, session)

	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))

	assert.True(t, ctrl.LoggedIn())
	assert.Equal(t, "ana", ctrl.Username())
	token, _ := session.Get("token")
	assert.NotEmpty(t, token)
	username, _ := session.Get("username")
	assert.Equal(t, "ana", username)
	assert.Empty(t, ctrl.Transactions())

	// The account now exists, so a second controller logs in directly.
	again := NewController(httpClient, NewMemoryStore())
	require.NoError(t, again.Login(context.Background(), "ana", "pw"))
}

// failingList delegates to the real client but cannot load transactions.
type failingList struct {
	*HTTPClient
	calls int
}

func (f *failingList) ListTransactions(context.Context, string, query.Filter) ([]models.Transaction, error) {
	f.calls++
	return nil, &APIError{Status: http.StatusServiceUnavailable, Message: "unavailable"}
}

func TestLoginSucceedsWhenLoadFails(t *testing.T) {
	stub := &failingList{HTTPClient: newServer(t)}
	session := NewMemoryStore()
	ctrl := NewController(stub, session)

	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))

	assert.Equal(t, 1, stub.calls, "fetched once, no retry")
	assert.True(t, ctrl.LoggedIn())
	assert.Empty(t, ctrl.Transactions())
	token, _ := session.Get("token")
	assert.NotEmpty(t, token)
}

func TestLoginWrongPasswordForExistingUser(t *testing.T) {
	httpClient := newServer(t)
	signup(t, httpClient, "ana", "right")
	session := NewMemoryStore()
	ctrl := NewController(httpClient, session)

	err := ctrl.Login(context.Background(), "ana", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "username already exists", apiErr.Message)
	assert.False(t, ctrl.LoggedIn())
	token, _ := session.Get("token")
	assert.Empty(t, token)
}

func TestLoginRequiresBothFields(t *testing.T) {
	ctrl := NewController(newServer(t), NewMemoryStore())

	err := ctrl.Login(context.Background(), "ana", "")

	assert.True(t, models.IsValidation(err))
}

func TestStartRestoresSession(t *testing.T) {
	httpClient := newServer(t)
	token := signup(t, httpClient, "ana", "pw")
	_, err := httpClient.CreateTransaction(context.Background(), token, querytest.Rows[0].Fields)
	require.NoError(t, err)

	session := NewMemoryStore()
	require.NoError(t, session.Set("token", token))
	require.NoError(t, session.Set("username", "ana"))
	ctrl := NewController(httpClient, session)

	require.NoError(t, ctrl.Start(context.Background()))

	assert.True(t, ctrl.LoggedIn())
	assert.Len(t, ctrl.Transactions(), 1)
}

func TestStartWithoutSession(t *testing.T) {
	ctrl := NewController(newServer(t), NewMemoryStore())

	require.NoError(t, ctrl.Start(context.Background()))

	assert.False(t, ctrl.LoggedIn())
}

func TestStartKeepsSessionWhenLoadFails(t *testing.T) {
	session := NewMemoryStore()
	require.NoError(t, session.Set("token", "stale"))
	require.NoError(t, session.Set("username", "ana"))
	ctrl := NewController(newServer(t), session)

	require.NoError(t, ctrl.Start(context.Background()))

	assert.True(t, ctrl.LoggedIn())
	assert.Empty(t, ctrl.Transactions())
}

func TestLocalFilterMatchesServer(t *testing.T) {
	httpClient := newServer(t)
	token := signup(t, httpClient, "ana", "pw")
	ids := make(map[string]int64)
	for _, r := range querytest.Rows {
		txn, err := httpClient.CreateTransaction(context.Background(), token, r.Fields)
		require.NoError(t, err)
		ids[r.Key] = txn.ID
	}

	ctrl := NewController(httpClient, NewMemoryStore())
	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))

	for _, c := range querytest.Cases {
		ctrl.SetFilter(c.Filter)
		assert.Equal(t, c.WantIDs(ids), querytest.IDs(ctrl.Visible()), c.Name)
		querytest.AssertSummary(t, c, ctrl.Summary())

		remote, err := httpClient.Summary(context.Background(), token, c.Filter)
		require.NoError(t, err, c.Name)
		querytest.AssertSummary(t, c, *remote)
	}
}

func TestAddTransactionPrependsAndResetsDraft(t *testing.T) {
	httpClient := newServer(t)
	ctrl := NewController(httpClient, NewMemoryStore())
	ctrl.SetClock(func() time.Time { return time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))

	assert.Equal(t, Draft{Type: models.TransactionTypeExpense, Category: "Food", Date: "2024-07-04"}, ctrl.Draft())

	first, err := addDraft(ctrl, "12.50", "2024-07-01")
	require.NoError(t, err)
	second, err := addDraft(ctrl, "3", "2024-06-01")
	require.NoError(t, err)

	// Prepend order, not date order, until the next full load.
	assert.Equal(t, []int64{second.ID, first.ID}, querytest.IDs(ctrl.Transactions()))
	assert.Equal(t, "2024-07-04", ctrl.Draft().Date)
	assert.Empty(t, ctrl.Draft().Amount)
	assert.True(t, decimal.RequireFromString("15.5").Equal(ctrl.Summary().TotalExpense))
}

func TestAddTransactionRejections(t *testing.T) {
	httpClient := newServer(t)
	ctrl := NewController(httpClient, NewMemoryStore())

	_, err := ctrl.AddTransaction(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))

	_, err = ctrl.AddTransaction(context.Background())
	assert.True(t, models.IsValidation(err), "empty amount")

	_, err = addDraft(ctrl, "ten", "2024-01-01")
	assert.True(t, models.IsValidation(err), "non-numeric amount")

	draft := ctrl.Draft()
	_, err = addDraft(ctrl, "5", "2024-13-01")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr, "server rejects the date")
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "2024-13-01", ctrl.Draft().Date, "draft kept after failure")
	assert.Equal(t, draft.Category, ctrl.Draft().Category)
	assert.Empty(t, ctrl.Transactions())
}

func TestDeleteTransaction(t *testing.T) {
	httpClient := newServer(t)
	ctrl := NewController(httpClient, NewMemoryStore())
	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))
	kept, err := addDraft(ctrl, "1", "2024-01-01")
	require.NoError(t, err)
	gone, err := addDraft(ctrl, "2", "2024-01-02")
	require.NoError(t, err)

	require.NoError(t, ctrl.DeleteTransaction(context.Background(), gone.ID))

	assert.Equal(t, []int64{kept.ID}, querytest.IDs(ctrl.Transactions()))
	require.NoError(t, ctrl.Logout())
	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))
	assert.Equal(t, []int64{kept.ID}, querytest.IDs(ctrl.Transactions()))
}

func TestLogoutClearsEverything(t *testing.T) {
	httpClient := newServer(t)
	session := NewMemoryStore()
	ctrl := NewController(httpClient, session)
	require.NoError(t, ctrl.Login(context.Background(), "ana", "pw"))
	_, err := addDraft(ctrl, "1", "2024-01-01")
	require.NoError(t, err)
	ctrl.SetFilter(query.Filter{Type: "income"})

	require.NoError(t, ctrl.Logout())

	assert.False(t, ctrl.LoggedIn())
	assert.Empty(t, ctrl.Transactions())
	assert.Equal(t, query.Filter{}, ctrl.Filter())
	token, _ := session.Get("token")
	assert.Empty(t, token)

	err = ctrl.DeleteTransaction(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	v, err := store.Get("token")
	require.NoError(t, err)
	assert.Empty(t, v, "missing file reads as empty")

	require.NoError(t, store.Set("token", "abc"))
	require.NoError(t, store.Set("username", "ana"))

	reopened := NewFileStore(path)
	v, err = reopened.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.Delete("token"))
	require.NoError(t, reopened.Delete("token"))
	v, err = store.Get("token")
	require.NoError(t, err)
	assert.Empty(t, v)
	v, err = store.Get("username")
	require.NoError(t, err)
	assert.Equal(t, "ana", v)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileStore(path).Get("token")

	assert.Error(t, err)
}

func addDraft(ctrl *Controller, amount, date string) (*models.Transaction, error) {
	d := ctrl.Draft()
	d.Amount = amount
	d.Date = date
	ctrl.SetDraft(d)
	return ctrl.AddTransaction(context.Background())
}

func TestHTTPClientUpdateTransaction(t *testing.T) {
	httpClient := newServer(t)
	token := signup(t, httpClient, "ana", "pw")
	other := signup(t, httpClient, "bob", "pw")
	created, err := httpClient.CreateTransaction(context.Background(), token, querytest.Rows[1].Fields)
	require.NoError(t, err)

	replacement := querytest.Rows[0].Fields
	updated, err := httpClient.UpdateTransaction(context.Background(), token, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, replacement.Category, updated.Category)

	_, err = httpClient.UpdateTransaction(context.Background(), other, created.ID, replacement)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestNewHTTPClientDefaultsWithoutTimeout(t *testing.T) {
	c := NewHTTPClient("http://localhost:8080/", nil)
	require.NotNil(t, c.http)
	assert.Zero(t, c.http.Timeout)
	assert.Equal(t, "http://localhost:8080", c.baseURL)

	injected := &http.Client{Timeout: time.Second}
	assert.Same(t, injected, NewHTTPClient("http://localhost:8080", injected).http)
}
