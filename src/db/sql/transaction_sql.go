package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fintrack-server/src/models"
	"fintrack-server/src/query"
)

const orderNewestFirst = "ORDER BY date DESC, id DESC"

// Postgres

const pgTransactionColumns = "id, user_id, type, amount::text, description, category, date"

func scanPgTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		t      models.Transaction
		amount string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Description, &t.Category, &t.Date); err != nil {
		return nil, err
	}
	d, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = d
	return &t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, ownerID int64, f models.TransactionFields) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, type, amount, description, category, date)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING ` + pgTransactionColumns
	t, err := scanPgTransaction(s.pool.QueryRow(ctx, query,
		ownerID, string(f.Type), f.Amount.String(), f.Description, f.Category, f.Date))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, id, ownerID int64, f models.TransactionFields) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET type = $3, amount = $4::numeric, description = $5, category = $6, date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + pgTransactionColumns
	t, err := scanPgTransaction(s.pool.QueryRow(ctx, query,
		id, ownerID, string(f.Type), f.Amount.String(), f.Description, f.Category, f.Date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	if _, err := s.pool.Exec(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id, ownerID int64) (*models.Transaction, error) {
	query := `SELECT ` + pgTransactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	t, err := scanPgTransaction(s.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, ownerID int64, filter query.Filter) ([]models.Transaction, error) {
	where, args := filterClause(ownerID, filter, dollarPlaceholder)
	q := `SELECT ` + pgTransactionColumns + ` FROM transactions ` + where + ` ` + orderNewestFirst

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanPgTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// SQLite

const sqliteTransactionColumns = "id, user_id, type, amount, description, category, date"

type rowScanner interface {
	Scan(dest ...any) error
}

// Amounts are stored as decimal text so no value passes through float64.
func scanSQLiteTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t      models.Transaction
		amount string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Description, &t.Category, &t.Date); err != nil {
		return nil, err
	}
	d, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = d
	return &t, nil
}

func (s *SQLiteStore) InsertTransaction(ctx context.Context, ownerID int64, f models.TransactionFields) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, type, amount, description, category, date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + sqliteTransactionColumns
	t, err := scanSQLiteTransaction(s.db.QueryRowContext(ctx, query,
		ownerID, string(f.Type), f.Amount.String(), f.Description, f.Category, f.Date))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id, ownerID int64, f models.TransactionFields) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET type = ?, amount = ?, description = ?, category = ?, date = ?
		WHERE id = ? AND user_id = ?
		RETURNING ` + sqliteTransactionColumns
	t, err := scanSQLiteTransaction(s.db.QueryRowContext(ctx, query,
		string(f.Type), f.Amount.String(), f.Description, f.Category, f.Date, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM transactions WHERE id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id, ownerID int64) (*models.Transaction, error) {
	query := `SELECT ` + sqliteTransactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`
	t, err := scanSQLiteTransaction(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID int64, filter query.Filter) ([]models.Transaction, error) {
	where, args := filterClause(ownerID, filter, questionPlaceholder)
	q := `SELECT ` + sqliteTransactionColumns + ` FROM transactions ` + where + ` ` + orderNewestFirst

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanSQLiteTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
