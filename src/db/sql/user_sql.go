package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack-server/src/models"
)

const uniqueViolation = "23505"

func (s *PostgresStore) CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`
	user := models.User{Username: username, PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx, query, username, string(passwordHash)).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, models.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1
	`
	var (
		user models.User
		hash string
	)
	err := s.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.PasswordHash = []byte(hash)
	return &user, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
		RETURNING id
	`
	user := models.User{Username: username, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, query, username, string(passwordHash)).Scan(&user.ID)
	if err != nil {
		if isSQLiteUnique(err) {
			return nil, models.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = ?
	`
	var (
		user models.User
		hash string
	)
	err := s.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.PasswordHash = []byte(hash)
	return &user, nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE")
}
