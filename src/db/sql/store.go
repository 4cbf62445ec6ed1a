package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack-server/src/query"
)

// PostgresStore keeps users and transactions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SQLiteStore keeps users and transactions in a sqlite database opened with
// db.OpenSQLite and migrated with MigrateSQLite.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// filterClause renders the owner scope plus every active predicate of f as
// a WHERE clause. placeholder maps a 1-based argument index to the backend's
// bind syntax.
func filterClause(ownerID int64, f query.Filter, placeholder func(n int) string) (string, []any) {
	f = f.Normalize()
	args := []any{ownerID}
	conds := []string{"user_id = " + placeholder(1)}

	add := func(expr string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(expr, placeholder(len(args))))
	}
	if f.Type != "" {
		add("type = %s", f.Type)
	}
	if f.Category != "" {
		add("category = %s", f.Category)
	}
	if f.From != "" {
		add("date >= %s", f.From)
	}
	if f.To != "" {
		add("date <= %s", f.To)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }
