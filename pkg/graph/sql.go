// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graph

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

var backendNames = map[string]string{
	"sqlite":   "SQLite",
	"postgres": "PostgreSQL",
	"mysql":    "MySQL",
	"duckdb":   "DuckDB",
}

// SQLStore models the graph as relational tables and accepts SQL.
type SQLStore struct {
	db      *sql.DB
	dialect string
	backend string
	timeout time.Duration
}

// OpenSQLStore opens and pings the database described by cfg.
func OpenSQLStore(ctx context.Context, cfg config.DatabaseConfig, timeout time.Duration) (*SQLStore, error) {
	driverName := cfg.DriverName()
	dialect := cfg.Dialect()
	backend := backendNames[dialect]
	if backend == "" {
		backend = dialect
	}

	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, connectionError(backend, fmt.Errorf("failed to open database: %w", err))
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps a shared in-memory database alive.
	if driverName == "sqlite3" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxConns > 0 {
			db.SetMaxOpenConns(cfg.MaxConns)
		}
		if cfg.MaxIdle > 0 {
			db.SetMaxIdleConns(cfg.MaxIdle)
		}
		db.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, connectionError(backend, fmt.Errorf("failed to connect to database: %w", err))
	}

	slog.Debug("Opened SQL graph store", "driver", driverName, "database", cfg.Database)

	return &SQLStore{db: db, dialect: dialect, backend: backend, timeout: timeout}, nil
}

// NewSQLStore wraps an already opened database.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	backend := backendNames[dialect]
	if backend == "" {
		backend = dialect
	}
	return &SQLStore{db: db, dialect: dialect, backend: backend}
}

func (s *SQLStore) Language() Language { return LanguageSQL }

func (s *SQLStore) Backend() string { return s.backend }

// Dialect returns the normalized dialect name (sqlite, postgres, mysql, duckdb).
func (s *SQLStore) Dialect() string { return s.dialect }

// Run executes query inside a transaction that is always rolled back, so a
// model-written statement never persists changes. The transaction is also
// marked read-only where the driver supports it.
func (s *SQLStore) Run(ctx context.Context, query string) ([]Record, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// go-duckdb rejects read-only transaction options.
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: s.dialect != "duckdb"})
	if err != nil {
		return nil, connectionError(s.backend, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, s.classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, s.classify(err)
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.classify(err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			rec[col] = normalizeSQLValue(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *SQLStore) Exec(ctx context.Context, stmts []Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return connectionError(s.backend, err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, Rebind(s.dialect, stmt.Query), stmt.Args...); err != nil {
			return s.classify(fmt.Errorf("%s: %w", firstLine(stmt.Query), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return s.classify(err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) classify(err error) error {
	var netErr net.Error
	if isContextError(err) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return connectionError(s.backend, err)
	}
	return malformedError(s.backend, err)
}

// Rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func Rebind(dialect, query string) string {
	if dialect != "postgres" || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeSQLValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ Store = (*SQLStore)(nil)
