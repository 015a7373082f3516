// Package engine owns the connection to the analytic store. The store itself
// (SQLite through the modernc driver) is treated as an opaque collaborator:
// open a handle, list tables, ingest columnar files, run SQL, hand back rows.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dataquill/tutorkit/internal/errors"
	"github.com/dataquill/tutorkit/internal/logger"
)

type DB struct {
	sqldb    *sql.DB
	path     string
	readOnly bool
	log      *logger.Logger
}

// Open opens a file-backed store. Read-only handles never modify the file:
// the driver is opened with mode=ro and Exec additionally rejects write-style
// statements before they reach the driver. Lock artifacts next to the data
// file (-wal, -shm, -journal) belong to the store and are left alone.
func Open(path string, readOnly bool, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingFile, path)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	if readOnly {
		dsn += "&mode=ro"
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// Temp tables and views live per connection; a single connection keeps
	// every step of a run on the same session.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	log.Debug("opened store %s (read-only=%v)", path, readOnly)
	return &DB{sqldb: sqldb, path: path, readOnly: readOnly, log: log}, nil
}

// OpenMemory creates a fresh in-process store.
func OpenMemory(log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	return &DB{sqldb: sqldb, log: log}, nil
}

func (d *DB) Close() error {
	if d.sqldb == nil {
		return nil
	}
	err := d.sqldb.Close()
	d.sqldb = nil
	return err
}

func (d *DB) Path() string { return d.path }

func (d *DB) ReadOnly() bool { return d.readOnly }

// ListTables returns the persistent tables and views of the store.
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	if d.sqldb == nil {
		return nil, errors.ErrDBClosed
	}
	rows, err := d.sqldb.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableExists also sees temp tables and views, which ListTables does not.
func (d *DB) TableExists(ctx context.Context, name string) (bool, error) {
	if d.sqldb == nil {
		return false, errors.ErrDBClosed
	}
	var n int
	err := d.sqldb.QueryRowContext(ctx,
		`SELECT count(*) FROM (
			SELECT name FROM sqlite_master WHERE name = ?1
			UNION ALL
			SELECT name FROM sqlite_temp_master WHERE name = ?1
		)`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return n > 0, nil
}

// Exec runs a statement that produces no rows.
func (d *DB) Exec(ctx context.Context, stmt string, args ...any) error {
	if d.sqldb == nil {
		return errors.ErrDBClosed
	}
	if err := d.guard(stmt); err != nil {
		return err
	}
	if _, err := d.sqldb.ExecContext(ctx, stmt, args...); err != nil {
		return err
	}
	return nil
}

// Query runs a statement and materializes the full result.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if d.sqldb == nil {
		return nil, errors.ErrDBClosed
	}
	if err := d.guard(query); err != nil {
		return nil, err
	}
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// QueryScalar runs a statement expected to produce a single value.
func (d *DB) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	res, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	v, ok := res.Scalar()
	if !ok {
		return nil, fmt.Errorf("query did not produce a single value: %q", query)
	}
	return v, nil
}

// guard rejects write-style statements on read-only handles. Temp objects
// live in a separate, always-writable schema, so creating and dropping them
// is allowed; so are savepoints, which the exercise loader uses.
func (d *DB) guard(stmt string) error {
	if !d.readOnly {
		return nil
	}
	kw, rest := firstKeyword(stmt)
	switch kw {
	case "SELECT", "WITH", "VALUES", "EXPLAIN", "PRAGMA",
		"SAVEPOINT", "RELEASE", "ROLLBACK", "BEGIN", "COMMIT", "END":
		return nil
	case "CREATE":
		next, _ := firstKeyword(rest)
		if next == "TEMP" || next == "TEMPORARY" {
			return nil
		}
	case "DROP":
		if strings.Contains(strings.ToLower(stmt), "temp.") {
			return nil
		}
	}
	return fmt.Errorf("%w: refusing %s", errors.ErrReadOnly, kw)
}

func firstKeyword(stmt string) (string, string) {
	s := strings.TrimSpace(stmt)
	i := strings.IndexAny(s, " \t\r\n(")
	if i < 0 {
		return strings.ToUpper(s), ""
	}
	return strings.ToUpper(s[:i]), s[i:]
}
