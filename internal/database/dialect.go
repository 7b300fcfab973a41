package database

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name with the driver options the store depends on
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the driver's syntax
	RewriteQuery(query string) string

	// ConfigureConnection sizes the pool and applies per-database settings
	ConfigureConnection(db *sql.DB, pool PoolConfig) error

	// MigrationsSubdir names the embedded migrations directory
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL for the applied-migrations table
	CreateMigrationsTableQuery() string

	// Upsert returns an INSERT that overwrites every non-key column when the key already exists.
	// The first column is the conflict key.
	Upsert(table string, columns []string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// Path is the SQLite database file
	Path string
	// URL is the PostgreSQL or MySQL connection string
	URL  string
	Pool PoolConfig
}

// PoolConfig bounds the connection pool. Zero values keep the database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (p PoolConfig) apply(db *sql.DB) {
	if p.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
	if p.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
	}
}

// withParam appends key=value to a DSN query string unless key is already set
func withParam(dsn, key, value string) string {
	base, query, _ := strings.Cut(dsn, "?")
	if values, err := url.ParseQuery(query); err == nil && values.Has(key) {
		return dsn
	}
	if query == "" {
		return base + "?" + key + "=" + value
	}
	return dsn + "&" + key + "=" + value
}

// numberPlaceholders converts ? to $1, $2 ... outside quoted literals
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// insertPrefix builds "INSERT INTO t (a, b) VALUES (?, ?)"
func insertPrefix(table string, columns []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
}

// onConflictUpsert is shared by SQLite and PostgreSQL
func onConflictUpsert(table string, columns []string) string {
	sets := make([]string, 0, len(columns)-1)
	for _, col := range columns[1:] {
		sets = append(sets, col+" = excluded."+col)
	}
	return insertPrefix(table, columns) + " ON CONFLICT (" + columns[0] + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
