package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect is the default single-node store
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN enables WAL and a busy timeout through driver parameters, so every pooled
// connection gets them and concurrent session writes wait instead of failing.
func (d *SQLiteDialect) DSN(config DialectConfig) string {
	dsn := withParam(config.Path, "_journal_mode", "WAL")
	return withParam(dsn, "_busy_timeout", "5000")
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB, pool PoolConfig) error {
	pool.apply(db)
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		filename TEXT PRIMARY KEY,
		executed_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	)`
}

func (d *SQLiteDialect) Upsert(table string, columns []string) string {
	return onConflictUpsert(table, columns)
}
