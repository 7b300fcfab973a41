package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// PostgresDialect stores sessions in a shared PostgreSQL database
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN tags connections so they can be told apart in pg_stat_activity
func (d *PostgresDialect) DSN(config DialectConfig) string {
	return withParam(config.URL, "application_name", "readyset")
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return numberPlaceholders(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB, pool PoolConfig) error {
	pool.apply(db)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		filename TEXT PRIMARY KEY,
		executed_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM now())::BIGINT
	)`
}

func (d *PostgresDialect) Upsert(table string, columns []string) string {
	return onConflictUpsert(table, columns)
}
