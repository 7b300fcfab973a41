package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// mysqlMaxLifetime stays below the common 5 minute proxy idle cutoff
const mysqlMaxLifetime = 4 * time.Minute

// MySQLDialect stores sessions in a shared MySQL database
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces utf8mb4 so names and avatar URLs round-trip intact
func (d *MySQLDialect) DSN(config DialectConfig) string {
	return withParam(config.URL, "charset", "utf8mb4")
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

// ConfigureConnection keeps connections younger than the server's wait_timeout
func (d *MySQLDialect) ConfigureConnection(db *sql.DB, pool PoolConfig) error {
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = mysqlMaxLifetime
	}
	pool.apply(db)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		filename VARCHAR(255) PRIMARY KEY,
		executed_at BIGINT NOT NULL DEFAULT (UNIX_TIMESTAMP())
	)`
}

func (d *MySQLDialect) Upsert(table string, columns []string) string {
	sets := make([]string, 0, len(columns)-1)
	for _, col := range columns[1:] {
		sets = append(sets, col+" = VALUES("+col+")")
	}
	return insertPrefix(table, columns) + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}
