package database

import (
	"reflect"
	"testing"
)

func TestDialectBasics(t *testing.T) {
	tests := []struct {
		dialect Dialect
		driver  string
		subdir  string
	}{
		{NewSQLiteDialect(), "sqlite3", "sqlite"},
		{NewPostgresDialect(), "postgres", "postgres"},
		{NewMySQLDialect(), "mysql", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.subdir)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM sessions WHERE id = ?",
			expected: "SELECT * FROM sessions WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM sessions WHERE id = ?",
			expected: "SELECT * FROM sessions WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO avatars (identity, url) VALUES (?, ?)",
			expected: "INSERT INTO avatars (identity, url) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE sessions SET token = ?, updated_at = ? WHERE id = ?",
			expected: "UPDATE sessions SET token = ?, updated_at = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	columns := []string{"setting_key", "setting_value", "updated_at"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?) ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at",
		},
		{
			name:     "PostgreSQL",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?) ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at",
		},
		{
			name:     "MySQL",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = VALUES(updated_at)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Upsert("settings", columns); got != tt.expected {
				t.Errorf("Upsert() =\n%v\nwant\n%v", got, tt.expected)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		config  DialectConfig
		want    string
	}{
		{"sqlite plain path", NewSQLiteDialect(), DialectConfig{Path: "./readyset.db"}, "./readyset.db?_journal_mode=WAL&_busy_timeout=5000"},
		{"sqlite keeps explicit timeout", NewSQLiteDialect(), DialectConfig{Path: "data.db?_busy_timeout=100"}, "data.db?_busy_timeout=100&_journal_mode=WAL"},
		{"postgres url", NewPostgresDialect(), DialectConfig{URL: "postgres://u:p@db/ready?sslmode=disable"}, "postgres://u:p@db/ready?sslmode=disable&application_name=readyset"},
		{"postgres named app", NewPostgresDialect(), DialectConfig{URL: "postgres://db/ready?application_name=ops"}, "postgres://db/ready?application_name=ops"},
		{"mysql bare", NewMySQLDialect(), DialectConfig{URL: "user:pw@tcp(db:3306)/ready"}, "user:pw@tcp(db:3306)/ready?charset=utf8mb4"},
		{"mysql own charset", NewMySQLDialect(), DialectConfig{URL: "user:pw@tcp(db:3306)/ready?charset=utf8"}, "user:pw@tcp(db:3306)/ready?charset=utf8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DSN(tt.config); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumberPlaceholdersSkipsLiterals(t *testing.T) {
	got := numberPlaceholders(`SELECT id FROM settings WHERE setting_key = ? AND setting_value <> 'what?' AND note = "a?b" LIMIT ?`)
	want := `SELECT id FROM settings WHERE setting_key = $1 AND setting_value <> 'what?' AND note = "a?b" LIMIT $2`
	if got != want {
		t.Errorf("numberPlaceholders() =\n%s\nwant\n%s", got, want)
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header comment
CREATE TABLE a (id TEXT);

-- second
CREATE INDEX idx ON a(id);
`
	got := splitStatements(content)
	want := []string{"CREATE TABLE a (id TEXT)", "CREATE INDEX idx ON a(id)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitStatements() = %q, want %q", got, want)
	}
}
