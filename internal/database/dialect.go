package database

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// ErrDuplicateKey reports an insert that collided with an existing primary or
// unique key, such as a second registration racing for the same user id
var ErrDuplicateKey = errors.New("duplicate key")

// Dialect hides the differences between the sqlite, postgres and mysql stores.
// Queries are written once with ? placeholders and rewritten per dialect.
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name with the options the schema relies on
	// (foreign keys, UTC timestamps, parsed DATETIME columns)
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the driver's syntax
	RewriteQuery(query string) string

	// ConfigureConnection sizes the pool and checks per-connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under migrations/ holding this dialect's schema
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// IsUniqueViolation reports whether err is the driver's duplicate key error
	IsUniqueViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// IsUniqueViolation reports whether err came from any supported driver
// rejecting a duplicate key. Repositories only hold a DBTX, so they ask all
// dialects instead of the active one.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, d := range []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewMySQLDialect()} {
		if d.IsUniqueViolation(err) {
			return true
		}
	}
	return false
}

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
// A ? inside a single-quoted literal is left alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	counter := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			counter++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(counter))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// appendParam adds key=value to a DSN unless key is already present
func appendParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}
