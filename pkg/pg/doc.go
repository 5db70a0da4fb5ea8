// Package pg manages the PostgreSQL connection pool: connect with retry,
// goose schema migrations at startup, health checks and pgx error helpers.
package pg
