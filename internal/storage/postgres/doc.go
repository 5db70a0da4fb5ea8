// Package postgres implements the storage interfaces of the domain packages
// on top of a pgx connection pool. Repositories return raw pgx errors;
// services translate them through the pkg/pg helpers (not-found, duplicate
// key, foreign key).
package postgres
