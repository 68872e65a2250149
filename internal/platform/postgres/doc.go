// Package postgres implements the durable store interfaces on PostgreSQL
// through database/sql and the pgx driver. Schema migrations are embedded
// and applied with goose.
package postgres
