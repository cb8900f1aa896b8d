// Package datasource fetches daily fact records for the report catalog.
//
// A Source answers two questions: every record dated inside an inclusive
// calendar range, and every record whose month key is in a set. SQLSource
// implements both over database/sql with the pgx (Postgres) and modernc
// SQLite drivers. BreakerSource wraps any Source with a circuit breaker.
//
// All failures to reach or read the store are reported as ErrUnavailable so
// callers never see a partial result.
package datasource
