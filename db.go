package dbconn

import "context"

// DB defines the contract for database access through a dbconn connection.
//
// All methods require context.Context; it is passed to the underlying client
// so deadlines and cancellation reach in-flight network I/O.
//
// Use this interface in service-layer constructors. Prefer depending on DB
// rather than *Conn so application code stays testable (via TestDB).
// Lifecycle methods (Start, Stop) are intentionally not part of this
// contract; they belong to whoever owns the *Conn.
type DB interface {
	// Query executes a statement that returns rows, typically a SELECT.
	// All rows are read into memory before Query returns.
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)

	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
