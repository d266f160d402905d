// Package dbconn provides a minimal single-connection Postgres wrapper.
//
// A Conn is constructed from a Config without any I/O, opened with Start,
// used with Query and Exec, and released with Stop:
//
//	c := dbconn.New(dbconn.Config{Host: "localhost", Database: "app", Username: "app"})
//	if err := c.Start(ctx); err != nil {
//		// *dbconn.ConnectionError
//	}
//	defer c.Stop(ctx)
//
//	rows, err := c.Query(ctx, "SELECT id, name FROM users WHERE id = $1", 7)
//
// Invariants:
//
//   - A Conn owns at most one live connection. There is no pooling, retry or
//     statement caching.
//   - Query and Exec fail with ErrNotStarted as the cause until Start succeeds.
//   - Every failure is surfaced as *ConnectionError, *QueryError or
//     *ExecuteError wrapping the client error.
//
// A Conn is not safe for concurrent use.
package dbconn
