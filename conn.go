package dbconn

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Conn is the concrete implementation of DB. It owns at most one open
// connection, created by Start and released by Stop.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	cfg    Config
	opts   connectOptions
	traced bool

	connectPgx func(ctx context.Context, cfg *pgx.ConnConfig) (pgxConn, error)
	openSQL    func(driverName, dataSourceName string) (*sql.DB, error)

	// sess is nil while not connected.
	sess session
}

var _ DB = (*Conn)(nil)

// New stores cfg (with defaults applied) and returns an unstarted Conn.
// It performs no I/O and no validation; Start does both.
func New(cfg Config, opts ...Option) *Conn {
	c := &Conn{
		cfg:        cfg.withDefaults(),
		traced:     cfg.Logger != nil,
		connectPgx: connectPgx,
		openSQL:    openSQL,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&c.opts)
	}
	return c
}

// Config returns the stored configuration. It contains the password and
// must be treated as secret material.
func (c *Conn) Config() Config {
	return c.cfg
}

// Started reports whether c currently holds an open connection.
func (c *Conn) Started() bool {
	return c.sess != nil
}

// Start opens the connection and verifies it with a ping. Any failure is
// returned as a *ConnectionError and leaves c unstarted. Calling Start on a
// started Conn releases the current connection first.
func (c *Conn) Start(ctx context.Context) error {
	if c.sess != nil {
		if err := c.Stop(ctx); err != nil {
			c.cfg.Logger.WarnContext(ctx, "dbconn: releasing previous connection failed", "error", err)
		}
	}

	if err := c.cfg.Validate(); err != nil {
		return connectionError(err)
	}

	sess, err := c.open(ctx)
	if err != nil {
		return connectionError(err)
	}
	c.sess = sess

	c.cfg.Logger.DebugContext(ctx, "dbconn: connected",
		"host", c.cfg.Host,
		"database", c.cfg.Database,
		"driver", string(c.cfg.Driver),
	)
	return nil
}

// Stop releases the connection. The Conn is unstarted afterward even when
// closing fails. Stopping an unstarted Conn is a no-op.
func (c *Conn) Stop(ctx context.Context) error {
	sess := c.sess
	if sess == nil {
		return nil
	}
	c.sess = nil

	if err := sess.close(ctx); err != nil {
		return fmt.Errorf("dbconn: close connection: %w", err)
	}
	c.cfg.Logger.DebugContext(ctx, "dbconn: connection closed", "host", c.cfg.Host)
	return nil
}

// Query prepares sql, binds args positionally ($1, $2, ...) and returns all
// result rows. It never returns a nil slice on success.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if c.sess == nil {
		return nil, &QueryError{msg: msgQueryNotUp, cause: ErrNotStarted}
	}

	rows, err := c.sess.query(ctx, sql, args)
	if err != nil {
		return nil, queryError(err)
	}
	return rows, nil
}

// Exec prepares sql, binds args positionally and executes it, discarding
// any result. Preparation and execution failures are both *ExecuteError.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) error {
	if c.sess == nil {
		return &ExecuteError{msg: msgExecuteNotUp, cause: ErrNotStarted}
	}

	if err := c.sess.exec(ctx, sql, args); err != nil {
		return executeError(err)
	}
	return nil
}

// Ping verifies the connection is alive. It returns ErrNotStarted when c
// holds no connection.
func (c *Conn) Ping(ctx context.Context) error {
	if c.sess == nil {
		return ErrNotStarted
	}
	return c.sess.ping(ctx)
}
