package dbconn

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
)

// Option configures a Conn for advanced use cases.
type Option func(*connectOptions)

type connectOptions struct {
	pgxConfigModifier func(*pgx.ConnConfig)
	sqlDBModifier     func(*sql.DB)
}

// WithPgxConfig allows low-level pgx configuration (DriverPgx only).
//
// The modifier runs after standard dbconn configuration is applied.
func WithPgxConfig(fn func(*pgx.ConnConfig)) Option {
	return func(o *connectOptions) {
		o.pgxConfigModifier = fn
	}
}

// WithSQLDB allows low-level database/sql configuration (DriverPQ only).
//
// The modifier runs after the handle is limited to a single connection.
func WithSQLDB(fn func(*sql.DB)) Option {
	return func(o *connectOptions) {
		o.sqlDBModifier = fn
	}
}

// pgxConn is the subset of *pgx.Conn a pgx session needs.
type pgxConn interface {
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// connectPgx and openSQL are package-private seams; tests replace them per
// Conn to avoid network dependencies.
var (
	connectPgx = func(ctx context.Context, cfg *pgx.ConnConfig) (pgxConn, error) {
		conn, err := pgx.ConnectConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	openSQL = sql.Open
)

func (c *Conn) open(ctx context.Context) (session, error) {
	if c.cfg.Driver == DriverPQ {
		return c.openPQ(ctx)
	}
	return c.openPgx(ctx)
}

func (c *Conn) openPgx(ctx context.Context) (session, error) {
	pgxCfg, err := pgx.ParseConfig(c.cfg.connString())
	if err != nil {
		return nil, err
	}
	pgxCfg.User = c.cfg.Username
	// Empty keeps whatever ParseConfig found in PGPASSWORD or the passfile.
	if c.cfg.Password != "" {
		pgxCfg.Password = c.cfg.Password
	}

	// The session prepares each statement itself, so execution needs no
	// second describe round trip. Nothing is cached on the connection.
	pgxCfg.DefaultQueryExecMode = pgx.QueryExecModeExec
	pgxCfg.StatementCacheCapacity = 0
	pgxCfg.DescriptionCacheCapacity = 0

	if c.traced {
		pgxCfg.Tracer = newTraceLog(c.cfg.Logger)
	}
	if c.opts.pgxConfigModifier != nil {
		c.opts.pgxConfigModifier(pgxCfg)
	}

	conn, err := c.connectPgx(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return &pgxSession{conn: conn}, nil
}

func (c *Conn) openPQ(ctx context.Context) (session, error) {
	db, err := c.openSQL(string(DriverPQ), c.cfg.pqConnString())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if c.opts.sqlDBModifier != nil {
		c.opts.sqlDBModifier(db)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return &sqlSession{db: db, conn: conn}, nil
}

// newTraceLog forwards pgx trace events to logger. Statement text and
// arguments are dropped; arguments may carry credentials or personal data.
func newTraceLog(logger *slog.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			attrs := make([]any, 0, len(data)*2)
			for k, v := range data {
				if k == "sql" || k == "args" {
					continue
				}
				attrs = append(attrs, k, v)
			}
			logger.Log(ctx, slogLevel(level), "pgx: "+msg, attrs...)
		}),
		LogLevel: tracelog.LogLevelInfo,
	}
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
