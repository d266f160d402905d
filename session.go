package dbconn

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// session is one open connection behind a Conn. Errors are returned as the
// client produced them; Conn translates them.
type session interface {
	query(ctx context.Context, sql string, args []any) ([]Row, error)
	exec(ctx context.Context, sql string, args []any) error
	ping(ctx context.Context) error
	close(ctx context.Context) error
}

type pgxSession struct {
	conn pgxConn
}

func (s *pgxSession) query(ctx context.Context, sql string, args []any) ([]Row, error) {
	// Unnamed statement: parsed by the server, not kept. The connection runs
	// in QueryExecModeExec, so Query does not describe it again.
	if _, err := s.conn.Prepare(ctx, "", sql); err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		return pgx.RowToMap(row)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

func (s *pgxSession) exec(ctx context.Context, sql string, args []any) error {
	if _, err := s.conn.Prepare(ctx, "", sql); err != nil {
		return err
	}
	_, err := s.conn.Exec(ctx, sql, args...)
	return err
}

func (s *pgxSession) ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *pgxSession) close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// sqlSession pins one *sql.Conn out of a *sql.DB capped at one connection.
type sqlSession struct {
	db   *sql.DB
	conn *sql.Conn
}

func (s *sqlSession) query(ctx context.Context, query string, args []any) ([]Row, error) {
	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSQLRows(rows)
}

func (s *sqlSession) exec(ctx context.Context, query string, args []any) error {
	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, args...)
	return err
}

func (s *sqlSession) ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *sqlSession) close(_ context.Context) error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

func collectSQLRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
