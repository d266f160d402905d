package dbconn

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePgxConn implements pgxConn without a server.
type fakePgxConn struct {
	prepareErr error
	execErr    error
	queryErr   error
	pingErr    error
	closeErr   error
	rows       *fakeRows

	prepared   []string
	preparedAs []string
	execSQL    string
	execArgs   []any
	querySQL   string
	queryArgs  []any
	closeCalls int
}

var _ pgxConn = (*fakePgxConn)(nil)

func (f *fakePgxConn) Prepare(_ context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	f.preparedAs = append(f.preparedAs, name)
	f.prepared = append(f.prepared, sql)
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	return &pgconn.StatementDescription{Name: name, SQL: sql}, nil
}

func (f *fakePgxConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = sql
	f.execArgs = args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakePgxConn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.querySQL = sql
	f.queryArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.rows == nil {
		return newFakeRows(nil), nil
	}
	return f.rows, nil
}

func (f *fakePgxConn) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakePgxConn) Close(_ context.Context) error {
	f.closeCalls++
	return f.closeErr
}

type fakeRows struct {
	columns []string
	data    [][]any
	idx     int
	closed  bool
	err     error
}

func newFakeRows(columns []string, rows ...[]any) *fakeRows {
	return &fakeRows{columns: columns, data: rows, idx: -1}
}

func (r *fakeRows) Close() {
	r.closed = true
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func (r *fakeRows) Conn() *pgx.Conn {
	return nil
}

func (r *fakeRows) RawValues() [][]byte {
	return nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, col := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: col}
	}
	return fields
}

func (r *fakeRows) Next() bool {
	if r.closed {
		return false
	}

	r.idx++
	if r.idx >= len(r.data) {
		r.closed = true
		return false
	}
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return pgx.ErrNoRows
	}
	if len(dest) == 1 {
		if rs, ok := dest[0].(pgx.RowScanner); ok {
			return rs.ScanRow(r)
		}
	}
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("fakeRows: scan dest count %d != column count %d", len(dest), len(row))
	}
	for i, val := range row {
		d, ok := dest[i].(*any)
		if !ok {
			return fmt.Errorf("fakeRows: unsupported scan target type %T at column %d", dest[i], i)
		}
		*d = val
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.data) {
		return nil, pgx.ErrNoRows
	}
	return r.data[r.idx], nil
}

// startedWithFake returns a Conn started against fake.
func startedWithFake(t testing.TB, fake *fakePgxConn, opts ...Option) *Conn {
	t.Helper()

	c := New(Config{Host: "db.internal", Database: "app", Username: "app", Password: "supersecret"}, opts...)
	c.connectPgx = func(context.Context, *pgx.ConnConfig) (pgxConn, error) {
		return fake, nil
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return c
}
