package dbconn

import (
	"context"
	"errors"
)

// ErrNotMocked is returned when a TestDB method is called without a
// corresponding Func field set.
var ErrNotMocked = errors.New("dbconn.TestDB: method not mocked, set the corresponding Func field")

// TestDB is a mock DB implementation for unit tests.
type TestDB struct {
	QueryFunc func(ctx context.Context, sql string, args ...any) ([]Row, error)
	ExecFunc  func(ctx context.Context, sql string, args ...any) error
	PingFunc  func(ctx context.Context) error
}

var _ DB = (*TestDB)(nil)

func (t *TestDB) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return nil, ErrNotMocked
}

func (t *TestDB) Exec(ctx context.Context, sql string, args ...any) error {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return ErrNotMocked
}

func (t *TestDB) Ping(ctx context.Context) error {
	if t.PingFunc != nil {
		return t.PingFunc(ctx)
	}
	return nil
}

// RowsBuilder builds in-memory query results for TestDB.QueryFunc.
type RowsBuilder struct {
	columns []string
	rows    []Row
}

// NewRows creates a new RowsBuilder.
func NewRows(columns ...string) *RowsBuilder {
	return &RowsBuilder{columns: columns, rows: []Row{}}
}

// AddRow appends a row. It panics on arity mismatch.
func (b *RowsBuilder) AddRow(values ...any) *RowsBuilder {
	if len(values) != len(b.columns) {
		panic("dbconn.RowsBuilder: column count mismatch")
	}
	row := make(Row, len(values))
	for i, col := range b.columns {
		row[col] = values[i]
	}
	b.rows = append(b.rows, row)
	return b
}

// Build returns the accumulated rows.
func (b *RowsBuilder) Build() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}
