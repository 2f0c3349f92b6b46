package postgres

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// fakeDB scripts the adapter responses the gateway sees, in call order.
type fakeDB struct {
	beginErr  error
	rows      []fakeRow
	execs     []fakeExec
	committed bool
	rolled    bool
	commitErr error
	queries   []string
}

type fakeRow struct {
	values []any
	err    error
}

type fakeExec struct {
	affected int64
	err      error
}

func (f *fakeDB) Begin(context.Context) (txAdapter, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f, nil
}

func (f *fakeDB) QueryRow(_ context.Context, query string, _ ...any) rowScanner {
	f.queries = append(f.queries, query)
	if len(f.rows) == 0 {
		return fakeRow{err: errNoRows}
	}
	r := f.rows[0]
	f.rows = f.rows[1:]
	return r
}

func (f *fakeDB) Query(context.Context, string, ...any) (dbRows, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeDB) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	f.queries = append(f.queries, query)
	if len(f.execs) == 0 {
		return 1, nil
	}
	e := f.execs[0]
	f.execs = f.execs[1:]
	return e.affected, e.err
}

func (f *fakeDB) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeDB) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, v := range r.values {
		if s, ok := dest[i].(interface{ Scan(any) error }); ok {
			if err := s.Scan(v); err != nil {
				return err
			}
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}
