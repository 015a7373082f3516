package engine

import (
	"database/sql"
	"fmt"
)

// Result is a fully materialized query result. Lessons are small by
// construction, so buffering rows is fine and keeps rendering simple.
type Result struct {
	Columns []string
	Rows    [][]any
}

func collect(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

// Scalar reports the single value of a 1x1 result.
func (r *Result) Scalar() (any, bool) {
	if len(r.Rows) == 1 && len(r.Columns) == 1 {
		return r.Rows[0][0], true
	}
	return nil, false
}

// NumRows returns the row count.
func (r *Result) NumRows() int { return len(r.Rows) }

// ColumnIndex returns the position of a named column, -1 when absent.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Project returns a new result containing the given columns in order.
func (r *Result) Project(names []string) (*Result, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j := r.ColumnIndex(n)
		if j < 0 {
			return nil, fmt.Errorf("no such column: %s", n)
		}
		idx[i] = j
	}

	out := &Result{Columns: names}
	for _, row := range r.Rows {
		projected := make([]any, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}
