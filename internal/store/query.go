package store

import (
	"context"
	"fmt"
	"strings"
)

// Filter narrows a history query. Zero fields match everything; set fields
// must all match.
type Filter struct {
	Status    Status
	Document  string
	GraphHash string
	ErrorCode string

	// Limit caps the number of rows; zero or less means no limit.
	Limit int
}

// predicate is one "column = ?" term.
type predicate struct {
	column string
	value  any
}

func (f Filter) predicates() []predicate {
	var preds []predicate
	if f.Status != "" {
		preds = append(preds, predicate{"status", string(f.Status)})
	}
	if f.Document != "" {
		preds = append(preds, predicate{"document", f.Document})
	}
	if f.GraphHash != "" {
		preds = append(preds, predicate{"graph_hash", f.GraphHash})
	}
	if f.ErrorCode != "" {
		preds = append(preds, predicate{"error_code", f.ErrorCode})
	}
	return preds
}

// compile renders the filter as a parameterized query. Values are never
// interpolated, and every query is ordered newest first by seq so results
// are deterministic.
func (f Filter) compile() (string, []any) {
	var b strings.Builder
	b.WriteString(selectCompilation)

	args := []any{}
	preds := f.predicates()
	if len(preds) > 0 {
		terms := make([]string, len(preds))
		for i, p := range preds {
			terms[i] = p.column + " = ?"
			args = append(args, p.value)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(terms, " AND "))
	}

	b.WriteString(" ORDER BY seq DESC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args
}

// Find returns the compilations matching f, newest first, without their
// diagnostics. It returns an empty slice (not nil) when nothing matches.
func (s *Store) Find(ctx context.Context, f Filter) ([]Compilation, error) {
	query, args := f.compile()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	out := []Compilation{}
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return out, nil
}
