package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/graph"
)

// ErrNotFound is returned when no compilation matches.
var ErrNotFound = errors.New("compilation not found")

const selectCompilation = `
	SELECT id, seq, document, roots, graph_hash, program_hash, status, error_code,
	       instruction_count, convert_count, wgsl, compiler_version, ir_version, created_at
	FROM compilations
`

// Get returns the compilation with the given id, including diagnostics.
func (s *Store) Get(ctx context.Context, id string) (*Compilation, error) {
	row := s.db.QueryRowContext(ctx, selectCompilation+` WHERE id = ?`, id)
	c, err := scanCompilation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}

	if c.Diagnostics, err = s.readDiagnostics(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// Latest returns the most recent compilation of a graph hash.
func (s *Store) Latest(ctx context.Context, graphHash string) (*Compilation, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM compilations
		WHERE graph_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, graphHash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest for graph %s: %w", graphHash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest for graph %s: %w", graphHash, err)
	}
	return s.Get(ctx, id)
}

// List returns up to limit compilations, newest first, without their
// diagnostics. A limit of zero or less lists everything.
//
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) List(ctx context.Context, limit int) ([]Compilation, error) {
	return s.Find(ctx, Filter{Limit: limit})
}

func (s *Store) readDiagnostics(ctx context.Context, compilationID string) ([]diagnostic.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, code, message, node, socket
		FROM diagnostics
		WHERE compilation_id = ?
		ORDER BY idx ASC
	`, compilationID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []diagnostic.Diagnostic{}
	for rows.Next() {
		var (
			d            diagnostic.Diagnostic
			severity     string
			node, socket sql.NullInt64
		)
		if err := rows.Scan(&severity, &d.Code, &d.Message, &node, &socket); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Severity = diagnostic.Severity(severity)
		if node.Valid {
			id := graph.NodeID(node.Int64)
			d.Node = &id
		}
		if socket.Valid {
			id := graph.SocketID(socket.Int64)
			d.Socket = &id
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompilation(row scanner) (*Compilation, error) {
	var (
		c         Compilation
		roots     string
		status    string
		createdAt int64
	)
	err := row.Scan(
		&c.ID,
		&c.Seq,
		&c.Document,
		&roots,
		&c.GraphHash,
		&c.ProgramHash,
		&status,
		&c.ErrorCode,
		&c.InstructionCount,
		&c.ConvertCount,
		&c.WGSL,
		&c.CompilerVersion,
		&c.IRVersion,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan compilation: %w", err)
	}

	if err := json.Unmarshal([]byte(roots), &c.Roots); err != nil {
		return nil, fmt.Errorf("unmarshal roots of %s: %w", c.ID, err)
	}
	c.Status = Status(status)
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &c, nil
}
