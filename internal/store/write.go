package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/pipeline"
)

// Status is the outcome of a recorded compilation.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Compilation is one recorded compiler run.
type Compilation struct {
	ID       string
	Seq      int64
	Document string
	Roots    []string

	GraphHash   string
	ProgramHash string // empty when the run failed

	Status           Status
	ErrorCode        string
	InstructionCount int
	ConvertCount     int
	WGSL             string

	CompilerVersion string
	IRVersion       string
	CreatedAt       time.Time

	Diagnostics []diagnostic.Diagnostic
}

// FromResult builds an unrecorded Compilation from a pipeline result.
// document and roots describe the input as the user named it.
func FromResult(document string, roots []string, res *pipeline.Result) *Compilation {
	c := &Compilation{
		Document:        document,
		Roots:           roots,
		GraphHash:       res.GraphHash,
		ProgramHash:     res.ProgramHash,
		Status:          StatusOK,
		WGSL:            res.WGSL,
		CompilerVersion: ir.CompilerVersion,
		IRVersion:       ir.IRVersion,
		Diagnostics:     res.Diagnostics,
	}
	if res.Program != nil {
		c.InstructionCount = res.Program.Len()
		c.ConvertCount = res.Program.CountConverts()
	}
	if res.Failed() {
		c.Status = StatusFailed
		c.ProgramHash = ""
		c.WGSL = ""
		for _, d := range res.Diagnostics {
			if d.Severity == diagnostic.SeverityError {
				c.ErrorCode = d.Code
			}
		}
	}
	return c
}

// Record stores c and its diagnostics in one transaction. It assigns
// c.ID, c.Seq and c.CreatedAt.
func (s *Store) Record(ctx context.Context, c *Compilation) error {
	id, err := s.ids.NewID()
	if err != nil {
		return fmt.Errorf("record compilation: %w", err)
	}

	rootsJSON, err := ir.MarshalCanonical(c.Roots)
	if err != nil {
		return fmt.Errorf("record compilation: marshal roots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record compilation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM compilations`).Scan(&seq); err != nil {
		return fmt.Errorf("record compilation: next seq: %w", err)
	}

	createdAt := s.now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO compilations
		(id, seq, document, roots, graph_hash, program_hash, status, error_code,
		 instruction_count, convert_count, wgsl, compiler_version, ir_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		seq,
		c.Document,
		string(rootsJSON),
		c.GraphHash,
		c.ProgramHash,
		string(c.Status),
		c.ErrorCode,
		c.InstructionCount,
		c.ConvertCount,
		c.WGSL,
		c.CompilerVersion,
		c.IRVersion,
		createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record compilation: %w", err)
	}

	for i, d := range c.Diagnostics {
		if err := insertDiagnostic(ctx, tx, id, i, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record compilation: commit: %w", err)
	}

	c.ID = id
	c.Seq = seq
	c.CreatedAt = time.UnixMilli(createdAt.UnixMilli()).UTC()
	return nil
}

func insertDiagnostic(ctx context.Context, tx *sql.Tx, compilationID string, idx int, d diagnostic.Diagnostic) error {
	var node, socket sql.NullInt64
	if d.Node != nil {
		node = sql.NullInt64{Int64: int64(*d.Node), Valid: true}
	}
	if d.Socket != nil {
		socket = sql.NullInt64{Int64: int64(*d.Socket), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO diagnostics
		(compilation_id, idx, severity, code, message, node, socket)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, compilationID, idx, string(d.Severity), d.Code, d.Message, node, socket)
	if err != nil {
		return fmt.Errorf("record diagnostic %d: %w", idx, err)
	}
	return nil
}
