package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/modcheck/internal/ir"
)

const runColumns = `
	r.seq, r.id, r.root, r.passed, r.truncated, r.report_fingerprint,
	r.model_fingerprint, r.tool_version, r.report_version,
	(SELECT COUNT(*) FROM violations v WHERE v.run_id = r.id)`

// ListRuns returns the most recent runs, newest first, without violations.
// A limit of zero or less returns every run.
//
// Returns empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs r ORDER BY r.seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadRun returns one run with its violations in report order.
// Returns ErrRunNotFound if no run has the ID.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	violations, err := s.readViolations(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Violations = violations
	return &run, nil
}

// LatestRun returns the newest run for a root, with violations.
// Returns ErrRunNotFound if the root has no runs.
func (s *Store) LatestRun(ctx context.Context, root string) (*Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs WHERE root = ? ORDER BY seq DESC LIMIT 1
	`, root).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest run for %s: %w", root, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest run for %s: %w", root, err)
	}
	return s.LoadRun(ctx, id)
}

func (s *Store) readViolations(ctx context.Context, runID string) ([]ir.Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, source_module, source_unit, target_module, target_unit, via, cycle, message
		FROM violations
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []ir.Violation{}
	for rows.Next() {
		var (
			v     ir.Violation
			kind  string
			via   string
			cycle string
		)
		if err := rows.Scan(&kind, &v.SourceModule, &v.SourceUnit, &v.TargetModule, &v.TargetUnit, &via, &cycle, &v.Message); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Kind = ir.ViolationKind(kind)
		if v.Via, err = unmarshalVia(via); err != nil {
			return nil, err
		}
		if v.Cycle, err = unmarshalCycle(cycle); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		passed    int
		truncated int
	)
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.Root,
		&passed,
		&truncated,
		&run.Fingerprint,
		&run.ModelFingerprint,
		&run.ToolVersion,
		&run.ReportVersion,
		&run.ViolationCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Passed = passed == 1
	run.Truncated = truncated == 1
	return run, nil
}
