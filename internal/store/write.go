package store

import (
	"context"
	"fmt"
)

// RecordRun inserts a run and its violations in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run ID
// twice leaves the first record untouched. Returns the run's seq.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, root, passed, truncated, report_fingerprint, model_fingerprint, tool_version, report_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Root,
		boolToInt(run.Passed),
		boolToInt(run.Truncated),
		run.Fingerprint,
		run.ModelFingerprint,
		run.ToolVersion,
		run.ReportVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	if inserted == 0 {
		return seq, tx.Commit()
	}

	for i, v := range run.Violations {
		via, err := marshalVia(v.Via)
		if err != nil {
			return 0, fmt.Errorf("record run: %w", err)
		}
		cycle, err := marshalCycle(v.Cycle)
		if err != nil {
			return 0, fmt.Errorf("record run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO violations
			(run_id, seq, kind, violation_key, source_module, source_unit, target_module, target_unit, via, cycle, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i+1,
			string(v.Kind),
			v.Key(),
			v.SourceModule,
			v.SourceUnit,
			v.TargetModule,
			v.TargetUnit,
			via,
			cycle,
			v.Message,
		)
		if err != nil {
			return 0, fmt.Errorf("record violation %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return seq, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
