package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/todoflux/internal/ir"
)

// ErrSeqTaken is returned when a record's seq is already held by a
// different action.
var ErrSeqTaken = errors.New("journal: seq already taken")

// Append inserts rec at rec.Seq. Appending a record that is already
// present is silently ignored; a different record at the same seq fails
// with ErrSeqTaken.
func (j *Journal) Append(ctx context.Context, rec ir.ActionRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append action: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM actions WHERE seq = ?`, rec.Seq).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := insertRecord(ctx, tx, rec); err != nil {
			return fmt.Errorf("append action: %w", err)
		}
	case err != nil:
		return fmt.Errorf("append action: check seq: %w", err)
	case existing != rec.ID:
		return fmt.Errorf("append action at seq %d: %w", rec.Seq, ErrSeqTaken)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append action: commit: %w", err)
	}
	return nil
}

// AppendNext records a at the next free seq and returns the stored
// record. The seq is read and written in one write transaction, so
// writers sharing the database file never hand out the same value.
func (j *Journal) AppendNext(ctx context.Context, a ir.Action) (ir.ActionRecord, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.ActionRecord{}, fmt.Errorf("append action: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM actions
	`).Scan(&seq); err != nil {
		return ir.ActionRecord{}, fmt.Errorf("append action: next seq: %w", err)
	}

	rec, err := ir.NewActionRecord(a, seq)
	if err != nil {
		return ir.ActionRecord{}, fmt.Errorf("append action: %w", err)
	}
	if err := insertRecord(ctx, tx, rec); err != nil {
		return ir.ActionRecord{}, fmt.Errorf("append action: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ir.ActionRecord{}, fmt.Errorf("append action: commit: %w", err)
	}
	return rec, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec ir.ActionRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO actions
		(id, seq, action_type, text, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Seq,
		string(rec.Action.Type),
		rec.Action.Text,
		rec.EngineVersion,
		rec.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Read returns every record ordered by seq ASC, id ASC.
func (j *Journal) Read(ctx context.Context) ([]ir.ActionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, seq, action_type, text, engine_version, ir_version
		FROM actions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	return scanRecords(rows)
}

// ReadType returns the records of one action type, in journal order.
func (j *Journal) ReadType(ctx context.Context, t ir.ActionType) ([]ir.ActionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, seq, action_type, text, engine_version, ir_version
		FROM actions
		WHERE action_type = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, string(t))
	if err != nil {
		return nil, fmt.Errorf("query actions of type %s: %w", t, err)
	}
	return scanRecords(rows)
}

// LastSeq returns the highest seq in the journal, or 0 if it is empty.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := j.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM actions
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// Count returns the number of records.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]ir.ActionRecord, error) {
	defer rows.Close()

	records := []ir.ActionRecord{}
	for rows.Next() {
		var rec ir.ActionRecord
		var actionType string
		if err := rows.Scan(
			&rec.ID, &rec.Seq, &actionType, &rec.Action.Text,
			&rec.EngineVersion, &rec.IRVersion,
		); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Action.Type = ir.ActionType(actionType)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return records, nil
}
