package store

import (
	"context"
	"fmt"
)

// Entry is one labelled expression in a batch.
type Entry struct {
	Label        string `json:"label"`
	ExpressionID string `json:"expression_id"`
	Seq          int64  `json:"seq"`
}

// Batch is one save operation.
type Batch struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Seq     int64   `json:"seq"`
	Entries []Entry `json:"entries"`
}

// Item is a labelled record to save in a batch.
type Item struct {
	Label  string
	Record Record
}

// WriteExpression inserts an expression record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an id that is
// already stored returns inserted=false and leaves the row untouched.
func (s *Store) WriteExpression(ctx context.Context, rec Record) (inserted bool, err error) {
	result, err := s.db.ExecContext(ctx, insertExpressionSQL,
		rec.ID, rec.Canonical, rec.Root, rec.Kind, rec.Depth, rec.Text, rec.LaTeX, rec.FormatVersion)
	if err != nil {
		return false, fmt.Errorf("write expression: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write expression: %w", err)
	}
	return n > 0, nil
}

const insertExpressionSQL = `
	INSERT INTO expressions
	(id, canonical, root, kind, depth, text, latex, format_version)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

// SaveBatch stores items under a new batch in one transaction.
// Expressions already stored are shared, not duplicated. Labels must be
// unique within the batch.
func (s *Store) SaveBatch(ctx context.Context, source string, items []Item) (Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("save batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM batches`).Scan(&seq); err != nil {
		return Batch{}, fmt.Errorf("save batch: next seq: %w", err)
	}

	batch := Batch{ID: s.ids.Generate(), Source: source, Seq: seq, Entries: []Entry{}}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, source, seq) VALUES (?, ?, ?)`,
		batch.ID, batch.Source, batch.Seq,
	); err != nil {
		return Batch{}, fmt.Errorf("save batch: %w", err)
	}

	for i, item := range items {
		rec := item.Record
		if _, err := tx.ExecContext(ctx, insertExpressionSQL,
			rec.ID, rec.Canonical, rec.Root, rec.Kind, rec.Depth, rec.Text, rec.LaTeX, rec.FormatVersion,
		); err != nil {
			return Batch{}, fmt.Errorf("save batch: expression %q: %w", item.Label, err)
		}

		entry := Entry{Label: item.Label, ExpressionID: rec.ID, Seq: int64(i + 1)}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_entries (batch_id, label, expression_id, seq)
			VALUES (?, ?, ?, ?)
		`, batch.ID, entry.Label, entry.ExpressionID, entry.Seq); err != nil {
			return Batch{}, fmt.Errorf("save batch: entry %q: %w", item.Label, err)
		}
		batch.Entries = append(batch.Entries, entry)
	}

	if err := tx.Commit(); err != nil {
		return Batch{}, fmt.Errorf("save batch: commit: %w", err)
	}
	return batch, nil
}

