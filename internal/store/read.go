package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ReadExpression retrieves a single expression by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadExpression(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, canonical, root, kind, depth, text, latex, format_version
		FROM expressions
		WHERE id = ?
	`, id)
	return scanRecord(row)
}

// ListOptions filters ListExpressions.
type ListOptions struct {
	// Root keeps expressions whose root operator is Root. Empty means all.
	Root string
	// Prefix keeps expressions whose id starts with Prefix.
	Prefix string
	// Limit caps the result; 0 means no limit.
	Limit int
}

// ListExpressions returns stored expressions ordered by id.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListExpressions(ctx context.Context, opts ListOptions) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if opts.Root != "" {
		where = append(where, "root = ?")
		args = append(args, opts.Root)
	}
	if opts.Prefix != "" {
		where = append(where, "substr(id, 1, ?) = ?")
		args = append(args, len(opts.Prefix), opts.Prefix)
	}

	query := `SELECT id, canonical, root, kind, depth, text, latex, format_version FROM expressions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id COLLATE BINARY ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expressions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expressions: %w", err)
	}
	return records, nil
}

// ResolveID expands an id prefix to the single stored id it names.
// Returns sql.ErrNoRows if nothing matches and an error if the prefix is
// ambiguous.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	records, err := s.ListExpressions(ctx, ListOptions{Prefix: prefix, Limit: 2})
	if err != nil {
		return "", err
	}
	switch len(records) {
	case 0:
		return "", sql.ErrNoRows
	case 1:
		return records[0].ID, nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
	}
}

// ReadBatch retrieves a batch and its entries, ordered by seq.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBatch(ctx context.Context, id string) (Batch, error) {
	var b Batch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, seq FROM batches WHERE id = ?
	`, id).Scan(&b.ID, &b.Source, &b.Seq)
	if err != nil {
		if err == sql.ErrNoRows {
			return Batch{}, err
		}
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT label, expression_id, seq
		FROM batch_entries
		WHERE batch_id = ?
		ORDER BY seq ASC, label COLLATE BINARY ASC
	`, id)
	if err != nil {
		return Batch{}, fmt.Errorf("query batch entries: %w", err)
	}
	defer rows.Close()

	b.Entries = []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Label, &e.ExpressionID, &e.Seq); err != nil {
			return Batch{}, fmt.Errorf("scan batch entry: %w", err)
		}
		b.Entries = append(b.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, fmt.Errorf("iterate batch entries: %w", err)
	}
	return b, nil
}

// ListBatches returns all batches without entries, oldest first.
func (s *Store) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, seq FROM batches
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.Seq); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// BatchesContaining returns the ids of the batches that hold expression id,
// oldest first.
func (s *Store) BatchesContaining(ctx context.Context, expressionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT b.id, b.seq
		FROM batch_entries e
		JOIN batches b ON b.id = e.batch_id
		WHERE e.expression_id = ?
		ORDER BY b.seq ASC, b.id COLLATE BINARY ASC
	`, expressionID)
	if err != nil {
		return nil, fmt.Errorf("query batches containing: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var (
			id  string
			seq int64
		)
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch ids: %w", err)
	}
	return ids, nil
}

// Verify recomputes every stored id from its canonical form and returns
// the errors of the records that no longer match.
func (s *Store) Verify(ctx context.Context) ([]error, error) {
	records, err := s.ListExpressions(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	var problems []error
	for _, rec := range records {
		if err := rec.Verify(); err != nil {
			problems = append(problems, err)
		}
	}
	return problems, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Canonical, &r.Root, &r.Kind, &r.Depth, &r.Text, &r.LaTeX, &r.FormatVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan expression: %w", err)
	}
	return r, nil
}
