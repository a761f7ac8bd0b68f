package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Catalog  string
	Batch    bool
}

// ShowResult is one stored expression with the batches that hold it.
type ShowResult struct {
	store.Record
	Batches []string `json:"batches"`
	// Rebuilt reports whether the canonical form builds back to a tree
	// with the same id.
	Rebuilt bool   `json:"rebuilt"`
	Problem string `json:"problem,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored expression or batch",
		Long: `Show one stored expression. Any unambiguous id prefix is accepted.

The stored canonical form is checked against its id and rebuilt into a
tree; expressions using catalog operators need that catalog (--catalog).
With --batch, the argument is a batch id and its entries are listed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory used to rebuild the tree")
	cmd.Flags().BoolVar(&opts.Batch, "batch", false, "show a batch instead of an expression")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	if opts.Batch {
		return showBatch(ctx, formatter, st, id)
	}

	full, err := st.ResolveID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no expression with id %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	rec, err := st.ReadExpression(ctx, full)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	batches, err := st.BatchesContaining(ctx, full)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ShowResult{Record: rec, Batches: batches}
	if problem := checkRecord(opts.Catalog, rec); problem != "" {
		result.Problem = problem
	} else {
		result.Rebuilt = true
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputShowText(formatter, result)
	}
	if result.Problem != "" {
		return NewExitError(ExitFailure, result.Problem)
	}
	return nil
}

// checkRecord verifies rec's id and rebuilds its tree, returning a
// description of the first problem found.
func checkRecord(catalogDir string, rec store.Record) string {
	if err := rec.Verify(); err != nil {
		return err.Error()
	}
	env, err := loadEnvironment(catalogDir)
	if err != nil {
		return err.Error()
	}
	x, err := rec.Operand(env.Builder)
	if err != nil {
		return err.Error()
	}
	id, err := document.ID(x)
	if err != nil {
		return err.Error()
	}
	if id != rec.ID {
		return fmt.Sprintf("record %s: rebuilt tree has id %s", rec.ID, id)
	}
	return ""
}

func outputShowText(formatter *OutputFormatter, result ShowResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "ID:      %s\n", result.ID)
	fmt.Fprintf(w, "Kind:    %s\n", result.Kind)
	if result.Root != "" {
		fmt.Fprintf(w, "Root:    %s\n", result.Root)
	}
	fmt.Fprintf(w, "Depth:   %d\n", result.Depth)
	fmt.Fprintf(w, "Text:    %s\n", result.Text)
	if result.LaTeX != "" {
		fmt.Fprintf(w, "LaTeX:   %s\n", result.LaTeX)
	}
	fmt.Fprintf(w, "Batches: %d\n", len(result.Batches))
	for _, b := range result.Batches {
		fmt.Fprintf(w, "  %s\n", b)
	}
	if result.Problem != "" {
		fmt.Fprintf(w, "✗ %s\n", result.Problem)
	} else {
		fmt.Fprintln(w, "✓ Canonical form rebuilds to the same id")
	}
}

func showBatch(ctx context.Context, formatter *OutputFormatter, st *store.Store, id string) error {
	batch, err := st.ReadBatch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no batch with id %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(batch)
	}
	fmt.Fprintf(formatter.Writer, "Batch %s (seq %d)\n", batch.ID, batch.Seq)
	fmt.Fprintf(formatter.Writer, "Source: %s\n", batch.Source)
	for _, e := range batch.Entries {
		fmt.Fprintf(formatter.Writer, "  %d. %s: %s\n", e.Seq, e.Label, e.ExpressionID)
	}
	return nil
}
