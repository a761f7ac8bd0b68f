package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/compiler"
	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Database string
	Catalog  string // catalog for a document argument
	Label    string // label for a document argument
}

// SaveResult reports a saved batch.
type SaveResult struct {
	Batch       store.Batch          `json:"batch"`
	Expressions []RenderedExpression `json:"expressions"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <document|catalog-dir>",
		Short: "Store expressions in the database",
		Long: `Build expressions and store them as one batch.

A directory argument is compiled as a CUE catalog and every named
expression is saved under its label. A file argument is built as a
single document, labelled with --label or the file name.

Expressions are stored by content id, so saving the same tree twice
shares one row between the batches.

Examples:
  exprtree save --db ./exprtree.db ./catalog
  exprtree save --db ./exprtree.db --catalog ./catalog quadratic.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory for a document argument")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for a document argument")

	return cmd
}

func runSave(opts *SaveOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	info, err := os.Stat(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read %s: %v", path, err), nil)
	}

	var env *compiler.Environment
	var labels []string
	trees := make(map[string]expr.Operand)

	if info.IsDir() {
		env, err = loadEnvironment(path)
		if err != nil {
			return failLoad(formatter, err)
		}
		labels = env.Order
		trees = env.Expressions
	} else {
		env, err = loadEnvironment(opts.Catalog)
		if err != nil {
			return failLoad(formatter, err)
		}
		doc, err := document.Load(path)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDocument, err.Error(), nil)
		}
		x, err := doc.BuildWith(env.Builder, env.Resolve)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeDocument,
				fmt.Sprintf("%s: %v", document.ErrorKind(err), err), nil)
		}
		label := opts.Label
		if label == "" {
			label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		labels = []string{label}
		trees[label] = x
	}

	items := make([]store.Item, 0, len(labels))
	rendered := make([]RenderedExpression, 0, len(labels))
	for _, label := range labels {
		r, err := renderExpression(env, label, trees[label])
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeDocument, fmt.Sprintf("expression %q: %v", label, err), nil)
		}
		rec, err := store.NewRecord(trees[label], r.Text, r.LaTeX)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		items = append(items, store.Item{Label: label, Record: rec})
		rendered = append(rendered, r)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	batch, err := st.SaveBatch(ctx, path, items)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	formatter.VerboseLog("Saved batch %s (seq %d)", batch.ID, batch.Seq)

	if formatter.JSON() {
		return formatter.Success(SaveResult{Batch: batch, Expressions: rendered})
	}

	fmt.Fprintf(formatter.Writer, "✓ Saved %d expression(s) in batch %s\n", len(batch.Entries), batch.ID)
	for _, r := range rendered {
		fmt.Fprintf(formatter.Writer, "  %s: %s  %s\n", r.Label, r.ID[:12], r.Text)
	}
	return nil
}
