package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
	Root     string
	Prefix   string
	Limit    int
	Batches  bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored expressions or batches",
		Long: `List the expressions in the database ordered by id, or with --batches
the saved batches oldest first.

Examples:
  exprtree list --db ./exprtree.db
  exprtree list --db ./exprtree.db --root add --limit 10
  exprtree list --db ./exprtree.db --batches --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Root, "root", "", "only expressions with this root operator")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "only ids starting with this prefix")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of expressions (0 for all)")
	cmd.Flags().BoolVar(&opts.Batches, "batches", false, "list batches instead of expressions")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "limit must be non-negative", nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	if opts.Batches {
		batches, err := st.ListBatches(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		if formatter.JSON() {
			return formatter.Success(batches)
		}
		if len(batches) == 0 {
			fmt.Fprintln(formatter.Writer, "No batches stored")
			return nil
		}
		tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tBATCH\tSOURCE")
		for _, b := range batches {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", b.Seq, b.ID, b.Source)
		}
		return tw.Flush()
	}

	records, err := st.ListExpressions(ctx, store.ListOptions{
		Root:   opts.Root,
		Prefix: opts.Prefix,
		Limit:  opts.Limit,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No expressions stored")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tDEPTH\tTEXT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID[:12], r.Kind, r.Depth, r.Text)
	}
	return tw.Flush()
}
