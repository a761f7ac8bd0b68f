package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/compiler"
	"github.com/roach88/exprtree/internal/operator"
)

// OpsOptions holds flags for the ops command.
type OpsOptions struct {
	*RootOptions
	Catalog string
}

// OperatorInfo describes one registered operator.
type OperatorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"long_name"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority"`
	Arity    string `json:"arity"`
	Text     string `json:"text,omitempty"`
	LaTeX    string `json:"latex,omitempty"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List registered operators",
		Long: `List every operator in registration order: the builtins, then the
operators of the catalog given with --catalog.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory")

	return cmd
}

func runOps(opts *OpsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	env, err := loadEnvironment(opts.Catalog)
	if err != nil {
		return failLoad(formatter, err)
	}

	var infos []OperatorInfo
	for _, def := range env.Registry.All() {
		id, err := compiler.OperatorID(def)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		info := OperatorInfo{
			ID:       id,
			Name:     def.Name,
			LongName: def.LongName,
			Category: string(def.Category),
			Priority: formatPriority(def.Priority),
			Arity:    formatArity(def.MinArgs, def.MaxArgs),
		}
		if t, ok := env.Text.Template(def.Name); ok {
			info.Text = t.Format
		}
		if t, ok := env.LaTeX.Template(def.Name); ok {
			info.LaTeX = t.Format
		}
		infos = append(infos, info)
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPRIORITY\tARITY\tTEXT")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Name, info.Category, info.Priority, info.Arity, info.Text)
	}
	return tw.Flush()
}

func formatPriority(p int) string {
	if p == operator.Infinite {
		return "infinite"
	}
	return strconv.Itoa(p)
}

// formatArity writes the operand range: "2", "1..2" or "1..".
func formatArity(minArgs, maxArgs int) string {
	switch {
	case maxArgs == 0 || maxArgs == operator.Unbounded:
		return fmt.Sprintf("%d..", minArgs)
	case minArgs == maxArgs:
		return strconv.Itoa(minArgs)
	default:
		return fmt.Sprintf("%d..%d", minArgs, maxArgs)
	}
}
