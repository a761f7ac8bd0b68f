package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/compiler"
	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Catalog string // catalog directory
	LaTeX   bool   // print the LaTeX form in text output
}

// RenderedExpression is a built tree with its id and rendered forms.
type RenderedExpression struct {
	Label      string `json:"label,omitempty"`
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Root       string `json:"root,omitempty"`
	Depth      int    `json:"depth"`
	Text       string `json:"text"`
	LaTeX      string `json:"latex,omitempty"`
	LaTeXError string `json:"latex_error,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Build and render an expression document",
		Long: `Build the expression tree described by a YAML or JSON document and
print its content id and rendered forms.

With --catalog, operators and named expressions from the CUE catalog in
that directory are available to the document.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory")
	cmd.Flags().BoolVar(&opts.LaTeX, "latex", false, "also print the LaTeX form")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	env, err := loadEnvironment(opts.Catalog)
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
	formatter.VerboseLog("Built %s from %s", x.Kind(), path)

	rendered, err := renderExpression(env, "", x)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDocument, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(rendered)
	}
	fmt.Fprintln(formatter.Writer, rendered.Text)
	if opts.LaTeX {
		if rendered.LaTeXError != "" {
			fmt.Fprintf(formatter.Writer, "latex: %s\n", rendered.LaTeXError)
		} else {
			fmt.Fprintf(formatter.Writer, "latex: %s\n", rendered.LaTeX)
		}
	}
	formatter.VerboseLog("id %s, kind %s, depth %d", rendered.ID, rendered.Kind, rendered.Depth)
	return nil
}

// renderExpression computes the id and both rendered forms of x.
// A LaTeX template missing for some catalog operator is not an error:
// the text form is still useful, so the failure is recorded instead.
func renderExpression(env *compiler.Environment, label string, x expr.Operand) (RenderedExpression, error) {
	id, err := document.ID(x)
	if err != nil {
		return RenderedExpression{}, err
	}
	text, err := env.Text.Render(x)
	if err != nil {
		return RenderedExpression{}, err
	}

	rendered := RenderedExpression{
		Label: label,
		ID:    id,
		Kind:  x.Kind().String(),
		Depth: expr.Depth(x),
		Text:  text,
	}
	if op := x.Operator(); op != nil {
		rendered.Root = op.Name()
	}

	latex, err := env.LaTeX.Render(x)
	var missing *render.MissingTemplateError
	switch {
	case errors.As(err, &missing):
		rendered.LaTeXError = err.Error()
	case err != nil:
		return RenderedExpression{}, err
	default:
		rendered.LaTeX = latex
	}
	return rendered, nil
}

// failLoad reports a catalog that could not be loaded.
func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
