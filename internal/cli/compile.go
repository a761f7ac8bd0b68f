package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledOperator is a catalog operator with its content id.
type CompiledOperator struct {
	ID string `json:"id"`
	compiler.OperatorSpec
}

// CompilationResult holds the compiled operators and built expressions.
type CompilationResult struct {
	Operators   []CompiledOperator   `json:"operators"`
	Expressions []RenderedExpression `json:"expressions"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <catalog-dir>",
		Short: "Compile a CUE catalog and build its expressions",
		Long: `Compile the CUE operator catalog in a directory.

Operators are installed on top of the builtins and every named expression
is built in dependency order. The result lists each operator with its
content id and each expression with its id and rendered forms.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, catalogDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadCatalog(catalogDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return failLoad(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, catalogDir)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	catalog := loadResult.Catalog
	for _, spec := range catalog.Operators {
		formatter.VerboseLog("Compiling operator: %s", spec.Name)
	}

	env, err := catalog.Load()
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}

	result := &CompilationResult{
		Operators:   make([]CompiledOperator, 0, len(catalog.Operators)),
		Expressions: make([]RenderedExpression, 0, len(env.Order)),
	}
	for _, spec := range catalog.Operators {
		id, err := compiler.OperatorID(spec.Definition)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		result.Operators = append(result.Operators, CompiledOperator{ID: id, OperatorSpec: spec})
	}
	for _, label := range env.Order {
		rendered, err := renderExpression(env, label, env.Expressions[label])
		if err != nil {
			return outputCompileErrors(formatter, []error{fmt.Errorf("expression %q: %w", label, err)})
		}
		result.Expressions = append(result.Expressions, rendered)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d operator(s), %d expression(s)\n\n",
		len(result.Operators), len(result.Expressions))

	if len(result.Operators) > 0 {
		fmt.Fprintln(formatter.Writer, "Operators:")
		for _, op := range result.Operators {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", op.Name, op.ID[:12])
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(result.Expressions) > 0 {
		fmt.Fprintln(formatter.Writer, "Expressions:")
		for _, x := range result.Expressions {
			fmt.Fprintf(formatter.Writer, "  %s: %s → %s\n", x.Label, x.ID[:12], x.Text)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled catalog to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	failure := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return failure
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
