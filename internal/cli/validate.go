package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/exprtree/internal/compiler"
	"github.com/roach88/exprtree/internal/operator"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Operators   int                        `json:"operators"`
	Expressions int                        `json:"expressions"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a catalog without building it",
		Long: `Validate the CUE operator catalog in a directory.

Checks operator metadata, templates, cross references between operators,
expression documents and reference cycles. Every problem is reported,
not only the first. Expressions are only built once the catalog is
otherwise sound.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, catalogDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	validationErrors, catalog, err := validateDir(catalogDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	formatter.VerboseLog("Validated %d operator(s), %d expression(s) in %s",
		len(catalog.Operators), len(catalog.Expressions), catalogDir)

	result := ValidationResult{
		Valid:       len(validationErrors) == 0,
		Operators:   len(catalog.Operators),
		Expressions: len(catalog.Expressions),
		Errors:      validationErrors,
	}
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d operator(s), %d expression(s))\n",
		result.Operators, result.Expressions)
	return nil
}

// validateDir loads the catalog in dir and validates it against the
// builtin operators. Compile errors are returned as validation errors
// alongside those of the entries that did compile. The error return is
// reserved for directories that cannot be loaded at all.
func validateDir(dir string) ([]compiler.ValidationError, *compiler.Catalog, error) {
	loadResult, loadErrors := LoadCatalog(dir, LoadModeCollectAll)
	if loadResult == nil || loadResult.Catalog == nil {
		if len(loadErrors) > 0 {
			return nil, nil, loadErrors[0]
		}
		return nil, nil, fmt.Errorf("no catalog loaded from %s", dir)
	}

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			loadErr = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    getLineFromCuePos(loadErr.Pos),
		})
	}

	validationErrors = append(validationErrors,
		compiler.ValidateCatalog(loadResult.Catalog, operator.Global())...)
	return validationErrors, loadResult.Catalog, nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}

// ValidateCatalogDir validates the catalog in a directory.
// This is a helper function for external callers.
func ValidateCatalogDir(dir string) ([]compiler.ValidationError, error) {
	errs, _, err := validateDir(dir)
	return errs, err
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}
