package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/exprtree/internal/operator"
)

// UnrecognizedOperandError is returned when a value cannot be converted to
// an operand.
type UnrecognizedOperandError struct {
	Value  any
	Reason string
	Err    error
}

func (e *UnrecognizedOperandError) Error() string {
	msg := fmt.Sprintf("unrecognized operand %v of type %T", e.Value, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnrecognizedOperandError) Unwrap() error { return e.Err }

// ArityError is returned when an operation gets fewer operands than its
// operator requires.
type ArityError struct {
	Operator string
	Got      int
	Min      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s takes at least %d operand(s), got %d", e.Operator, e.Min, e.Got)
}

// NotChainableError is returned when an operation gets more operands than
// its operator accepts.
type NotChainableError struct {
	Operator string
	Got      int
	Max      int
}

func (e *NotChainableError) Error() string {
	if e.Max == operator.Unbounded {
		return fmt.Sprintf("%s is not chainable, got %d operands", e.Operator, e.Got)
	}
	return fmt.Sprintf("%s takes at most %d operand(s) and is not chainable, got %d", e.Operator, e.Max, e.Got)
}

// OperandTypeError is returned when an operand's variant is not allowed in
// the node being built.
type OperandTypeError struct {
	Node    Kind
	Index   int
	Operand Kind
	Nil     bool
}

func (e *OperandTypeError) Error() string {
	if e.Nil {
		return fmt.Sprintf("%s operand %d is nil", e.Node, e.Index)
	}
	return fmt.Sprintf("%s does not accept a %s as operand %d", e.Node, e.Operand, e.Index)
}

// NonBooleanOperandError is returned when a boolean-only operator is given
// operands that do not evaluate to truth values. Operands lists every
// offender as "<operand> (<kind>)".
type NonBooleanOperandError struct {
	Operator string
	Operands []string
}

func (e *NonBooleanOperandError) Error() string {
	return fmt.Sprintf("non-boolean operand(s) for %q: %s", e.Operator, strings.Join(e.Operands, ", "))
}

// UnboundSymbolError is returned by GetValue when a symbol has no value in
// the context.
type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("symbol %q is not bound", e.Name)
}

// ErrorKind returns the name of the construction error kind carried by err,
// or "" when err is nil or of no known kind.
func ErrorKind(err error) string {
	var (
		nso *operator.NoSuchOperatorError
		uoe *UnrecognizedOperandError
		ae  *ArityError
		nce *NotChainableError
		ote *OperandTypeError
		nbe *NonBooleanOperandError
		ube *UnboundSymbolError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nso):
		return "NoSuchOperatorError"
	case errors.As(err, &ae):
		return "ArityError"
	case errors.As(err, &nce):
		return "NotChainableError"
	case errors.As(err, &ote):
		return "OperandTypeError"
	case errors.As(err, &nbe):
		return "NonBooleanOperandError"
	case errors.As(err, &ube):
		return "UnboundSymbolError"
	case errors.As(err, &uoe):
		return "UnrecognizedOperandError"
	default:
		return ""
	}
}
