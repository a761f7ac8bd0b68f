// Package document reads and writes expression trees as data.
//
// A document is the serialisable form of a tree: an operator name and its
// arguments, each tagged with a data type. Documents are loaded from YAML or
// JSON, built into trees through an expr.Builder, and produced back from
// trees with FromOperand.
//
//	name: add
//	data:
//	  - dtype: str
//	    str: x
//	  - dtype: exp
//	    exp:
//	      name: mul
//	      data:
//	        - {dtype: num, num: 2}
//	        - {dtype: str, str: y}
//
// A document whose name is empty holds a single atom in data.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/exprtree/internal/expr"
)

// Argument data types.
const (
	DTypeExp  = "exp"
	DTypeStr  = "str"
	DTypeNum  = "num"
	DTypeBool = "bool"
	DTypeRef  = "ref"
)

// Expression is an operator applied to arguments.
type Expression struct {
	// Name is the operator name ("add", "subset of"). Empty for a lone atom.
	Name string `json:"name" yaml:"name"`
	Data []Arg  `json:"data,omitempty" yaml:"data,omitempty"`
}

// Arg is one argument of an Expression. DType selects which field is used.
type Arg struct {
	DType string      `json:"dtype" yaml:"dtype"`
	Exp   *Expression `json:"exp,omitempty" yaml:"exp,omitempty"`
	Str   string      `json:"str,omitempty" yaml:"str,omitempty"`
	Num   float64     `json:"num,omitempty" yaml:"num,omitempty"`
	Bool  bool        `json:"bool,omitempty" yaml:"bool,omitempty"`
	// Ref names another expression, resolved at build time.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Resolver returns the tree a reference names.
type Resolver func(ref string) (expr.Operand, error)

// IsExpression reports whether the argument is a nested expression.
func (a Arg) IsExpression() bool { return a.DType == DTypeExp }

// InvalidDocumentError reports a malformed document node.
type InvalidDocumentError struct {
	// Path locates the node, e.g. "data[1].exp.data[0]".
	Path    string
	Message string
}

func (e *InvalidDocumentError) Error() string {
	if e.Path == "" {
		return "invalid document: " + e.Message
	}
	return fmt.Sprintf("invalid document at %s: %s", e.Path, e.Message)
}

// ParseYAML decodes a YAML document. Unknown fields are rejected.
func ParseYAML(data []byte) (*Expression, error) {
	var doc Expression
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// ParseJSON decodes a JSON document. Unknown fields are rejected.
func ParseJSON(data []byte) (*Expression, error) {
	var doc Expression
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &doc, nil
}

// Load reads a document file. Files ending in .json are parsed as JSON,
// everything else as YAML.
func Load(path string) (*Expression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// Build constructs the tree described by the document. Nested expressions
// are built first; each node is then combined through b, so flattening and
// validation apply exactly as for hand-built trees.
func (e *Expression) Build(b *expr.Builder) (expr.Operand, error) {
	return e.build(b, nil, "")
}

// BuildWith is like Build but resolves ref arguments through resolve.
func (e *Expression) BuildWith(b *expr.Builder, resolve Resolver) (expr.Operand, error) {
	return e.build(b, resolve, "")
}

// Refs returns the distinct references in the document, in first-use order.
func (e *Expression) Refs() []string {
	var refs []string
	seen := make(map[string]bool)
	var visit func(*Expression)
	visit = func(e *Expression) {
		for _, arg := range e.Data {
			switch {
			case arg.DType == DTypeRef && !seen[arg.Ref]:
				seen[arg.Ref] = true
				refs = append(refs, arg.Ref)
			case arg.DType == DTypeExp && arg.Exp != nil:
				visit(arg.Exp)
			}
		}
	}
	visit(e)
	return refs
}

func (e *Expression) build(b *expr.Builder, resolve Resolver, path string) (expr.Operand, error) {
	operands := make([]any, 0, len(e.Data))
	for i, arg := range e.Data {
		x, err := arg.build(b, resolve, fmt.Sprintf("%sdata[%d]", path, i))
		if err != nil {
			return nil, err
		}
		operands = append(operands, x)
	}

	if e.Name == "" {
		if len(operands) != 1 {
			return nil, &InvalidDocumentError{
				Path:    strings.TrimSuffix(path, "."),
				Message: fmt.Sprintf("an expression without a name holds exactly one atom, got %d arguments", len(operands)),
			}
		}
		return operands[0].(expr.Operand), nil
	}

	x, err := b.Apply(e.Name, operands...)
	if err != nil {
		if path == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", strings.TrimSuffix(path, "."), err)
	}
	return x, nil
}

func (a Arg) build(b *expr.Builder, resolve Resolver, path string) (expr.Operand, error) {
	switch a.DType {
	case DTypeExp:
		if a.Exp == nil {
			return nil, &InvalidDocumentError{Path: path, Message: "dtype exp without exp"}
		}
		return a.Exp.build(b, resolve, path+".exp.")
	case DTypeStr:
		x, err := expr.Atom(a.Str)
		if err != nil {
			return nil, &InvalidDocumentError{Path: path, Message: err.Error()}
		}
		return x, nil
	case DTypeNum:
		return expr.Number(a.Num), nil
	case DTypeBool:
		return expr.Bool(a.Bool), nil
	case DTypeRef:
		if resolve == nil {
			return nil, &InvalidDocumentError{Path: path, Message: fmt.Sprintf("unresolved reference %q", a.Ref)}
		}
		x, err := resolve(a.Ref)
		if err != nil {
			return nil, fmt.Errorf("%s: ref %q: %w", path, a.Ref, err)
		}
		return x, nil
	case "":
		return nil, &InvalidDocumentError{Path: path, Message: "dtype is required"}
	default:
		return nil, &InvalidDocumentError{Path: path, Message: fmt.Sprintf("unknown dtype %q", a.DType)}
	}
}

// FromOperand returns the document form of x.
func FromOperand(x expr.Operand) Expression {
	if a, ok := x.(*expr.AtomicOperand); ok {
		return Expression{Data: []Arg{atomArg(a)}}
	}
	doc := Expression{Name: x.Operator().Name()}
	for _, child := range x.Operands() {
		doc.Data = append(doc.Data, operandArg(child))
	}
	return doc
}

func operandArg(x expr.Operand) Arg {
	if a, ok := x.(*expr.AtomicOperand); ok {
		return atomArg(a)
	}
	sub := FromOperand(x)
	return Arg{DType: DTypeExp, Exp: &sub}
}

func atomArg(a *expr.AtomicOperand) Arg {
	switch a.ValueKind() {
	case expr.ValueSymbol:
		return Arg{DType: DTypeStr, Str: a.String()}
	case expr.ValueBool:
		b, _ := a.Bool()
		return Arg{DType: DTypeBool, Bool: b}
	default:
		n, _ := a.Number()
		return Arg{DType: DTypeNum, Num: n}
	}
}

// MarshalYAML encodes the document form of x as YAML.
func MarshalYAML(x expr.Operand) ([]byte, error) {
	doc := FromOperand(x)
	return yaml.Marshal(&doc)
}

// MarshalJSON encodes the document form of x as indented JSON.
func MarshalJSON(x expr.Operand) ([]byte, error) {
	doc := FromOperand(x)
	return json.MarshalIndent(&doc, "", "  ")
}

// ErrorKind is like expr.ErrorKind but also names document errors.
func ErrorKind(err error) string {
	var ide *InvalidDocumentError
	if errors.As(err, &ide) {
		return "InvalidDocumentError"
	}
	return expr.ErrorKind(err)
}
