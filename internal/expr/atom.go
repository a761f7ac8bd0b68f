package expr

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/exprtree/internal/intern"
	"github.com/roach88/exprtree/internal/operator"
)

// ErrEmptySymbol is returned when a symbol name is empty after stripping
// signs and parentheses.
var ErrEmptySymbol = errors.New("empty symbol name")

// Symbol is a named variable, optionally negated.
type Symbol struct {
	Name    string
	Negated bool
}

// Negate returns the symbol with its negation flag toggled.
func (s Symbol) Negate() Symbol {
	return Symbol{Name: s.Name, Negated: !s.Negated}
}

func (s Symbol) String() string {
	if s.Negated {
		return "-" + s.Name
	}
	return s.Name
}

// ParseSymbol parses a symbol string.
//
// Each leading minus toggles negation and a pair of parentheses enclosing
// the whole string is stripped, so "-(-x)" is x and "(-y)" is -y, while
// "(a)+(b)" is kept as it is. Unbalanced parentheses are tolerated; each
// call logs at most one warning for them.
func ParseSymbol(s string) (Symbol, error) {
	if strings.Count(s, "(") != strings.Count(s, ")") {
		slog.Warn("inconsistent brackets in symbol string", "symbol", s)
	}

	negated := false
	for {
		if enclosed(s) {
			s = s[1 : len(s)-1]
			continue
		}
		if strings.HasPrefix(s, "-") {
			trimmed := strings.TrimLeft(s, "-")
			if (len(s)-len(trimmed))%2 == 1 {
				negated = !negated
			}
			s = trimmed
			continue
		}
		break
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Symbol{}, ErrEmptySymbol
	}
	return Symbol{Name: s, Negated: negated}, nil
}

// enclosed reports whether the parenthesis opening s is closed by its last
// byte.
func enclosed(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// ValueKind identifies the payload of an atom.
type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueSymbol
	ValueBool
)

// AtomicOperand is a leaf node wrapping a number, a symbol or a truth value.
type AtomicOperand struct {
	kind ValueKind
	num  float64
	sym  Symbol
	b    bool
}

// atomKey is the intern key of an atom. Numbers are keyed by their bit
// pattern so that NaN entries can be found and evicted.
type atomKey struct {
	kind ValueKind
	bits uint64
	sym  Symbol
	b    bool
}

func (a *AtomicOperand) key() atomKey {
	return atomKey{kind: a.kind, bits: math.Float64bits(a.num), sym: a.sym, b: a.b}
}

var atoms = intern.NewTable[atomKey, AtomicOperand]()

// Atom converts value to an atom and interns it: structurally equal payloads
// yield the same node while it is alive.
//
// Accepted values are numbers, bools, Symbols and strings (parsed with
// ParseSymbol). Values of registered converter types are accepted as long as
// they convert to an atom.
func Atom(value any) (*AtomicOperand, error) {
	x, err := Convert(value)
	if err != nil {
		return nil, err
	}
	a, ok := x.(*AtomicOperand)
	if !ok {
		return nil, &UnrecognizedOperandError{Value: value, Reason: "value is an operation, not an atom"}
	}
	return a, nil
}

// MustAtom is like Atom but panics on error.
func MustAtom(value any) *AtomicOperand {
	a, err := Atom(value)
	if err != nil {
		panic(err)
	}
	return a
}

// FreshAtom builds an atom that is not shared with any other caller.
func FreshAtom(value any) (*AtomicOperand, error) {
	a, err := newAtomicOperand(value)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &UnrecognizedOperandError{Value: value}
	}
	return a, nil
}

// Number returns the interned atom for v.
func Number(v float64) *AtomicOperand {
	return internAtom(&AtomicOperand{kind: ValueNumber, num: v})
}

// Bool returns the interned atom for b.
func Bool(b bool) *AtomicOperand {
	return internAtom(&AtomicOperand{kind: ValueBool, b: b})
}

// Sym returns the interned atom for s.
func Sym(s Symbol) *AtomicOperand {
	return internAtom(&AtomicOperand{kind: ValueSymbol, sym: s})
}

func internAtom(a *AtomicOperand) *AtomicOperand {
	v, _ := atoms.GetOrCreate(a.key(), func() (*AtomicOperand, error) {
		return a, nil
	})
	return v
}

// newAtomicOperand builds an unshared atom from the builtin payload types.
// It returns nil, nil when value is of no builtin atom type.
func newAtomicOperand(value any) (*AtomicOperand, error) {
	switch v := value.(type) {
	case float64:
		return &AtomicOperand{kind: ValueNumber, num: v}, nil
	case float32:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case int:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case int8:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case int16:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case int32:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case int64:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case uint:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case uint8:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case uint16:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case uint32:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case uint64:
		return &AtomicOperand{kind: ValueNumber, num: float64(v)}, nil
	case bool:
		return &AtomicOperand{kind: ValueBool, b: v}, nil
	case Symbol:
		if v.Name == "" {
			return nil, ErrEmptySymbol
		}
		return &AtomicOperand{kind: ValueSymbol, sym: v}, nil
	case string:
		sym, err := ParseSymbol(v)
		if err != nil {
			return nil, fmt.Errorf("parse symbol %q: %w", v, err)
		}
		return &AtomicOperand{kind: ValueSymbol, sym: sym}, nil
	}
	return nil, nil
}

// Symbols builds interned symbol atoms from list.
//
// An all-alphabetic list yields one symbol per letter ("xyz" is x, y, z).
// Otherwise the list is split on commas and spaces ("alpha, beta").
func Symbols(list string) ([]*AtomicOperand, error) {
	var names []string
	if isAlpha(list) {
		for _, r := range list {
			names = append(names, string(r))
		}
	} else {
		names = strings.FieldsFunc(list, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}

	result := make([]*AtomicOperand, 0, len(names))
	for _, name := range names {
		a, err := Atom(name)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Shared single-letter symbols. They hold strong references, so Atom("x")
// is X for the life of the process.
var (
	A, B, C, D, E, F, G, H, I, J, K, L, M = letter('a'), letter('b'), letter('c'), letter('d'), letter('e'), letter('f'), letter('g'), letter('h'), letter('i'), letter('j'), letter('k'), letter('l'), letter('m')
	N, O, P, Q, R, S, T, U, V, W, X, Y, Z = letter('n'), letter('o'), letter('p'), letter('q'), letter('r'), letter('s'), letter('t'), letter('u'), letter('v'), letter('w'), letter('x'), letter('y'), letter('z')
)

func letter(r rune) *AtomicOperand {
	return Sym(Symbol{Name: string(r)})
}

func (a *AtomicOperand) Kind() Kind { return KindAtom }

func (a *AtomicOperand) Operator() *operator.Operator { return nil }

func (a *AtomicOperand) Operands() []Operand { return nil }

// Const reports whether the atom is constant-foldable: only truth values are.
func (a *AtomicOperand) Const() bool { return a.kind == ValueBool }

func (a *AtomicOperand) EvaluatesToBool() bool { return a.kind == ValueBool }

func (a *AtomicOperand) Priority() int { return operator.Infinite }

func (a *AtomicOperand) isOperand() {}

// ValueKind returns the payload kind.
func (a *AtomicOperand) ValueKind() ValueKind { return a.kind }

// Value returns the payload as float64, Symbol or bool.
func (a *AtomicOperand) Value() any {
	switch a.kind {
	case ValueSymbol:
		return a.sym
	case ValueBool:
		return a.b
	default:
		return a.num
	}
}

// Number returns the numeric payload.
func (a *AtomicOperand) Number() (float64, bool) {
	return a.num, a.kind == ValueNumber
}

// Symbol returns the symbol payload.
func (a *AtomicOperand) Symbol() (Symbol, bool) {
	return a.sym, a.kind == ValueSymbol
}

// Bool returns the truth-value payload.
func (a *AtomicOperand) Bool() (bool, bool) {
	return a.b, a.kind == ValueBool
}

// Negative reports whether the atom renders with a leading minus sign.
func (a *AtomicOperand) Negative() bool {
	switch a.kind {
	case ValueNumber:
		return math.Signbit(a.num) && !math.IsNaN(a.num)
	case ValueSymbol:
		return a.sym.Negated
	default:
		return false
	}
}

// Negate returns the interned atom with the opposite value: numbers flip
// sign, symbols toggle negation and truth values flip.
func (a *AtomicOperand) Negate() *AtomicOperand {
	switch a.kind {
	case ValueSymbol:
		return Sym(a.sym.Negate())
	case ValueBool:
		return Bool(!a.b)
	default:
		return Number(-a.num)
	}
}

// GetValue resolves the atom against ctx, which maps symbol names to values.
// Numbers and truth values resolve to themselves. A negated symbol bound to a
// number resolves to the negated number.
func (a *AtomicOperand) GetValue(ctx map[string]any) (any, error) {
	switch a.kind {
	case ValueNumber:
		return a.num, nil
	case ValueBool:
		return a.b, nil
	}

	v, ok := ctx[a.sym.Name]
	if !ok {
		return nil, &UnboundSymbolError{Name: a.sym.Name}
	}
	if !a.sym.Negated {
		return v, nil
	}
	switch n := v.(type) {
	case float64:
		return -n, nil
	case int:
		return -n, nil
	case int64:
		return -n, nil
	case bool:
		return !n, nil
	}
	return nil, fmt.Errorf("negate value of %s: unsupported type %T", a.sym.Name, v)
}

// String returns the literal form of the payload.
func (a *AtomicOperand) String() string {
	switch a.kind {
	case ValueSymbol:
		return a.sym.String()
	case ValueBool:
		return strconv.FormatBool(a.b)
	default:
		return FormatNumber(a.num)
	}
}

// FormatNumber formats v in the shortest form that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
