package expr

import (
	"reflect"
	"sync"
)

var (
	convertersMu sync.RWMutex
	converters   = map[reflect.Type]func(any) (Operand, error){}
)

// RegisterConverter makes values of type T convertible to operands.
// Registering a type twice replaces the earlier converter.
func RegisterConverter[T any](fn func(T) (Operand, error)) {
	t := reflect.TypeFor[T]()

	convertersMu.Lock()
	defer convertersMu.Unlock()
	converters[t] = func(v any) (Operand, error) {
		return fn(v.(T))
	}
}

// Convert turns value into an operand.
//
// Operands pass through unchanged. Numbers, bools, Symbols and strings become
// interned atoms. Other types are looked up among the registered converters;
// anything else fails with UnrecognizedOperandError.
func Convert(value any) (Operand, error) {
	switch v := value.(type) {
	case nil:
		return nil, &UnrecognizedOperandError{Value: value}
	case *AtomicOperand:
		if v == nil {
			return nil, &UnrecognizedOperandError{Value: value}
		}
		return v, nil
	case *AtomicOperation:
		if v == nil {
			return nil, &UnrecognizedOperandError{Value: value}
		}
		return v, nil
	case *CompoundOperation:
		if v == nil {
			return nil, &UnrecognizedOperandError{Value: value}
		}
		return v, nil
	}

	a, err := newAtomicOperand(value)
	if err != nil {
		return nil, &UnrecognizedOperandError{Value: value, Err: err}
	}
	if a != nil {
		return internAtom(a), nil
	}

	convertersMu.RLock()
	fn, ok := converters[reflect.TypeOf(value)]
	convertersMu.RUnlock()
	if !ok {
		return nil, &UnrecognizedOperandError{Value: value}
	}

	x, err := fn(value)
	if err != nil {
		return nil, &UnrecognizedOperandError{Value: value, Err: err}
	}
	if x == nil {
		return nil, &UnrecognizedOperandError{Value: value, Reason: "converter returned no operand"}
	}
	return x, nil
}

// ConvertAll converts every value, stopping at the first failure.
func ConvertAll(values ...any) ([]Operand, error) {
	result := make([]Operand, 0, len(values))
	for _, v := range values {
		x, err := Convert(v)
		if err != nil {
			return nil, err
		}
		result = append(result, x)
	}
	return result, nil
}
