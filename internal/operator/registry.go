package operator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/exprtree/internal/intern"
)

// ErrDuplicateOperator is returned when registering a name twice.
var ErrDuplicateOperator = errors.New("duplicate operator")

// NoSuchOperatorError is returned when looking up an unregistered name.
type NoSuchOperatorError struct {
	Name string
}

func (e *NoSuchOperatorError) Error() string {
	return fmt.Sprintf("no such operator: %q", e.Name)
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry. On first call it registers all
// builtin operators.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
		registerBuiltins(global)
	})
	return global
}

// Registry holds operator definitions and their live instances.
//
// Definitions are kept for the life of the registry. Instances are interned
// weakly: an operator nobody references can be collected and is rebuilt on
// the next lookup, but two live instances for one name never coexist.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
	live  *intern.Table[string, Operator]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
		live: intern.NewTable[string, Operator](),
	}
}

// NewBuiltinRegistry creates a registry holding the builtin operators and
// nothing else. Catalog operators installed there stay out of Global.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

// Register adds an operator definition.
//
// Derived fields are filled in and the swapped relation is made mutual: when
// the new definition names a registered partner without a partner of its own,
// that partner now points back; when a registered definition already names
// the new one, the new one points back to it.
func (r *Registry) Register(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("register operator: name is required")
	}
	def = def.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("register operator %q: %w", def.Name, ErrDuplicateOperator)
	}

	if def.Swapped != "" {
		if partner, ok := r.defs[def.Swapped]; ok && partner.Swapped == "" {
			partner.Swapped = def.Name
		}
	} else {
		for _, name := range r.order {
			if r.defs[name].Swapped == def.Name {
				def.Swapped = name
				break
			}
		}
	}

	r.defs[def.Name] = &def
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the live operator for name, creating it if needed.
func (r *Registry) Lookup(name string) (*Operator, error) {
	r.mu.RLock()
	def, ok := r.defs[name]
	var snapshot Definition
	if ok {
		snapshot = *def
	}
	r.mu.RUnlock()

	if !ok {
		return nil, &NoSuchOperatorError{Name: name}
	}
	return r.live.GetOrCreate(name, func() (*Operator, error) {
		return &Operator{def: snapshot, reg: r}, nil
	})
}

// MustLookup is like Lookup but panics on error.
// Use only for names known to be registered.
func (r *Registry) MustLookup(name string) *Operator {
	op, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return op
}

// Has returns true if name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Definition returns the definition registered under name.
func (r *Registry) Definition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// All returns every definition in registration order.
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, *r.defs[name])
	}
	return result
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) swappedName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.defs[name]; ok {
		return def.Swapped
	}
	return ""
}
