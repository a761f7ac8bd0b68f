// Package expr builds expression trees.
//
// A tree is made of three node kinds:
//
//   - AtomicOperand (A): a number, a symbol or a truth value
//   - AtomicOperation (O): an operator applied to atoms only
//   - CompoundOperation (CO): an operator applied to a mix of atoms and
//     operation nodes
//
// Nodes are immutable. Combine is the authoritative constructor: it applies
// associative flattening eagerly, so x+(y+z) and (x+y)+z produce the same
// node shape, while non-associative nestings such as x-(y-z) are preserved.
// Every node is validated before it is returned; a failed construction
// returns an error and no node.
//
// Atoms are interned by payload through a weakly referenced table, so
// Atom("x") returns the same node for as long as anyone references it.
// FreshAtom builds an atom that is never shared.
package expr
