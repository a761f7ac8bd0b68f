package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content ids. The version suffix allows migrating the
// canonical form without colliding with old ids.
const (
	DomainExpression = "exprtree/expression/v1"
	DomainOperator   = "exprtree/operator/v1"
)

// FormatVersion is the version of the canonical expression form.
const FormatVersion = "1"

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The separator keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ExpressionID returns the content id of a canonical expression tree.
func ExpressionID(tree Object) (string, error) {
	canonical, err := MarshalCanonical(tree)
	if err != nil {
		return "", fmt.Errorf("ExpressionID: %w", err)
	}
	return hashWithDomain(DomainExpression, canonical), nil
}

// OperatorID returns the content id of a canonical operator definition.
func OperatorID(def Object) (string, error) {
	canonical, err := MarshalCanonical(def)
	if err != nil {
		return "", fmt.Errorf("OperatorID: %w", err)
	}
	return hashWithDomain(DomainOperator, canonical), nil
}

// MustExpressionID is like ExpressionID but panics on error.
// Use only in tests or when the tree is known to be valid.
func MustExpressionID(tree Object) string {
	id, err := ExpressionID(tree)
	if err != nil {
		panic(err)
	}
	return id
}
