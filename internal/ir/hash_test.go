package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionID_Deterministic(t *testing.T) {
	tree := Object{"op": String("add"), "args": Array{Object{"sym": String("x")}, Object{"num": String("1")}}}

	id1, err := ExpressionID(tree)
	require.NoError(t, err)
	id2, err := ExpressionID(Object{"args": tree["args"], "op": tree["op"]})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not matter")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestExpressionID_ChangesWithInput(t *testing.T) {
	a := MustExpressionID(Object{"op": String("add")})
	b := MustExpressionID(Object{"op": String("sub")})
	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	obj := Object{"name": String("add")}

	expr, err := ExpressionID(obj)
	require.NoError(t, err)
	op, err := OperatorID(obj)
	require.NoError(t, err)
	assert.NotEqual(t, expr, op, "same content under different domains must differ")
}

func TestHashWithDomain_Format(t *testing.T) {
	data := []byte(`{"a":1}`)
	sum := sha256.Sum256(append([]byte(DomainExpression+"\x00"), data...))
	assert.Equal(t, hex.EncodeToString(sum[:]), hashWithDomain(DomainExpression, data))
}

func TestExpressionID_RejectsNull(t *testing.T) {
	_, err := ExpressionID(Object{"op": nil})
	assert.Error(t, err)
	assert.Panics(t, func() { MustExpressionID(Object{"op": nil}) })
}
