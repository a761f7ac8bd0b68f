package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprtree/internal/expr"
)

const sumDoc = `
name: add
data:
  - dtype: str
    str: x
  - dtype: exp
    exp:
      name: mul
      data:
        - {dtype: num, num: 2}
        - {dtype: str, str: y}
`

func TestParseYAML_Build(t *testing.T) {
	doc, err := ParseYAML([]byte(sumDoc))
	require.NoError(t, err)
	assert.Equal(t, "add", doc.Name)
	require.Len(t, doc.Data, 2)
	assert.True(t, doc.Data[1].IsExpression())

	x, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, "add(x, mul(2, y))", x.String())
	assert.Equal(t, expr.KindCompoundOperation, x.Kind())
}

func TestParseYAML_RejectsUnknownFields(t *testing.T) {
	_, err := ParseYAML([]byte("name: add\nargs: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"name":"lt","data":[{"dtype":"str","str":"x"},{"dtype":"num","num":5}]}`))
	require.NoError(t, err)

	x, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, "lt(x, 5)", x.String())

	_, err = ParseJSON([]byte(`{"name":"lt","extra":1}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "sum.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sumDoc), 0o644))
	doc, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "add", doc.Name)

	jsonPath := filepath.Join(dir, "neg.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"neg","data":[{"dtype":"bool","bool":true}]}`), 0o644))
	doc, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "neg", doc.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBuild_Flattens(t *testing.T) {
	doc := &Expression{Name: "add", Data: []Arg{
		{DType: DTypeExp, Exp: &Expression{Name: "add", Data: []Arg{
			{DType: DTypeStr, Str: "x"},
			{DType: DTypeStr, Str: "y"},
		}}},
		{DType: DTypeStr, Str: "z"},
	}}

	x, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, "add(x, y, z)", x.String())
	assert.Equal(t, expr.KindAtomicOperation, x.Kind())
}

func TestBuild_LoneAtom(t *testing.T) {
	doc := &Expression{Data: []Arg{{DType: DTypeStr, Str: "-(x)"}}}
	x, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, "-x", x.String())

	_, err = (&Expression{}).Build(expr.Default())
	assert.Equal(t, "InvalidDocumentError", ErrorKind(err))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  *Expression
		kind string
		path string
	}{
		{
			name: "unknown operator",
			doc:  &Expression{Name: "frobnicate", Data: []Arg{{DType: DTypeNum, Num: 1}}},
			kind: "NoSuchOperatorError",
		},
		{
			name: "missing dtype",
			doc:  &Expression{Name: "add", Data: []Arg{{Str: "x"}}},
			kind: "InvalidDocumentError",
			path: "data[0]",
		},
		{
			name: "unknown dtype",
			doc:  &Expression{Name: "add", Data: []Arg{{DType: "vec"}}},
			kind: "InvalidDocumentError",
			path: "data[0]",
		},
		{
			name: "exp without exp",
			doc:  &Expression{Name: "add", Data: []Arg{{DType: DTypeNum, Num: 1}, {DType: DTypeExp}}},
			kind: "InvalidDocumentError",
			path: "data[1]",
		},
		{
			name: "empty symbol",
			doc:  &Expression{Name: "add", Data: []Arg{{DType: DTypeStr, Str: "()"}}},
			kind: "InvalidDocumentError",
			path: "data[0]",
		},
		{
			name: "nested arity",
			doc: &Expression{Name: "add", Data: []Arg{
				{DType: DTypeNum, Num: 1},
				{DType: DTypeExp, Exp: &Expression{Name: "mul"}},
			}},
			kind: "ArityError",
		},
		{
			name: "non-boolean operand",
			doc: &Expression{Name: "and", Data: []Arg{
				{DType: DTypeStr, Str: "x"},
				{DType: DTypeBool, Bool: true},
			}},
			kind: "NonBooleanOperandError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Build(expr.Default())
			require.Error(t, err)
			assert.Equal(t, tt.kind, ErrorKind(err))
			if tt.path != "" {
				var ide *InvalidDocumentError
				require.ErrorAs(t, err, &ide)
				assert.Equal(t, tt.path, ide.Path)
			}
		})
	}
}

func TestFromOperand_RoundTrip(t *testing.T) {
	x := expr.Must(expr.Add(expr.X, expr.Must(expr.Mul(2.5, expr.MustAtom("-y"))), true))

	doc := FromOperand(x)
	assert.Equal(t, "add", doc.Name)
	require.Len(t, doc.Data, 3)
	assert.Equal(t, Arg{DType: DTypeStr, Str: "x"}, doc.Data[0])
	assert.Equal(t, Arg{DType: DTypeBool, Bool: true}, doc.Data[2])
	require.NotNil(t, doc.Data[1].Exp)
	assert.Equal(t, "mul", doc.Data[1].Exp.Name)
	assert.Equal(t, Arg{DType: DTypeStr, Str: "-y"}, doc.Data[1].Exp.Data[1])

	back, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, x.String(), back.String())

	atomDoc := FromOperand(expr.Number(3))
	assert.Empty(t, atomDoc.Name)
	assert.Equal(t, []Arg{{DType: DTypeNum, Num: 3}}, atomDoc.Data)
}

func TestMarshal(t *testing.T) {
	x := expr.Must(expr.Sub(expr.X, 1))

	data, err := MarshalYAML(x)
	require.NoError(t, err)
	doc, err := ParseYAML(data)
	require.NoError(t, err)
	back, err := doc.Build(expr.Default())
	require.NoError(t, err)
	assert.Equal(t, "sub(x, 1)", back.String())

	data, err = MarshalJSON(x)
	require.NoError(t, err)
	doc, err = ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "sub", doc.Name)
}

func TestBuildWith_Refs(t *testing.T) {
	doc := &Expression{Name: "mul", Data: []Arg{
		{DType: DTypeRef, Ref: "sum"},
		{DType: DTypeExp, Exp: &Expression{Name: "add", Data: []Arg{
			{DType: DTypeRef, Ref: "sum"},
			{DType: DTypeRef, Ref: "one"},
		}}},
	}}
	assert.Equal(t, []string{"sum", "one"}, doc.Refs())

	named := map[string]expr.Operand{
		"sum": expr.Must(expr.Add(expr.X, expr.Y)),
		"one": expr.Number(1),
	}
	resolve := func(ref string) (expr.Operand, error) {
		x, ok := named[ref]
		if !ok {
			return nil, &InvalidDocumentError{Message: "no expression " + ref}
		}
		return x, nil
	}

	x, err := doc.BuildWith(expr.Default(), resolve)
	require.NoError(t, err)
	assert.Equal(t, "mul(add(x, y), add(x, y, 1))", x.String())

	_, err = doc.Build(expr.Default())
	assert.Equal(t, "InvalidDocumentError", ErrorKind(err))
	assert.Contains(t, err.Error(), `unresolved reference "sum"`)

	delete(named, "sum")
	_, err = doc.BuildWith(expr.Default(), resolve)
	assert.Error(t, err)
}
