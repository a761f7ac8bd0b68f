package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidCatalog(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), catalogDir)
	require.NoError(t, err)
	assert.Equal(t, "✓ Catalog valid (3 operator(s), 2 expression(s))\n", out)
}

func TestValidateValidCatalogJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), catalogDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Operators)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := writeCatalog(t, `
package test

operator: wedge: {
	min_args: 2
	swapped:  "nothing"
}

operator: bad: {
	priority: "huge"
}

expression: e: {
	name: "frobnicate"
	data: [{dtype: "str", str: "x"}]
}
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E103: load: operator bad: priority")
	assert.Contains(t, out, `E106: operator."wedge".swapped: unknown operator "nothing"`)
	assert.Contains(t, out, `E110: expression.e.name: unknown operator "frobnicate"`)
}

func TestValidateReportsLines(t *testing.T) {
	dir := writeCatalog(t, `package test

operator: wedge: {
	min_args: 2
	inverse:  "nothing"
}
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "line 3\n")
}

func TestValidateInvalidCatalogJSON(t *testing.T) {
	dir := writeCatalog(t, `
package test

expression: loop: {
	name: "add"
	data: [{dtype: "ref", ref: "loop"}, {dtype: "num", num: 1}]
}
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E114", resp.Error.Code)
}

func TestValidateCatalogDir(t *testing.T) {
	errs, err := ValidateCatalogDir(catalogDir)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateCatalogDir("/nonexistent/directory/path")
	require.Error(t, err)
}
