package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDocument(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), "testdata/docs/quadratic.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + 2 * x\n", out)
}

func TestRenderLaTeX(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), "testdata/docs/quadratic.yaml", "--latex")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + 2 * x\nlatex: x^{2} + 2 \\cdot x\n", out)
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "json"}), "testdata/docs/quadratic.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   RenderedExpression `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.ID, 64)
	assert.Equal(t, "compound operation", resp.Data.Kind)
	assert.Equal(t, "add", resp.Data.Root)
	assert.Equal(t, 2, resp.Data.Depth)
	assert.Equal(t, `x^{2} + 2 \cdot x`, resp.Data.LaTeX)
	assert.Empty(t, resp.Data.Label)
}

func TestRenderWithCatalog(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "json"}),
		"testdata/docs/product.json", "--catalog", catalogDir)
	require.NoError(t, err)

	var resp struct {
		Data RenderedExpression `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	// Same tree as the catalog's own "product" expression.
	assert.Equal(t, "42ce107e9c6635842c6335f9fa68bca49e97e584ba42489c2c32c42d44247b64", resp.Data.ID)
	assert.Equal(t, "(2 * x + 1) x y", resp.Data.Text)
}

func TestRenderMissingTemplateIsReported(t *testing.T) {
	// precedes has no LaTeX template in the catalog.
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}),
		"testdata/docs/relation.yaml", "--catalog", catalogDir, "--latex")
	require.NoError(t, err)
	assert.Equal(t, "a << b\nlatex: latex renderer: no template for operator \"precedes\"\n", out)
}

func TestRenderWithoutCatalogFailsOnRef(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), "testdata/docs/product.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E009")
}

func TestRenderBuildError(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "json"}), "testdata/docs/empty_product.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDocument, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "ArityError")
}

func TestRenderMissingDocument(t *testing.T) {
	out, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}), "testdata/docs/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "failed to read document")
}

func TestRenderBadCatalog(t *testing.T) {
	_, err := execute(t, NewRenderCommand(&RootOptions{Format: "text"}),
		"testdata/docs/quadratic.yaml", "--catalog", "/nonexistent/catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}
