package query

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqview/internal/model"
)

func TestCompileExprBlank(t *testing.T) {
	e, err := CompileExpr("  ")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestExprMatch(t *testing.T) {
	e, err := CompileExpr("qty >= 5 && labor < material")
	require.NoError(t, err)
	assert.Equal(t, "qty >= 5 && labor < material", e.String())

	assert.True(t, e.Match(model.Row{Qty: 5, Material: 10, Labor: 2}))
	assert.False(t, e.Match(model.Row{Qty: 4, Material: 10, Labor: 2}))
	assert.False(t, e.Match(model.Row{Qty: 9, Material: 1, Labor: 2}))
}

func TestExprBlankUnitUsesSentinel(t *testing.T) {
	e, err := CompileExpr("unit == '-'")
	require.NoError(t, err)
	assert.True(t, e.Match(model.Row{Unit: ""}))
}

func TestExprNonBoolRejects(t *testing.T) {
	e, err := CompileExpr("amount + 1")
	require.NoError(t, err)
	assert.False(t, e.Match(model.Row{Amount: 3}))
}

func TestExprUnknownField(t *testing.T) {
	for _, src := range []string{"height > 3", "amout > 10", "unit == m2", "amount > 1 && [wbs 5] == 'x'"} {
		_, err := CompileExpr(src)
		require.Error(t, err, src)
		assert.True(t, eris.Is(err, ErrInvalidExpression), src)
	}
}

func TestExprParseError(t *testing.T) {
	_, err := CompileExpr("(amount > ")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidExpression))
}
