package query

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"boqview/internal/model"
)

func TestCompileEmptyInput(t *testing.T) {
	m, err := Compile("   \t ", model.MatchAll)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCompileAllVersusAny(t *testing.T) {
	desc := "ผนังอิฐ 100mm"

	all, err := Compile("ผนัง 200mm", model.MatchAll)
	require.NoError(t, err)
	assert.False(t, all.Match(desc))

	anyMode, err := Compile("ผนัง 200mm", model.MatchAny)
	require.NoError(t, err)
	assert.True(t, anyMode.Match(desc))
}

func TestCompileAllIsOrderIndependent(t *testing.T) {
	m, err := Compile("100MM ผนัง", model.MatchAll)
	require.NoError(t, err)
	assert.True(t, m.Match("ผนังอิฐ 100mm"))
	assert.Equal(t, []string{"100MM", "ผนัง"}, m.Tokens())
	assert.Equal(t, model.MatchAll, m.Mode())
}

func TestCompileEscapesMetacharacters(t *testing.T) {
	m, err := Compile("C+M", model.MatchAll)
	require.NoError(t, err)
	assert.True(t, m.Match("Supply C+M works"))
	assert.False(t, m.Match("Supply CCCM works"))

	m, err = Compile("(a) [b] * ? $ ^ |", model.MatchAny)
	require.NoError(t, err)
	assert.True(t, m.Match("x * y"))
	assert.False(t, m.Match("plain"))
}

func TestCompileSplitsOnWhitespaceRuns(t *testing.T) {
	m, err := Compile("  wall \t\n brick  ", model.MatchAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"wall", "brick"}, m.Tokens())
}

func TestMatchNormalizesDescription(t *testing.T) {
	composed := "café"
	decomposed := norm.NFD.String(composed)
	require.NotEqual(t, composed, decomposed)

	m, err := Compile(composed, model.MatchAll)
	require.NoError(t, err)
	assert.True(t, m.Match("Le "+decomposed+" du coin"))
}

func TestCompileQuery(t *testing.T) {
	c, err := CompileQuery(model.Query{})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = CompileQuery(model.Query{Text: "wall", Mode: model.MatchAll, Where: "amount > 100"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Match(model.Row{Description: "Brick wall", Amount: 150}))
	assert.False(t, c.Match(model.Row{Description: "Brick wall", Amount: 50}))
	assert.False(t, c.Match(model.Row{Description: "Roof", Amount: 500}))

	c, err = CompileQuery(model.Query{Where: "unit == 'm2'"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Nil(t, c.Text)
	assert.True(t, c.Match(model.Row{Unit: " m2 "}))
}

func TestCompileQueryInvalidExpression(t *testing.T) {
	_, err := CompileQuery(model.Query{Text: "wall", Where: "amount >"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidExpression))
}
