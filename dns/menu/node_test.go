package menu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticResolver(m map[string]string) func(string) (string, error) {
	return func(code string) (string, error) {
		if key, ok := m[code]; ok {
			return key, nil
		}
		return "", errors.New("no route")
	}
}

func TestNewGraph_RejectsBadKeys(t *testing.T) {
	_, err := NewGraph([]Node{{Key: "a"}, {Key: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateNode)

	_, err = NewGraph([]Node{{Key: " "}})
	assert.ErrorIs(t, err, ErrEmptyNodeKey)
}

func TestGraph_ValidateReportsEveryBrokenChoice(t *testing.T) {
	g, err := NewGraph([]Node{
		{Key: "root", Rows: [][]Choice{{{Label: "ok", Code: "go_b"}, {Label: "dead", Code: "nowhere"}}}},
		{Key: "b", Rows: [][]Choice{{{Label: "ghost", Code: "go_ghost"}}}},
	})
	require.NoError(t, err)

	err = g.Validate(staticResolver(map[string]string{"go_b": "b", "go_ghost": "ghost"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedChoice)
	assert.Contains(t, err.Error(), `"nowhere"`)
	assert.Contains(t, err.Error(), `leads to "ghost"`)
}

func TestGraph_RenderUsesCallerTextOnlyWhenNodeHasNone(t *testing.T) {
	g, err := NewGraph([]Node{
		{Key: "fixed", Text: "fixed text"},
		{Key: "open", Format: FormatMarkdown},
	})
	require.NoError(t, err)

	v, err := g.Render("fixed", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "fixed text", v.Text)

	v, err = g.Render("open", "supplied")
	require.NoError(t, err)
	assert.Equal(t, "supplied", v.Text)
	assert.Equal(t, FormatMarkdown, v.Format)

	_, err = g.Render("missing", "")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestGraph_Unreachable(t *testing.T) {
	g, err := NewGraph([]Node{
		{Key: "root", Rows: [][]Choice{{{Label: "b", Code: "go_b"}}}},
		{Key: "b", Rows: [][]Choice{{{Label: "back", Code: "go_root"}}}},
		{Key: "island"},
	})
	require.NoError(t, err)

	got := g.Unreachable("root", staticResolver(map[string]string{"go_b": "b", "go_root": "root"}))
	assert.Equal(t, []string{"island"}, got)
}
