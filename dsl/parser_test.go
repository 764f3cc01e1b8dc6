package dsl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/pathtext/dsl"
)

const sampleScene = `
doc Labels v1 {
  meta {
    title: "Curved labels"
    keywords: [
      "map"
      "labels"
    ]
  }

  resources {
    font Body {
      src: "embed:Go-Regular"
    }

    color Accent = #0F62FE
    style Label { font: Body size: 12pt color: Accent }
  }

  // 120 x 60 mm drawing
  page 120mm 60mm {
    textpath Label align left guide #cccccc {
      path: [[20mm, 33mm], [40, 31], [60, -30.5]]
      "Hello, ${user.name}!"
    }

    textpath Label {
      path: data.routes[0]
      "bound"
    }
  }
}
`

func TestParseScene(t *testing.T) {
	doc, err := dsl.ParseString(sampleScene)
	require.NoError(t, err)

	assert.Equal(t, "Labels", doc.Name)
	assert.Equal(t, "v1", doc.Version)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "meta", doc.Sections[0].Kind())
	assert.Equal(t, "resources", doc.Sections[1].Kind())
	assert.Equal(t, "page", doc.Sections[2].Kind())

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	require.NotNil(t, title)
	assert.Equal(t, "Curved labels", string(*title.Value.String))
	keywords := meta.Block.Statements[1].Assignment
	require.NotNil(t, keywords.Value.Array)
	assert.Len(t, keywords.Value.Array.Values, 2)

	color := doc.Sections[1].Resources.Block.Statements[1].Command
	require.NotNil(t, color)
	assert.Equal(t, "color", color.Name)
	assert.Equal(t, "#0F62FE", color.Args[len(color.Args)-1].Value)

	page := doc.Sections[2].Page
	require.Len(t, page.Params, 2)
	assert.Equal(t, "120mm", page.Params[0].Value)
	assert.Equal(t, "Number", page.Params[1].Type)

	tp := page.Block.Statements[0].Command
	require.NotNil(t, tp)
	assert.Equal(t, "textpath", tp.Name)
	assert.Equal(t, []string{"Label", "align", "left", "guide", "#cccccc"}, lexemeValues(tp.Args))

	path := tp.Block.Statements[0].Assignment
	require.NotNil(t, path)
	assert.Equal(t, "path", path.Key)
	require.NotNil(t, path.Value.Array)
	points := path.Value.Array.Values
	require.Len(t, points, 3)
	require.NotNil(t, points[2].Array)
	assert.Equal(t, "-30.5", *points[2].Array.Values[1].Number)
	assert.Equal(t, "20mm", *points[0].Array.Values[0].Number)

	text := tp.Block.Statements[1].Text
	require.NotNil(t, text)
	assert.True(t, strings.Contains(string(text.Value), "${user.name}"))

	bound := page.Block.Statements[1].Command.Block.Statements[0].Assignment
	require.NotNil(t, bound.Value.Expr)
	assert.Equal(t, "data.routes[0]", bound.Value.Expr.String())
}

func TestParseExpressionMinus(t *testing.T) {
	doc, err := dsl.ParseString(`doc M v1 {
  meta {
    last: data.items[n-1]
    shifted: data.items[0]-1
    spaced: total -2
    negative: -2
  }
}`)
	require.NoError(t, err)
	stmts := doc.Sections[0].Meta.Block.Statements
	require.Len(t, stmts, 4)

	exprs := map[string]string{}
	for _, stmt := range stmts[:3] {
		require.NotNil(t, stmt.Assignment.Value.Expr, stmt.Assignment.Key)
		exprs[stmt.Assignment.Key] = stmt.Assignment.Value.Expr.String()
	}
	assert.Equal(t, "data.items[n-1]", exprs["last"])
	assert.Equal(t, "data.items[0]-1", exprs["shifted"])
	assert.Equal(t, "total-2", exprs["spaced"])

	parts := stmts[1].Assignment.Value.Expr.Parts
	require.Len(t, parts, 8)
	assert.Equal(t, "Symbol", parts[6].Type)
	assert.Equal(t, "Number", parts[7].Type)
	assert.Equal(t, "1", parts[7].Value)

	require.NotNil(t, stmts[3].Assignment.Value.Number)
	assert.Equal(t, "-2", *stmts[3].Assignment.Value.Number)
}

func TestParseRejectsBrokenScene(t *testing.T) {
	_, err := dsl.ParseString(`doc X v1 { page 10mm 10mm { textpath { path: [[0, 0] } }`)
	assert.Error(t, err)
}

func lexemeValues(parts []*dsl.Lexeme) []string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return values
}
