package inkline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columnEngine is a trivial layout engine for tests: text leaves stack
// vertically at x=0, full width, one rect per node. Good enough to drive
// the renderer without pulling in the real flexbox solver.
type columnEngine struct {
	err error
}

func (e *columnEngine) ComputeLayout(root *Node, c Constraints) (*Layout, error) {
	if e.err != nil {
		return nil, e.err
	}
	lay := NewLayout()
	y := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind == KindStatic {
			return
		}
		if n.Kind == KindText {
			h := strings.Count(n.Text, "\n") + 1
			lay.Set(n, Rect{X: 0, Y: y, Width: c.Width, Height: h})
			y += h
			return
		}
		start := y
		for _, child := range n.Children() {
			walk(child)
		}
		lay.Set(n, Rect{X: 0, Y: start, Width: c.Width, Height: y - start})
	}
	walk(root)
	return lay, nil
}

func plainLines(n int) *Node {
	root := NewBox(BoxProps{})
	for i := 0; i < n; i++ {
		root.AppendChild(NewText(TextStyle{}, fmt.Sprintf("line %d", i)))
	}
	return root
}

func TestRenderDynamicClipsWidth(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	root := NewBox(BoxProps{}, NewText(TextStyle{}, "0123456789abcdef"))

	lines, err := r.renderDynamic(root, 10, 5)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 10, VisibleWidth(lines[0]))
	assert.True(t, strings.HasSuffix(lines[0], ellipsis), "clipped line ends in ellipsis: %q", lines[0])
}

func TestRenderDynamicClipsWideRunes(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	root := NewBox(BoxProps{}, NewText(TextStyle{}, "日本語のテキストです"))

	lines, err := r.renderDynamic(root, 7, 5)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.LessOrEqual(t, VisibleWidth(lines[0]), 7, "double-width glyphs never straddle the boundary")
	assert.True(t, strings.HasSuffix(lines[0], ellipsis))
}

func TestRenderDynamicVerticalTruncation(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}

	lines, err := r.renderDynamic(plainLines(10), 40, 4)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, "line 0", lines[0])
	assert.Equal(t, "line 2", lines[2])
	assert.Equal(t, ellipsis+" 7 more lines", lines[3])
}

func TestRenderDynamicBudgetOne(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}

	lines, err := r.renderDynamic(plainLines(5), 40, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, ellipsis+" 5 more lines", lines[0])
}

func TestRenderDynamicSummaryLineFitsNarrowViewport(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}

	lines, err := r.renderDynamic(plainLines(10), 5, 4)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	last := lines[len(lines)-1]
	assert.LessOrEqual(t, VisibleWidth(last), 5,
		"synthetic summary line obeys the width bound: %q", last)
	assert.True(t, strings.HasSuffix(last, ellipsis))
}

func TestRenderDynamicZeroBudget(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}

	lines, err := r.renderDynamic(plainLines(3), 40, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRenderDynamicLayoutError(t *testing.T) {
	r := &renderer{engine: &columnEngine{err: errors.New("boom")}}

	_, err := r.renderDynamic(plainLines(1), 40, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRenderDynamicSkipsStaticSubtrees(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	root := NewBox(BoxProps{},
		NewStatic(NewText(TextStyle{}, "logged")),
		NewText(TextStyle{}, "status"),
	)

	lines, err := r.renderDynamic(root, 40, 5)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "status", lines[0])
}

func TestExtractStaticAdvancesCommitted(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	static := NewStatic(
		NewText(TextStyle{}, "one"),
		NewText(TextStyle{}, "two"),
	)
	root := NewBox(BoxProps{}, static)

	lines, err := r.extractStatic(root, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
	assert.Equal(t, 2, static.Committed())

	// Nothing new: nothing extracted.
	lines, err = r.extractStatic(root, 40)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Only the appended child comes out on the next pass.
	static.AppendChild(NewText(TextStyle{}, "three"))
	lines, err = r.extractStatic(root, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"three"}, lines)
	assert.Equal(t, 3, static.Committed())
}

func TestExtractStaticErrorLeavesWatermark(t *testing.T) {
	eng := &columnEngine{}
	r := &renderer{engine: eng}
	static := NewStatic(NewText(TextStyle{}, "one"))
	root := NewBox(BoxProps{}, static)

	eng.err = errors.New("layout failed")
	_, err := r.extractStatic(root, 40)
	require.Error(t, err)
	assert.Equal(t, 0, static.Committed(), "failed extraction must not consume children")

	eng.err = nil
	lines, err := r.extractStatic(root, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, lines)
}

func TestExtractStaticMultipleRegionsInDocumentOrder(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	root := NewBox(BoxProps{},
		NewStatic(NewText(TextStyle{}, "first")),
		NewBox(BoxProps{}, NewStatic(NewText(TextStyle{}, "nested"))),
		NewStatic(NewText(TextStyle{}, "last")),
	)

	lines, err := r.extractStatic(root, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "nested", "last"}, lines)
}

func TestRasterizeConcatenatesRowSpans(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	left := NewText(TextStyle{}, "ok")
	right := NewText(TextStyle{}, "build")
	root := NewBox(BoxProps{Direction: DirRow}, left, right)

	// Hand-placed geometry: "ok" at x=0, "build" at x=5, same row.
	lay := NewLayout()
	lay.Set(root, Rect{X: 0, Y: 0, Width: 12, Height: 1})
	lay.Set(left, Rect{X: 0, Y: 0, Width: 2, Height: 1})
	lay.Set(right, Rect{X: 5, Y: 0, Width: 5, Height: 1})

	lines := r.rasterize(root, lay)
	require.Len(t, lines, 1)
	assert.Equal(t, "ok   build", lines[0])
}

func TestRasterizePadsEmptyRowsWithinRootHeight(t *testing.T) {
	r := &renderer{engine: &columnEngine{}}
	text := NewText(TextStyle{}, "top")
	root := NewBox(BoxProps{}, text)

	lay := NewLayout()
	lay.Set(root, Rect{X: 0, Y: 0, Width: 10, Height: 3})
	lay.Set(text, Rect{X: 0, Y: 0, Width: 3, Height: 1})

	lines := r.rasterize(root, lay)
	require.Len(t, lines, 3)
	assert.Equal(t, "top", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "", lines[2])
}

func TestStyleTextDisabled(t *testing.T) {
	r := &renderer{engine: &columnEngine{}, colors: false}
	out := r.styleText(TextStyle{Color: "212", Bold: true}, "hello")
	assert.Equal(t, "hello", out, "no SGR sequences with colors disabled")
}

func TestStyleTextEnabled(t *testing.T) {
	r := &renderer{engine: &columnEngine{}, colors: true}
	out := r.styleText(TextStyle{Bold: true}, "hello")
	assert.Contains(t, out, "hello")
	assert.NotEqual(t, "hello", out, "bold style produces escape sequences")
}
