package flexbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overengineeringstudio/inkline/pkg/inkline"
)

func mustLayout(t *testing.T, root *inkline.Node, c inkline.Constraints) *inkline.Layout {
	t.Helper()
	lay, err := New().ComputeLayout(root, c)
	require.NoError(t, err)
	return lay
}

func rectOf(t *testing.T, lay *inkline.Layout, n *inkline.Node) inkline.Rect {
	t.Helper()
	r, ok := lay.Rect(n)
	require.True(t, ok, "node has no computed rect")
	return r
}

func TestColumnStacksChildren(t *testing.T) {
	one := inkline.NewText(inkline.TextStyle{}, "one")
	two := inkline.NewText(inkline.TextStyle{}, "two\nthree")
	root := inkline.NewBox(inkline.BoxProps{}, one, two)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})

	assert.Equal(t, inkline.Rect{X: 0, Y: 0, Width: 3, Height: 1}, rectOf(t, lay, one))
	assert.Equal(t, inkline.Rect{X: 0, Y: 1, Width: 5, Height: 2}, rectOf(t, lay, two))
	assert.Equal(t, inkline.Rect{X: 0, Y: 0, Width: 40, Height: 3}, rectOf(t, lay, root))
}

func TestColumnGapAndPadding(t *testing.T) {
	a := inkline.NewText(inkline.TextStyle{}, "a")
	b := inkline.NewText(inkline.TextStyle{}, "b")
	root := inkline.NewBox(inkline.BoxProps{
		Padding: inkline.Padding{Top: 1, Left: 2},
		Gap:     1,
	}, a, b)

	lay := mustLayout(t, root, inkline.Constraints{Width: 20})

	assert.Equal(t, inkline.Rect{X: 2, Y: 1, Width: 1, Height: 1}, rectOf(t, lay, a))
	assert.Equal(t, inkline.Rect{X: 2, Y: 3, Width: 1, Height: 1}, rectOf(t, lay, b))
	assert.Equal(t, 4, rectOf(t, lay, root).Height, "padding and gap count toward height")
}

func TestRowPlacesChildrenSideBySide(t *testing.T) {
	a := inkline.NewText(inkline.TextStyle{}, "ab")
	b := inkline.NewText(inkline.TextStyle{}, "cde")
	root := inkline.NewBox(inkline.BoxProps{Direction: inkline.DirRow, Gap: 2}, a, b)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})

	assert.Equal(t, inkline.Rect{X: 0, Y: 0, Width: 2, Height: 1}, rectOf(t, lay, a))
	assert.Equal(t, inkline.Rect{X: 4, Y: 0, Width: 3, Height: 1}, rectOf(t, lay, b))
	assert.Equal(t, 1, rectOf(t, lay, root).Height)
}

func TestRowGrowSharesLeftoverWidth(t *testing.T) {
	left := inkline.NewBox(inkline.BoxProps{Grow: 1}, inkline.NewText(inkline.TextStyle{}, "a"))
	right := inkline.NewBox(inkline.BoxProps{Grow: 1}, inkline.NewText(inkline.TextStyle{}, "b"))
	root := inkline.NewBox(inkline.BoxProps{Direction: inkline.DirRow}, left, right)

	lay := mustLayout(t, root, inkline.Constraints{Width: 20})

	lr := rectOf(t, lay, left)
	rr := rectOf(t, lay, right)
	assert.Equal(t, 10, lr.Width)
	assert.Equal(t, 10, rr.Width)
	assert.Equal(t, 0, lr.X)
	assert.Equal(t, 10, rr.X)
}

func TestRowOverflowScalesDown(t *testing.T) {
	a := inkline.NewText(inkline.TextStyle{}, "aaaaaaaa") // natural 8
	b := inkline.NewText(inkline.TextStyle{}, "bbbbbbbb") // natural 8
	root := inkline.NewBox(inkline.BoxProps{Direction: inkline.DirRow}, a, b)

	lay := mustLayout(t, root, inkline.Constraints{Width: 10})

	ra := rectOf(t, lay, a)
	rb := rectOf(t, lay, b)
	assert.Equal(t, 5, ra.Width)
	assert.Equal(t, 5, rb.Width)
	assert.Equal(t, 5, rb.X, "children stay adjacent after scaling")
}

func TestColumnShrinkGivesUpHeight(t *testing.T) {
	flexible := inkline.NewBox(inkline.BoxProps{Shrink: 1},
		inkline.NewText(inkline.TextStyle{}, "1\n2\n3\n4"))
	rigid := inkline.NewBox(inkline.BoxProps{},
		inkline.NewText(inkline.TextStyle{}, "a\nb\nc"))
	root := inkline.NewBox(inkline.BoxProps{}, flexible, rigid)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40, Height: 5})

	fr := rectOf(t, lay, flexible)
	rr := rectOf(t, lay, rigid)
	assert.Equal(t, 2, fr.Height, "shrinkable child absorbs the overflow")
	assert.Equal(t, 3, rr.Height, "non-shrinkable child keeps its height")
	assert.Equal(t, 2, rr.Y)
	assert.Equal(t, 5, rectOf(t, lay, root).Height)
}

func TestColumnGrowFillsLeftoverHeight(t *testing.T) {
	top := inkline.NewText(inkline.TextStyle{}, "top")
	spacer := inkline.NewBox(inkline.BoxProps{Grow: 1})
	bottom := inkline.NewText(inkline.TextStyle{}, "bottom")
	root := inkline.NewBox(inkline.BoxProps{}, top, spacer, bottom)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40, Height: 10})

	assert.Equal(t, 0, rectOf(t, lay, top).Y)
	assert.Equal(t, 8, rectOf(t, lay, spacer).Height)
	assert.Equal(t, 9, rectOf(t, lay, bottom).Y)
	assert.Equal(t, 10, rectOf(t, lay, root).Height)
}

func TestFixedDimensionsRespected(t *testing.T) {
	fixed := inkline.NewBox(inkline.BoxProps{Width: 10, Height: 3})
	root := inkline.NewBox(inkline.BoxProps{}, fixed)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})

	r := rectOf(t, lay, fixed)
	assert.Equal(t, 10, r.Width)
	assert.Equal(t, 3, r.Height)
}

func TestStaticSubtreeOccupiesNoSpace(t *testing.T) {
	static := inkline.NewStatic(inkline.NewText(inkline.TextStyle{}, "logged"))
	status := inkline.NewText(inkline.TextStyle{}, "status")
	root := inkline.NewBox(inkline.BoxProps{}, static, status)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})

	assert.Equal(t, 0, rectOf(t, lay, status).Y, "static region takes no dynamic rows")
	_, ok := lay.Rect(static)
	assert.False(t, ok, "static subtree gets no geometry")
}

func TestWideRunesNaturalWidth(t *testing.T) {
	text := inkline.NewText(inkline.TextStyle{}, "日本")
	root := inkline.NewBox(inkline.BoxProps{}, text)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})
	assert.Equal(t, 4, rectOf(t, lay, text).Width, "CJK glyphs are two cells each")
}

func TestNestedRowInColumn(t *testing.T) {
	icon := inkline.NewText(inkline.TextStyle{}, ">")
	label := inkline.NewText(inkline.TextStyle{}, "build")
	row := inkline.NewBox(inkline.BoxProps{Direction: inkline.DirRow, Gap: 1}, icon, label)
	header := inkline.NewText(inkline.TextStyle{}, "tasks")
	root := inkline.NewBox(inkline.BoxProps{}, header, row)

	lay := mustLayout(t, root, inkline.Constraints{Width: 40})

	assert.Equal(t, 0, rectOf(t, lay, header).Y)
	assert.Equal(t, 1, rectOf(t, lay, row).Y)
	assert.Equal(t, 0, rectOf(t, lay, icon).X)
	assert.Equal(t, 1, rectOf(t, lay, icon).Y, "absolute coordinates compose through nesting")
	assert.Equal(t, 2, rectOf(t, lay, label).X)
}

func TestComputeLayoutValidation(t *testing.T) {
	_, err := New().ComputeLayout(nil, inkline.Constraints{Width: 80})
	require.Error(t, err)

	_, err = New().ComputeLayout(inkline.NewBox(inkline.BoxProps{}), inkline.Constraints{})
	require.Error(t, err)
}
