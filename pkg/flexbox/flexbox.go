// Package flexbox is the default layout engine for inkline scene trees.
//
// Two-phase solve: widths distribute top-down (fixed and natural widths
// first, leftover shared by grow factor), then heights and positions
// resolve bottom-up, with a shrink pass that gives up height
// proportionally when a column overflows its constraint. The engine
// satisfies inkline.LayoutEngine; the renderer treats it as a black box.
package flexbox

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/pkg/errors"

	"github.com/overengineeringstudio/inkline/pkg/inkline"
)

// Engine computes flexbox-style geometry. It is stateless; one instance
// may serve any number of trees.
type Engine struct{}

// New creates an Engine.
func New() *Engine { return &Engine{} }

var _ inkline.LayoutEngine = (*Engine)(nil)

func (e *Engine) ComputeLayout(root *inkline.Node, c inkline.Constraints) (*inkline.Layout, error) {
	if root == nil {
		return nil, errors.New("flexbox: nil root")
	}
	if c.Width <= 0 {
		return nil, errors.Errorf("flexbox: non-positive width %d", c.Width)
	}
	b := build(root)
	if b == nil {
		return inkline.NewLayout(), nil
	}
	setWidth(b, c.Width)
	measure(b, c.Height)
	lay := inkline.NewLayout()
	place(b, 0, 0, lay)
	return lay, nil
}

// box is the solver's working node. x and y are relative to the parent's
// outer origin and include the parent's padding.
type box struct {
	n        *inkline.Node
	x, y     int
	w, h     int
	children []*box
}

// build mirrors the scene tree, dropping Static subtrees: they occupy no
// space in the dynamic region.
func build(n *inkline.Node) *box {
	if n.Kind == inkline.KindStatic {
		return nil
	}
	b := &box{n: n}
	for _, c := range n.Children() {
		if child := build(c); child != nil {
			b.children = append(b.children, child)
		}
	}
	return b
}

// naturalWidth is the content width of a subtree with no constraint
// applied.
func naturalWidth(b *box) int {
	n := b.n
	switch n.Kind {
	case inkline.KindText:
		w := 0
		for _, line := range strings.Split(n.Text, "\n") {
			if lw := ansi.StringWidth(line); lw > w {
				w = lw
			}
		}
		return w
	default:
		p := n.Props
		if p.Width > 0 {
			return p.Width
		}
		pad := p.Padding.Left + p.Padding.Right
		if p.Direction == inkline.DirRow {
			sum := 0
			for i, c := range b.children {
				sum += naturalWidth(c)
				if i > 0 {
					sum += p.Gap
				}
			}
			return sum + pad
		}
		max := 0
		for _, c := range b.children {
			if w := naturalWidth(c); w > max {
				max = w
			}
		}
		return max + pad
	}
}

// setWidth assigns widths top-down within the available space.
func setWidth(b *box, avail int) {
	if avail < 0 {
		avail = 0
	}
	n := b.n
	if n.Kind == inkline.KindText {
		b.w = naturalWidth(b)
		if b.w > avail {
			b.w = avail
		}
		return
	}

	p := n.Props
	b.w = avail
	if p.Width > 0 && p.Width < avail {
		b.w = p.Width
	}
	inner := b.w - p.Padding.Left - p.Padding.Right
	if inner < 0 {
		inner = 0
	}

	if p.Direction != inkline.DirRow {
		for _, c := range b.children {
			setWidth(c, inner)
		}
		return
	}

	// Row: natural widths first, then scale down on overflow or hand
	// leftover space to grow children.
	gaps := 0
	if len(b.children) > 1 {
		gaps = p.Gap * (len(b.children) - 1)
	}
	remaining := inner - gaps
	if remaining < 0 {
		remaining = 0
	}

	widths := make([]int, len(b.children))
	sum := 0
	for i, c := range b.children {
		widths[i] = naturalWidth(c)
		sum += widths[i]
	}

	if sum > remaining && sum > 0 {
		scaled := 0
		for i := range widths {
			widths[i] = widths[i] * remaining / sum
			scaled += widths[i]
		}
		// Rounding leftovers go to the first children.
		for i := 0; scaled < remaining && i < len(widths); i++ {
			widths[i]++
			scaled++
		}
	} else if leftover := remaining - sum; leftover > 0 {
		var totalGrow float64
		for _, c := range b.children {
			if c.n.Kind == inkline.KindBox {
				totalGrow += c.n.Props.Grow
			}
		}
		if totalGrow > 0 {
			given := 0
			last := -1
			for i, c := range b.children {
				if c.n.Kind != inkline.KindBox || c.n.Props.Grow <= 0 {
					continue
				}
				share := int(float64(leftover) * c.n.Props.Grow / totalGrow)
				widths[i] += share
				given += share
				last = i
			}
			if last >= 0 {
				widths[last] += leftover - given
			}
		}
	}

	for i, c := range b.children {
		setWidth(c, widths[i])
	}
}

// measure resolves heights bottom-up and positions children relative to
// the parent. availH <= 0 means unconstrained.
func measure(b *box, availH int) {
	n := b.n
	if n.Kind == inkline.KindText {
		b.h = strings.Count(n.Text, "\n") + 1
		return
	}

	p := n.Props
	capH := 0
	switch {
	case p.Height > 0:
		capH = p.Height - p.Padding.Top - p.Padding.Bottom
	case availH > 0:
		capH = availH - p.Padding.Top - p.Padding.Bottom
	}
	if capH < 0 {
		capH = 0
	}

	if p.Direction == inkline.DirRow {
		maxH := 0
		x := p.Padding.Left
		for i, c := range b.children {
			measure(c, capH)
			c.x = x
			c.y = p.Padding.Top
			x += c.w
			if i < len(b.children)-1 {
				x += p.Gap
			}
			if c.h > maxH {
				maxH = c.h
			}
		}
		b.h = maxH + p.Padding.Top + p.Padding.Bottom
	} else {
		for _, c := range b.children {
			measure(c, 0)
		}
		content := 0
		for i, c := range b.children {
			content += c.h
			if i < len(b.children)-1 {
				content += p.Gap
			}
		}
		if capH > 0 && content > capH {
			content -= shrinkColumn(b.children, content-capH)
		}
		if capH > 0 && content < capH {
			content += growColumn(b.children, capH-content)
		}
		y := p.Padding.Top
		for i, c := range b.children {
			c.x = p.Padding.Left
			c.y = y
			y += c.h
			if i < len(b.children)-1 {
				y += p.Gap
			}
		}
		b.h = content + p.Padding.Top + p.Padding.Bottom
	}

	if p.Height > 0 {
		b.h = p.Height
	} else if availH > 0 && b.h > availH {
		b.h = availH
	}
}

// shrinkColumn reduces shrinkable children's heights by up to over rows,
// weighted by shrink factor times current height, and returns the rows
// actually recovered.
func shrinkColumn(children []*box, over int) int {
	var total float64
	for _, c := range children {
		total += shrinkWeight(c)
	}
	if total <= 0 {
		return 0
	}
	recovered := 0
	for _, c := range children {
		w := shrinkWeight(c)
		if w <= 0 {
			continue
		}
		cut := int(float64(over)*w/total + 0.5)
		if cut > c.h {
			cut = c.h
		}
		if recovered+cut > over {
			cut = over - recovered
		}
		c.h -= cut
		recovered += cut
	}
	return recovered
}

func shrinkWeight(c *box) float64 {
	if c.n.Kind != inkline.KindBox {
		return 0
	}
	return c.n.Props.Shrink * float64(c.h)
}

// growColumn hands leftover rows to grow children by weight and returns
// the rows distributed.
func growColumn(children []*box, leftover int) int {
	var total float64
	for _, c := range children {
		if c.n.Kind == inkline.KindBox {
			total += c.n.Props.Grow
		}
	}
	if total <= 0 {
		return 0
	}
	given := 0
	for _, c := range children {
		if c.n.Kind != inkline.KindBox || c.n.Props.Grow <= 0 {
			continue
		}
		share := int(float64(leftover) * c.n.Props.Grow / total)
		c.h += share
		given += share
	}
	// Rounding remainder goes to the last grow child.
	for i := len(children) - 1; i >= 0 && given < leftover; i-- {
		c := children[i]
		if c.n.Kind == inkline.KindBox && c.n.Props.Grow > 0 {
			c.h += leftover - given
			given = leftover
		}
	}
	return given
}

// place converts relative geometry to absolute frame coordinates.
func place(b *box, ax, ay int, lay *inkline.Layout) {
	r := inkline.Rect{X: ax + b.x, Y: ay + b.y, Width: b.w, Height: b.h}
	lay.Set(b.n, r)
	for _, c := range b.children {
		place(c, r.X, r.Y, lay)
	}
}
