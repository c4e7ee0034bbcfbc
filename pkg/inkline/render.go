package inkline

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/pkg/errors"
)

// renderer converts a scene tree plus geometry into styled text lines.
// It is deterministic and pure given its inputs, except that static
// extraction advances each Static node's committed watermark.
type renderer struct {
	engine LayoutEngine
	colors bool
}

// span is one styled text run placed on a visual row.
type span struct {
	x    int
	text string
	w    int
}

// renderDynamic lays out the tree within the dynamic-line budget and
// rasterizes it. Every returned line fits within width display cells, and
// at most budget lines are returned: over-budget content is hard-truncated
// to budget-1 lines plus a synthetic summary line. That summary is the
// safety net keeping the live region from ever scrolling the terminal.
func (r *renderer) renderDynamic(root *Node, width, budget int) ([]string, error) {
	if budget <= 0 || width <= 0 {
		return nil, nil
	}
	lay, err := r.engine.ComputeLayout(root, Constraints{Width: width, Height: budget})
	if err != nil {
		return nil, errors.Wrap(err, "compute layout")
	}
	lines := r.rasterize(root, lay)
	r.clipWidth(lines, width)
	if len(lines) > budget {
		hidden := len(lines) - (budget - 1)
		summary := r.styleText(TextStyle{Dim: true},
			fmt.Sprintf("%s %d more lines", ellipsis, hidden))
		// The summary is synthesized after the clip pass, so it needs its
		// own clip to hold the width bound on narrow viewports.
		if VisibleWidth(summary) > width {
			summary = Truncate(summary, width, ellipsis)
		}
		lines = append(lines[:budget-1], summary)
	}
	return lines, nil
}

// extractStatic renders the not-yet-committed children of every Static
// node in the tree into ordered log lines, then advances each node's
// committed count. Watermarks only advance once every new child rendered
// cleanly, so a failed frame leaves the tree replayable.
//
// A Static node that lost identity (recreated with committed back at zero)
// re-emits all of its children here. That replay is documented behavior.
func (r *renderer) extractStatic(root *Node, width int) ([]string, error) {
	type pending struct {
		node  *Node
		count int
	}
	var (
		lines []string
		pend  []pending
	)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.Kind == KindStatic {
			for _, child := range n.children[n.committed:] {
				out, err := r.renderStandalone(child, width)
				if err != nil {
					return err
				}
				lines = append(lines, out...)
			}
			pend = append(pend, pending{node: n, count: len(n.children)})
			return nil
		}
		for _, child := range n.children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	for _, p := range pend {
		p.node.committed = p.count
	}
	return lines, nil
}

// renderStandalone lays out and rasterizes a single subtree at full width
// with unconstrained height. Used for Static children, which are emitted
// once and belong to the terminal's own scrollback thereafter.
func (r *renderer) renderStandalone(n *Node, width int) ([]string, error) {
	lay, err := r.engine.ComputeLayout(n, Constraints{Width: width})
	if err != nil {
		return nil, errors.Wrap(err, "compute static layout")
	}
	lines := r.rasterize(n, lay)
	r.clipWidth(lines, width)
	return lines, nil
}

// rasterize converts geometry plus node content into text lines. Text runs
// sharing one visual row are concatenated in left-to-right geometric
// order; gaps between runs become spaces. Static subtrees are skipped:
// they exist only in the append-only log, never the dynamic region.
func (r *renderer) rasterize(root *Node, lay *Layout) []string {
	rows := make(map[int][]span)
	maxRow := -1

	var walk func(n *Node, clipBottom int)
	walk = func(n *Node, clipBottom int) {
		if n.Kind == KindStatic {
			return
		}
		rect, ok := lay.Rect(n)
		if !ok {
			return
		}
		if bottom := rect.Y + rect.Height; bottom < clipBottom {
			clipBottom = bottom
		}
		if n.Kind == KindText {
			for i, raw := range strings.Split(n.Text, "\n") {
				y := rect.Y + i
				if y >= clipBottom {
					break
				}
				rows[y] = append(rows[y], span{
					x:    rect.X,
					text: r.styleText(n.Style, raw),
					w:    VisibleWidth(raw),
				})
				if y > maxRow {
					maxRow = y
				}
			}
			return
		}
		for _, child := range n.children {
			walk(child, clipBottom)
		}
	}
	walk(root, int(^uint(0)>>1))

	height := maxRow + 1
	if rect, ok := lay.Rect(root); ok && rect.Height > height {
		height = rect.Height
	}
	if height <= 0 {
		return nil
	}

	lines := make([]string, height)
	for y := 0; y < height; y++ {
		spans := rows[y]
		if len(spans) == 0 {
			continue
		}
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].x < spans[j].x })
		var b strings.Builder
		cur := 0
		for _, s := range spans {
			if s.x > cur {
				b.WriteString(strings.Repeat(" ", s.x-cur))
				cur = s.x
			}
			b.WriteString(s.text)
			cur += s.w
		}
		lines[y] = b.String()
	}
	return lines
}

// clipWidth clips each line to exactly width display cells, replacing the
// final visible cell with an ellipsis when clipping occurred. Lines never
// exceed the viewport width, so the terminal never soft-wraps.
func (r *renderer) clipWidth(lines []string, width int) {
	for i, line := range lines {
		if VisibleWidth(line) > width {
			lines[i] = Truncate(line, width, ellipsis)
		}
	}
}

// styleText applies a Text node's declared attributes. There is no style
// inheritance: the node's own attributes are the effective style. With
// colors disabled the raw content is returned with no SGR sequences at all.
func (r *renderer) styleText(st TextStyle, s string) string {
	if !r.colors {
		return s
	}
	style := lipgloss.NewStyle()
	if st.Color != "" {
		style = style.Foreground(lipgloss.Color(st.Color))
	}
	if st.Bold {
		style = style.Bold(true)
	}
	if st.Dim {
		style = style.Faint(true)
	}
	if st.Italic {
		style = style.Italic(true)
	}
	if st.Underline {
		style = style.Underline(true)
	}
	if st.Strikethrough {
		style = style.Strikethrough(true)
	}
	return style.Render(s)
}
