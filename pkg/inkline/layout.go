package inkline

// Rect is a node's computed geometry in terminal cells, absolute within
// the frame. Geometry is ephemeral: it is recomputed every frame and never
// persisted across frames.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Constraints bound a layout pass. Height <= 0 means unconstrained; the
// scheduler passes the remaining dynamic-line budget so oversized subtrees
// can shrink to fit before the renderer's hard truncation kicks in.
type Constraints struct {
	Width  int
	Height int
}

// Layout holds per-node geometry for one frame.
type Layout struct {
	rects map[*Node]Rect
}

// NewLayout creates an empty Layout. Layout engines populate it during
// ComputeLayout.
func NewLayout() *Layout {
	return &Layout{rects: make(map[*Node]Rect)}
}

// Set records a node's geometry.
func (l *Layout) Set(n *Node, r Rect) { l.rects[n] = r }

// Rect returns a node's geometry, if the layout pass produced one.
func (l *Layout) Rect(n *Node) (Rect, bool) {
	r, ok := l.rects[n]
	return r, ok
}

// LayoutEngine computes geometry for a scene tree. The engine is a black
// box to the renderer: any flexbox-compatible solver that returns per-node
// x/y/width/height satisfies the contract. See package flexbox for the
// default implementation.
type LayoutEngine interface {
	ComputeLayout(root *Node, c Constraints) (*Layout, error)
}
