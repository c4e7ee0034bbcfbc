package inkline

// NodeKind discriminates the scene tree node variants.
type NodeKind uint8

const (
	// KindBox is a layout container with ordered children.
	KindBox NodeKind = iota
	// KindText is a styled text leaf.
	KindText
	// KindStatic is an append-only log region. Children below the committed
	// watermark have already been flushed to the terminal and are never
	// rendered again.
	KindStatic
)

func (k NodeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindText:
		return "text"
	case KindStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Direction is the main axis of a Box.
type Direction uint8

const (
	DirColumn Direction = iota
	DirRow
)

// Padding is per-edge inner spacing of a Box.
type Padding struct {
	Top, Right, Bottom, Left int
}

// BoxProps are the layout properties of a Box node.
type BoxProps struct {
	Direction Direction
	Padding   Padding
	// Gap is the spacing between adjacent children along the main axis.
	Gap int
	// Width and Height fix the node's size in cells. Zero means size to
	// content (or to the available space, depending on the axis).
	Width  int
	Height int
	// Grow distributes leftover main-axis space; Shrink gives up space when
	// the container overflows its constraint.
	Grow   float64
	Shrink float64
}

// TextStyle is the declared style of a Text node. Styles do not inherit;
// a Text node renders with exactly these attributes.
type TextStyle struct {
	// Color is a lipgloss-compatible color (ANSI index, hex, or name).
	// Empty means the terminal default.
	Color         string
	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

// Node is a retained scene tree node. Children are owned exclusively by
// their parent; a node appears in at most one tree.
type Node struct {
	Kind NodeKind

	// Key optionally gives the node a stable identity so that
	// ReconcileChildren can match it across reorders.
	Key string

	// Props applies to Box nodes.
	Props BoxProps
	// Style and Text apply to Text nodes.
	Style TextStyle
	Text  string

	parent   *Node
	children []*Node

	// committed is the number of a Static node's children already flushed
	// to the terminal. Monotonic while the node's identity persists.
	committed int
}

// NewBox creates a Box node with the given children.
func NewBox(props BoxProps, children ...*Node) *Node {
	n := &Node{Kind: KindBox, Props: props}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// NewText creates a Text leaf.
func NewText(style TextStyle, text string) *Node {
	return &Node{Kind: KindText, Style: style, Text: text}
}

// NewStatic creates a Static node with the given children.
func NewStatic(children ...*Node) *Node {
	n := &Node{Kind: KindStatic}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// Children returns the node's child slice. Callers must not mutate it
// directly; use InsertChild, RemoveChild, or ReconcileChildren.
func (n *Node) Children() []*Node { return n.children }

// Committed returns a Static node's committed child count.
func (n *Node) Committed() int { return n.committed }

// SetProps replaces a Box node's layout properties in place. Identity
// (and any Static descendants' committed counts) is retained.
func (n *Node) SetProps(p BoxProps) {
	n.mustKind(KindBox, "SetProps")
	n.Props = p
}

// SetStyle replaces a Text node's style.
func (n *Node) SetStyle(s TextStyle) {
	n.mustKind(KindText, "SetStyle")
	n.Style = s
}

// SetText replaces a Text node's content.
func (n *Node) SetText(text string) {
	n.mustKind(KindText, "SetText")
	n.Text = text
}

// AppendChild adds a child at the end.
func (n *Node) AppendChild(child *Node) {
	n.InsertChild(child, len(n.children))
}

// InsertChild adds a child at the given index. The child must not already
// have a parent.
func (n *Node) InsertChild(child *Node, index int) {
	if n.Kind == KindText {
		panic("inkline: text nodes cannot have children")
	}
	if child.parent != nil {
		panic("inkline: node already has a parent")
	}
	if index < 0 || index > len(n.children) {
		panic("inkline: child index out of range")
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

// RemoveChild detaches a child. Removing a child of a Static node below
// the committed watermark lowers the watermark so the count never exceeds
// the child count.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			if n.Kind == KindStatic && i < n.committed {
				n.committed--
			}
			return
		}
	}
}

func (n *Node) mustKind(k NodeKind, op string) {
	if n.Kind != k {
		panic("inkline: " + op + " on " + n.Kind.String() + " node")
	}
}

// ReconcileChildren replaces parent's children with the desired list,
// preserving the identity of existing children where possible:
//
//   - A desired child with a Key adopts the existing child with the same
//     key, provided the kind matches.
//   - A keyless desired child adopts the existing keyless child at the
//     same position, provided the kind matches.
//   - A kind mismatch always destroys and recreates: the desired node is
//     used as-is, discarding the old subtree. For Static nodes this resets
//     the committed count to zero, and the next frame re-emits all
//     children. That replay is the documented behavior of identity loss,
//     not something the renderer corrects.
//
// Adoption copies the desired node's props, style, and content onto the
// surviving node and recurses into its children.
func ReconcileChildren(parent *Node, desired []*Node) {
	byKey := make(map[string]*Node)
	for _, c := range parent.children {
		if c.Key != "" {
			byKey[c.Key] = c
		}
	}

	next := make([]*Node, 0, len(desired))
	kept := make(map[*Node]bool, len(desired))
	for i, d := range desired {
		var prev *Node
		if d.Key != "" {
			prev = byKey[d.Key]
		} else if i < len(parent.children) && parent.children[i].Key == "" {
			prev = parent.children[i]
		}
		if prev != nil && prev.Kind == d.Kind && !kept[prev] {
			adopt(prev, d)
			kept[prev] = true
			next = append(next, prev)
		} else {
			if d.parent != nil {
				d.parent.RemoveChild(d)
			}
			d.parent = parent
			next = append(next, d)
			kept[d] = true
		}
	}

	for _, c := range parent.children {
		if !kept[c] {
			c.parent = nil
		}
	}
	for _, c := range next {
		c.parent = parent
	}
	parent.children = next
	if parent.Kind == KindStatic && parent.committed > len(next) {
		parent.committed = len(next)
	}
}

func adopt(prev, d *Node) {
	prev.Props = d.Props
	prev.Style = d.Style
	prev.Text = d.Text
	ReconcileChildren(prev, d.children)
}

// Tree is the mutable retained scene tree. The external view layer applies
// mutations and then calls Commit to mark one logically atomic batch
// complete; renders only ever observe committed state.
type Tree struct {
	root       *Node
	generation uint64
}

// NewTree creates a tree rooted at the given Box node.
func NewTree(root *Node) *Tree {
	if root == nil {
		root = NewBox(BoxProps{})
	}
	if root.Kind != KindBox {
		panic("inkline: tree root must be a box")
	}
	return &Tree{root: root}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Commit marks the current batch of mutations complete. The tree is
// conceptually frozen until the next frame observes it; all mutation and
// rendering happen on one logical thread of control, so this is a
// bookkeeping signal rather than a lock.
func (t *Tree) Commit() { t.generation++ }

// Generation returns the number of commits so far.
func (t *Tree) Generation() uint64 { return t.generation }
