package pinchzoom

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// HitShape is used for custom hit testing regions.
type HitShape interface {
	Contains(x, y float64) bool
}

// PointerContext carries pointer event data. Node is the node whose callback
// is running; Target is the node originally hit. They differ while the event
// bubbles up through ancestors.
type PointerContext struct {
	Node      *Node
	Target    *Node
	EntityID  uint32
	UserData  any
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// GestureContext carries scale gesture data. FocalX/FocalY are the world-space
// centroid of the active pointers. Scale is relative to the gesture start.
type GestureContext struct {
	Node           *Node
	PointerCount   int
	FocalX, FocalY float64
	Scale          float64
	ScaleDelta     float64
	Rotation       float64
	Modifiers      KeyModifiers
}

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic — the scene is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Computed (unexported, refreshed each Update)
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Renderable   bool
	Interactable bool

	// Ordering
	ZIndex      int
	RenderLayer uint8
	GlobalOrder int

	// Metadata
	UserData any
	EntityID uint32

	// Sprite fields (NodeTypeSprite)
	BlendMode   BlendMode
	Color       Color
	customImage *ebiten.Image

	// Mirror field (NodeTypeMirror)
	mirrorSource *Node

	// Clip restricts drawing of this node's subtree to the rectangle
	// (0, 0, ClipWidth, ClipHeight) in local space when ClipEnabled is set.
	ClipEnabled bool
	ClipWidth   float64
	ClipHeight  float64

	// Hit testing
	HitShape HitShape

	// Per-node callbacks (nil by default; zero cost when unused).
	// Pointer callbacks bubble from the hit node to the root.
	OnPointerDown   func(PointerContext)
	OnPointerUp     func(PointerContext)
	OnPointerMove   func(PointerContext)
	OnGestureStart  func(GestureContext)
	OnGestureUpdate func(GestureContext)
	OnGestureEnd    func(GestureContext)

	// OnUpdate is called once per Scene.Update with the frame delta in seconds.
	OnUpdate func(dt float64)

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = Color{1, 1, 1, 1}
	n.Visible = true
	n.Renderable = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that draws img. A nil img draws a white pixel,
// which together with Color and ScaleX/ScaleY gives a solid rectangle.
func NewSprite(name string, img *ebiten.Image) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, customImage: img}
	nodeDefaults(n)
	return n
}

// NewRect creates a solid color rectangle of the given size.
func NewRect(name string, w, h float64, c Color) *Node {
	n := NewSprite(name, nil)
	n.ScaleX = w
	n.ScaleY = h
	n.Color = c
	return n
}

// NewMirror creates a node that renders source's subtree as if it were its
// own child, without reparenting source. source keeps its own place (if any)
// in the tree; the mirror applies its own transform and alpha on top of
// source's local transform.
func NewMirror(name string, source *Node) *Node {
	n := &Node{Name: name, Type: NodeTypeMirror, mirrorSource: source}
	nodeDefaults(n)
	return n
}

// MirrorSource returns the node a mirror renders, or nil for other types.
func (n *Node) MirrorSource() *Node {
	return n.mirrorSource
}

// SetImage sets the image drawn by a sprite node.
func (n *Node) SetImage(img *ebiten.Image) {
	n.customImage = img
}

// Image returns the image drawn by a sprite node, or nil if it draws the white pixel.
func (n *Node) Image() *ebiten.Image {
	return n.customImage
}

// SetClip enables clipping of this node's subtree to (0, 0, w, h) in local space.
func (n *Node) SetClip(w, h float64) {
	n.ClipEnabled = true
	n.ClipWidth = w
	n.ClipHeight = h
}

// ClearClip disables clipping.
func (n *Node) ClearClip() {
	n.ClipEnabled = false
}

// hasGestureHandler reports whether any gesture callback is set.
func (n *Node) hasGestureHandler() bool {
	return n.OnGestureStart != nil || n.OnGestureUpdate != nil || n.OnGestureEnd != nil
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("pinchzoom: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("pinchzoom: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("pinchzoom: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("pinchzoom: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("pinchzoom: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("pinchzoom: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		markSubtreeDirty(child)
	}
	clear(n.children)
	n.children = n.children[:0]
	n.childrenSorted = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. A mirror's source is not disposed.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.HitShape = nil
	n.customImage = nil
	n.mirrorSource = nil
	n.UserData = nil
	n.OnPointerDown = nil
	n.OnPointerUp = nil
	n.OnPointerMove = nil
	n.OnGestureStart = nil
	n.OnGestureUpdate = nil
	n.OnGestureEnd = nil
	n.OnUpdate = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// updateNodes runs OnUpdate hooks depth-first over visible nodes. The child
// list is copied per level so hooks may add or remove siblings safely.
func updateNodes(n *Node, dt float64, buf []*Node) []*Node {
	if !n.Visible || n.disposed {
		return buf
	}
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	if n.disposed || len(n.children) == 0 {
		return buf
	}
	start := len(buf)
	buf = append(buf, n.children...)
	end := len(buf)
	for i := start; i < end; i++ {
		buf = updateNodes(buf[i], dt, buf)
	}
	return buf[:start]
}
