package pinchzoom

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// color32 is a compact RGBA color using float32, for render commands only.
type color32 struct {
	R, G, B, A float32
}

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Transform   [6]float32 // view * world
	Color       color32
	BlendMode   BlendMode
	RenderLayer uint8
	GlobalOrder int
	treeOrder   int // assigned during traversal for stable sort

	image   *ebiten.Image // nil draws the white pixel
	source  *Node
	clip    image.Rectangle
	clipped bool
}

// affine32 converts a [6]float64 affine matrix to [6]float32.
func affine32(m [6]float64) [6]float32 {
	return [6]float32{float32(m[0]), float32(m[1]), float32(m[2]), float32(m[3]), float32(m[4]), float32(m[5])}
}

// clipState is the screen rectangle drawing is currently limited to.
type clipState struct {
	rect   image.Rectangle
	active bool
}

var noClip = clipState{}

// intersect narrows the clip to r, given in screen coordinates.
func (c clipState) intersect(r Rect) clipState {
	ir := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
	if c.active {
		ir = ir.Intersect(c.rect)
	}
	return clipState{rect: ir, active: true}
}

func (c clipState) empty() bool {
	return c.active && c.rect.Empty()
}

// traverse walks the tree depth-first and emits render commands for visible,
// renderable sprites. Transforms are composed explicitly from parentWorld so
// the same subtree can be drawn again under a mirror.
func (s *Scene) traverse(n *Node, view, parentWorld [6]float64, parentAlpha float64, clip clipState, mirrorDepth int, treeOrder *int) {
	if !n.Visible || n.disposed {
		return
	}

	world := multiplyAffine(parentWorld, computeLocalTransform(n))
	alpha := parentAlpha * n.Alpha
	screenM := multiplyAffine(view, world)

	if n.ClipEnabled {
		clip = clip.intersect(transformedAABB(screenM, Rect{Width: n.ClipWidth, Height: n.ClipHeight}))
		if clip.empty() {
			return
		}
	}

	if n.Renderable {
		switch n.Type {
		case NodeTypeSprite:
			a := n.Color.A * alpha
			if a <= 0 {
				break
			}
			*treeOrder++
			s.commands = append(s.commands, RenderCommand{
				Transform:   affine32(screenM),
				Color:       color32{float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(a)},
				BlendMode:   n.BlendMode,
				RenderLayer: n.RenderLayer,
				GlobalOrder: n.GlobalOrder,
				treeOrder:   *treeOrder,
				image:       n.customImage,
				source:      n,
				clip:        clip.rect,
				clipped:     clip.active,
			})
		case NodeTypeMirror:
			if src := n.mirrorSource; src != nil && mirrorDepth < maxMirrorDepth {
				s.traverse(src, view, world, alpha, clip, mirrorDepth+1, treeOrder)
			}
			// NodeTypeContainer doesn't emit commands
		}
	}

	// Traverse children (ZIndex sorted if needed)
	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, view, world, alpha, clip, mirrorDepth, treeOrder)
	}
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func (s *Scene) rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b *RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.GlobalOrder != b.GlobalOrder {
		return a.GlobalOrder < b.GlobalOrder
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
