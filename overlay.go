package pinchzoom

import "go.uber.org/zap"

// OverlayHost is the layered-rendering surface an OverlayEntry is inserted
// into. Scene implements it.
type OverlayHost interface {
	// InsertOverlay mounts e above all other content.
	InsertOverlay(e *OverlayEntry)
	// ScreenBounds returns the screen rectangle overlays draw into.
	ScreenBounds() Rect
	// NodeScreenBounds returns the screen-space box of n: its HitRect when
	// it has one, otherwise the bounds of its visible subtree.
	NodeScreenBounds(n *Node) Rect
}

// OverlayEntry is one slot in the overlay layer. Its content is produced by
// a builder function that runs on insertion and again on the next Update
// after MarkNeedsBuild. Nodes added by the builder are owned by the caller;
// a rebuild or removal detaches them without disposing.
type OverlayEntry struct {
	build      func(root *Node)
	root       *Node
	scene      *Scene
	needsBuild bool
	builds     int
}

// NewOverlayEntry creates an unmounted entry.
func NewOverlayEntry(build func(root *Node)) *OverlayEntry {
	if build == nil {
		panic("pinchzoom: overlay builder is nil")
	}
	return &OverlayEntry{build: build, root: NewContainer("overlay_entry")}
}

// Root returns the container the builder fills.
func (e *OverlayEntry) Root() *Node {
	return e.root
}

// Mounted reports whether the entry is currently inserted in a scene.
func (e *OverlayEntry) Mounted() bool {
	return e.scene != nil
}

// NeedsBuild reports whether a rebuild is scheduled.
func (e *OverlayEntry) NeedsBuild() bool {
	return e.needsBuild
}

// Builds returns how many times the builder has run.
func (e *OverlayEntry) Builds() int {
	return e.builds
}

// MarkNeedsBuild schedules the builder to run again on the next Update.
// No-op when the entry is not mounted.
func (e *OverlayEntry) MarkNeedsBuild() {
	if e.scene == nil {
		return
	}
	e.needsBuild = true
}

// Remove unmounts the entry. No-op when it is not mounted.
func (e *OverlayEntry) Remove() {
	if e.scene == nil {
		return
	}
	e.scene.removeOverlay(e)
}

func (e *OverlayEntry) rebuild() {
	e.needsBuild = false
	e.root.RemoveChildren()
	e.build(e.root)
	e.builds++
}

// --- Scene overlay layer ---

// InsertOverlay mounts e on top of every existing overlay and builds it
// immediately. Panics if e is already mounted.
func (s *Scene) InsertOverlay(e *OverlayEntry) {
	if e.scene != nil {
		panic("pinchzoom: overlay entry is already mounted")
	}
	e.scene = s
	s.overlays = append(s.overlays, e)
	s.overlayRoot.AddChild(e.root)
	e.rebuild()
	s.logger.Debug("overlay inserted", zap.Int("overlays", len(s.overlays)))
}

// Overlays returns the mounted entries in paint order. The returned slice
// MUST NOT be mutated.
func (s *Scene) Overlays() []*OverlayEntry {
	return s.overlays
}

// ScreenBounds returns the screen rectangle in logical pixels.
func (s *Scene) ScreenBounds() Rect {
	return Rect{Width: float64(s.screenW), Height: float64(s.screenH)}
}

// NodeScreenBounds returns the screen-space box of n as seen through the
// primary camera.
func (s *Scene) NodeScreenBounds(n *Node) Rect {
	refreshWorldTransform(n)
	var local Rect
	if hr, ok := n.HitShape.(HitRect); ok {
		local = Rect(hr)
	} else {
		local = subtreeBounds(n)
	}
	m := n.worldTransform
	if cam := s.primaryCamera(); cam != nil && !s.isOverlayNode(n) {
		m = multiplyAffine(cam.viewMatrix, m)
	}
	return transformedAABB(m, local)
}

func (s *Scene) isOverlayNode(n *Node) bool {
	return isAncestor(s.overlayRoot, n)
}

func (s *Scene) removeOverlay(e *OverlayEntry) {
	for i, o := range s.overlays {
		if o == e {
			copy(s.overlays[i:], s.overlays[i+1:])
			s.overlays[len(s.overlays)-1] = nil
			s.overlays = s.overlays[:len(s.overlays)-1]
			break
		}
	}
	e.root.RemoveChildren()
	e.root.RemoveFromParent()
	e.scene = nil
	e.needsBuild = false
	s.logger.Debug("overlay removed", zap.Int("overlays", len(s.overlays)))
}

// rebuildOverlays runs the builders of entries marked since the last frame.
func (s *Scene) rebuildOverlays() {
	for i := 0; i < len(s.overlays); i++ {
		if e := s.overlays[i]; e.needsBuild {
			e.rebuild()
		}
	}
}
