package pinchzoom

import "math"

// --- TransformController ---

// TransformController holds the shared pan/zoom transform read by one or more
// Viewers. Writes notify every listener synchronously.
type TransformController struct {
	value     Affine
	listeners []transformListener
	nextID    uint32
}

type transformListener struct {
	id uint32
	fn func(Affine)
}

// ListenerHandle removes a listener registered with AddListener.
type ListenerHandle struct {
	id   uint32
	ctrl *TransformController
}

// NewTransformController returns a controller holding the identity transform.
func NewTransformController() *TransformController {
	return &TransformController{value: Identity}
}

// Value returns the current transform.
func (c *TransformController) Value() Affine {
	return c.value
}

// SetValue replaces the transform and notifies listeners when it changed.
func (c *TransformController) SetValue(m Affine) {
	if m == c.value {
		return
	}
	c.value = m
	for i := 0; i < len(c.listeners); i++ {
		c.listeners[i].fn(m)
	}
}

// Reset sets the transform back to Identity.
func (c *TransformController) Reset() {
	c.SetValue(Identity)
}

// AddListener registers fn to be called with each new value.
func (c *TransformController) AddListener(fn func(Affine)) ListenerHandle {
	c.nextID++
	c.listeners = append(c.listeners, transformListener{id: c.nextID, fn: fn})
	return ListenerHandle{id: c.nextID, ctrl: c}
}

// Remove unregisters the listener. Safe to call more than once.
func (h ListenerHandle) Remove() {
	if h.ctrl == nil {
		return
	}
	ls := h.ctrl.listeners
	for i := range ls {
		if ls[i].id == h.id {
			copy(ls[i:], ls[i+1:])
			ls[len(ls)-1] = transformListener{}
			h.ctrl.listeners = ls[:len(ls)-1]
			return
		}
	}
}

// NumListeners returns the number of registered listeners.
func (c *TransformController) NumListeners() int {
	return len(c.listeners)
}

// --- Viewer ---

// ViewerConfig configures a Viewer.
type ViewerConfig struct {
	// Width and Height set the viewport size in local units. Zero derives
	// the size from the content's extents.
	Width, Height float64

	Clip     ClipBehavior
	MinScale float64
	MaxScale float64

	// BoundaryMargin is the extra distance content may be panned past its
	// edges. math.Inf(1) disables boundary clamping.
	BoundaryMargin float64

	// PanEnabled lets the focal point follow the pointers. When false the
	// content only scales around the point where the gesture started.
	PanEnabled bool

	// Controller is the shared transform. Nil creates a private one.
	Controller *TransformController
}

// DefaultViewerConfig returns the defaults used by NewViewer for zero fields.
func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		MinScale:   0.8,
		MaxScale:   2.5,
		PanEnabled: true,
	}
}

// Viewer scales and pans its content in response to scale gestures that
// start inside its viewport. The transform lives in a TransformController so
// several viewers can show the same state.
type Viewer struct {
	root        *Node
	transformed *Node
	content     *Node

	cfg      ViewerConfig
	ctrl     *TransformController
	listener ListenerHandle

	startValue      Affine
	startFocalX     float64
	startFocalY     float64
	contentFocalX   float64
	contentFocalY   float64
	interactionOpen bool

	// AcceptGesture, when set, decides whether a gesture starting on the
	// viewer may drive the transform. A rejected gesture is ignored until it
	// ends.
	AcceptGesture func(GestureContext) bool

	// OnInteractionStart, OnInteractionUpdate and OnInteractionEnd forward
	// the gesture after the viewer has applied it.
	OnInteractionStart  func(GestureContext)
	OnInteractionUpdate func(GestureContext)
	OnInteractionEnd    func(GestureContext)
}

// NewViewer wraps content in a pan/zoom viewport. content is reparented
// under the viewer.
func NewViewer(name string, content *Node, cfg ViewerConfig) *Viewer {
	if content == nil {
		panic("pinchzoom: viewer content is nil")
	}
	def := DefaultViewerConfig()
	if cfg.MinScale <= 0 {
		cfg.MinScale = def.MinScale
	}
	if cfg.MaxScale <= 0 {
		cfg.MaxScale = def.MaxScale
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		b := subtreeBounds(content)
		lt := computeLocalTransform(content)
		b = transformedAABB(lt, b)
		if cfg.Width <= 0 {
			cfg.Width = math.Max(0, b.X+b.Width)
		}
		if cfg.Height <= 0 {
			cfg.Height = math.Max(0, b.Y+b.Height)
		}
	}
	if cfg.Controller == nil {
		cfg.Controller = NewTransformController()
	}

	v := &Viewer{cfg: cfg, ctrl: cfg.Controller, content: content}

	v.root = NewContainer(name)
	v.root.Interactable = true
	v.root.HitShape = HitRect{Width: cfg.Width, Height: cfg.Height}
	if cfg.Clip == ClipHardEdge {
		v.root.SetClip(cfg.Width, cfg.Height)
	}
	v.root.OnGestureStart = v.handleStart
	v.root.OnGestureUpdate = v.handleUpdate
	v.root.OnGestureEnd = v.handleEnd

	v.transformed = NewContainer(name + "_transform")
	v.transformed.Interactable = true
	v.root.AddChild(v.transformed)
	v.transformed.AddChild(content)

	v.transformed.setAffine(v.ctrl.Value())
	v.listener = v.ctrl.AddListener(v.transformed.setAffine)
	return v
}

// Node returns the viewer's root node.
func (v *Viewer) Node() *Node {
	return v.root
}

// Content returns the node being viewed.
func (v *Viewer) Content() *Node {
	return v.content
}

// Controller returns the transform controller driving this viewer.
func (v *Viewer) Controller() *TransformController {
	return v.ctrl
}

// Size returns the viewport size in local units.
func (v *Viewer) Size() Vec2 {
	return Vec2{X: v.cfg.Width, Y: v.cfg.Height}
}

// Interacting reports whether a gesture is in progress on this viewer.
func (v *Viewer) Interacting() bool {
	return v.interactionOpen
}

// Dispose unregisters from the controller, detaches the content and
// disposes the viewer's own nodes. The content itself is not disposed.
func (v *Viewer) Dispose() {
	v.listener.Remove()
	if v.content.Parent == v.transformed {
		v.transformed.RemoveChild(v.content)
	}
	v.root.Dispose()
	v.interactionOpen = false
}

func (v *Viewer) handleStart(ctx GestureContext) {
	// A single pointer only pans.
	if ctx.PointerCount < 2 && !v.cfg.PanEnabled {
		return
	}
	if v.AcceptGesture != nil && !v.AcceptGesture(ctx) {
		return
	}
	v.interactionOpen = true
	v.startValue = v.ctrl.Value()
	v.startFocalX, v.startFocalY = v.root.WorldToLocal(ctx.FocalX, ctx.FocalY)
	v.contentFocalX, v.contentFocalY = v.startValue.Invert().Apply(v.startFocalX, v.startFocalY)
	if v.OnInteractionStart != nil {
		v.OnInteractionStart(ctx)
	}
}

func (v *Viewer) handleUpdate(ctx GestureContext) {
	if !v.interactionOpen {
		return
	}
	s := v.startValue.ScaleFactor() * ctx.Scale
	s = math.Max(v.cfg.MinScale, math.Min(s, v.cfg.MaxScale))

	fx, fy := v.startFocalX, v.startFocalY
	if v.cfg.PanEnabled {
		fx, fy = v.root.WorldToLocal(ctx.FocalX, ctx.FocalY)
	}
	tx := fx - s*v.contentFocalX
	ty := fy - s*v.contentFocalY
	tx = clampAxis(tx, s, v.cfg.Width, v.cfg.BoundaryMargin)
	ty = clampAxis(ty, s, v.cfg.Height, v.cfg.BoundaryMargin)
	v.ctrl.SetValue(ScaleTranslate(s, tx, ty))

	if v.OnInteractionUpdate != nil {
		v.OnInteractionUpdate(ctx)
	}
}

func (v *Viewer) handleEnd(ctx GestureContext) {
	if !v.interactionOpen {
		return
	}
	v.interactionOpen = false
	if v.OnInteractionEnd != nil {
		v.OnInteractionEnd(ctx)
	}
}

// clampAxis keeps the viewport [0, size] covered by the content [0, size]
// inflated by margin and scaled by s. When the scaled content is smaller
// than the viewport it is centred.
func clampAxis(t, s, size, margin float64) float64 {
	if math.IsInf(margin, 1) {
		return t
	}
	lo := size - s*(size+margin)
	hi := s * margin
	if lo > hi {
		return (size - s*size) / 2
	}
	return math.Max(lo, math.Min(t, hi))
}
