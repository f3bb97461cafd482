package pinchzoom

import (
	"math"

	"go.uber.org/zap"
)

// ZoomOverlay adds pinch-to-zoom to an element. While a qualifying gesture
// is active a magnified copy is drawn in the overlay layer above all other
// content, over a dimmed backdrop. When the gesture ends the shared
// transform animates back to identity and the overlay is removed shortly
// after.
//
// Add the node returned by Node to the scene under an Interactable parent.
// All callbacks run inside Scene.Update.
type ZoomOverlay struct {
	cfg  ZoomConfig
	host OverlayHost
	log  *zap.Logger

	ctrl   *TransformController
	node   *Node
	viewer *Viewer

	activeContacts []int
	currentScale   float64
	overlay        *OverlayEntry
	pending        []*OverlayEntry
	layers         map[*OverlayEntry]*zoomLayer

	reset     *Animation
	resetFrom Affine
	removal   *Timer
	disposed  bool
}

// zoomLayer holds the nodes one overlay entry shows.
type zoomLayer struct {
	dim    *Node
	frame  *Node
	viewer *Viewer
}

// NewZoomOverlay builds the base presentation around cfg.Base. Base is
// reparented into the presentation. The scale bounds must satisfy
// 0 < MinScale <= MaxScale.
func NewZoomOverlay(host OverlayHost, cfg ZoomConfig) (*ZoomOverlay, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	z := &ZoomOverlay{
		cfg:          cfg,
		host:         host,
		log:          log.Named("zoom"),
		ctrl:         NewTransformController(),
		currentScale: 1,
		layers:       make(map[*OverlayEntry]*zoomLayer),
	}
	z.reset = NewAnimation(cfg.ResetDuration, cfg.ResetCurve)
	z.reset.OnTick = z.resetTick
	z.reset.OnComplete = z.resetComplete
	z.removal = NewTimer(overlayRemovalDelay, z.removeOverlays)
	z.removal.Stop()

	z.node, z.viewer = z.compose(cfg.Base, "zoom", Vec2{})
	z.viewer.AcceptGesture = z.acceptsGesture
	z.viewer.OnInteractionStart = z.gestureStart
	z.viewer.OnInteractionUpdate = z.gestureUpdate
	z.viewer.OnInteractionEnd = z.gestureEnd
	z.node.OnUpdate = z.tick
	return z, nil
}

// compose wraps element in a transparent surface, a pointer listener and a
// Viewer bound to the shared controller. The base presentation and every
// overlay presentation come from here.
func (z *ZoomOverlay) compose(element *Node, name string, size Vec2) (*Node, *Viewer) {
	surface := NewContainer(name + "_surface")
	surface.Interactable = true

	listener := NewContainer(name + "_listener")
	listener.Interactable = true
	listener.OnPointerDown = func(ctx PointerContext) { z.contactStart(ctx.PointerID) }
	listener.OnPointerUp = func(ctx PointerContext) { z.contactEnd(ctx.PointerID) }

	v := NewViewer(name+"_viewer", element, ViewerConfig{
		Width:          size.X,
		Height:         size.Y,
		Clip:           z.cfg.Clip,
		MinScale:       z.cfg.MinScale,
		MaxScale:       z.cfg.MaxScale,
		BoundaryMargin: z.cfg.BoundaryMargin,
		PanEnabled:     false,
		Controller:     z.ctrl,
	})

	surface.AddChild(listener)
	listener.AddChild(v.Node())
	return surface, v
}

// Node returns the base presentation.
func (z *ZoomOverlay) Node() *Node {
	return z.node
}

// Viewer returns the base presentation's viewer.
func (z *ZoomOverlay) Viewer() *Viewer {
	return z.viewer
}

// Controller returns the shared transform.
func (z *ZoomOverlay) Controller() *TransformController {
	return z.ctrl
}

// ActiveContacts returns the number of tracked contacts.
func (z *ZoomOverlay) ActiveContacts() int {
	return len(z.activeContacts)
}

// CurrentScale returns the last scale reported by the gesture. Only
// meaningful while an overlay is shown.
func (z *ZoomOverlay) CurrentScale() float64 {
	return z.currentScale
}

// Overlay returns the active overlay entry, or nil.
func (z *ZoomOverlay) Overlay() *OverlayEntry {
	return z.overlay
}

// OverlayActive reports whether an overlay entry is active.
func (z *ZoomOverlay) OverlayActive() bool {
	return z.overlay != nil
}

// PendingOverlays returns how many inserted entries await removal.
func (z *ZoomOverlay) PendingOverlays() int {
	return len(z.pending)
}

// Resetting reports whether the reset animation is running.
func (z *ZoomOverlay) Resetting() bool {
	return z.reset.IsAnimating()
}

// RemovalScheduled reports whether overlay removal is waiting on its delay.
func (z *ZoomOverlay) RemovalScheduled() bool {
	return z.removal.Active()
}

// Opacity returns the backdrop opacity for the current scale.
func (z *ZoomOverlay) Opacity() float64 {
	return overlayOpacity(z.currentScale, z.cfg.MaxScale, z.cfg.MaxOverlayOpacity)
}

// IsDisposed reports whether Dispose has been called.
func (z *ZoomOverlay) IsDisposed() bool {
	return z.disposed
}

// overlayOpacity ramps linearly from 0 at scale 1 to maxOpacity at maxScale,
// clamped to [0, maxOpacity]. A maxScale of 1 yields 0.
func overlayOpacity(scale, maxScale, maxOpacity float64) float64 {
	if maxScale == 1 {
		return 0
	}
	v := (scale - 1) / (maxScale - 1)
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, maxOpacity))
}

// --- Contacts ---

func (z *ZoomOverlay) contactStart(pointerID int) {
	if z.disposed {
		return
	}
	z.activeContacts = append(z.activeContacts, pointerID)
	if len(z.activeContacts) >= 2 && z.cfg.OnMultiTouchEngage != nil {
		z.cfg.OnMultiTouchEngage()
	}
}

// contactEnd clears every contact, not just pointerID.
func (z *ZoomOverlay) contactEnd(pointerID int) {
	if z.disposed {
		return
	}
	z.activeContacts = z.activeContacts[:0]
	if len(z.activeContacts) < 2 && z.cfg.OnMultiTouchRelease != nil {
		z.cfg.OnMultiTouchRelease()
	}
}

// --- Gesture ---

// acceptsGesture applies finger gating. The viewer consults it before
// writing the shared transform, so a rejected gesture never competes with
// the reset animation.
func (z *ZoomOverlay) acceptsGesture(ctx GestureContext) bool {
	if z.disposed {
		return false
	}
	if z.cfg.FingersRequired > 0 && ctx.PointerCount != z.cfg.FingersRequired {
		z.log.Debug("gesture ignored",
			zap.Int("pointers", ctx.PointerCount), zap.Int("required", z.cfg.FingersRequired))
		return false
	}
	return true
}

func (z *ZoomOverlay) gestureStart(ctx GestureContext) {
	if !z.acceptsGesture(ctx) {
		return
	}
	if !z.cfg.UseOverlay {
		return
	}
	z.supersede()

	rect := z.host.NodeScreenBounds(z.viewer.Node())
	layer := z.newLayer(rect)
	entry := NewOverlayEntry(func(root *Node) { z.buildLayer(layer, root) })
	z.layers[entry] = layer
	z.currentScale = 1
	z.overlay = entry
	z.pending = append(z.pending, entry)
	z.host.InsertOverlay(entry)

	z.log.Debug("overlay inserted",
		zap.Int("pointers", ctx.PointerCount),
		zap.Float64("x", rect.X), zap.Float64("y", rect.Y),
		zap.Float64("w", rect.Width), zap.Float64("h", rect.Height))
}

func (z *ZoomOverlay) gestureUpdate(ctx GestureContext) {
	if z.disposed || z.overlay == nil {
		return
	}
	z.currentScale = ctx.Scale
	z.overlay.MarkNeedsBuild()
}

func (z *ZoomOverlay) gestureEnd(GestureContext) {
	if z.disposed || len(z.pending) == 0 {
		return
	}
	z.resetFrom = z.ctrl.Value()
	z.reset.Start()
	z.log.Debug("reset started",
		zap.Float64("scale", z.resetFrom.ScaleFactor()), zap.Duration("duration", z.cfg.ResetDuration))
}

// supersede cancels an in-flight reset or removal and drops its entries so
// a new gesture starts with one writer and one overlay.
func (z *ZoomOverlay) supersede() {
	if len(z.pending) == 0 {
		return
	}
	z.reset.Stop()
	z.removal.Stop()
	z.removeOverlays()
}

// --- Reset and removal ---

func (z *ZoomOverlay) tick(dt float64) {
	if z.disposed {
		return
	}
	z.reset.Update(dt)
	z.removal.Update(dt)
}

func (z *ZoomOverlay) resetTick(t float64) {
	if z.disposed {
		return
	}
	z.ctrl.SetValue(z.resetFrom.Lerp(Identity, t))
}

func (z *ZoomOverlay) resetComplete() {
	if z.disposed || !z.cfg.UseOverlay {
		return
	}
	z.removal.Reset(overlayRemovalDelay)
}

func (z *ZoomOverlay) removeOverlays() {
	if z.disposed {
		return
	}
	n := len(z.pending)
	z.dropPending()
	z.log.Debug("overlays removed", zap.Int("count", n))
}

func (z *ZoomOverlay) dropPending() {
	for i, e := range z.pending {
		z.dropLayer(e)
		z.pending[i] = nil
	}
	z.pending = z.pending[:0]
	z.overlay = nil
	z.currentScale = 1
}

func (z *ZoomOverlay) dropLayer(e *OverlayEntry) {
	e.Remove()
	l := z.layers[e]
	if l == nil {
		return
	}
	delete(z.layers, e)
	mirror := l.viewer.Content()
	l.viewer.Dispose()
	mirror.Dispose()
	l.frame.Dispose()
	l.dim.Dispose()
}

// --- Overlay presentation ---

func (z *ZoomOverlay) zoomElement() *Node {
	if z.cfg.Zoom != nil {
		return z.cfg.Zoom
	}
	return z.cfg.Base
}

// newLayer composes the overlay copy of the zoom element, placed over rect.
func (z *ZoomOverlay) newLayer(rect Rect) *zoomLayer {
	size := z.viewer.Size()
	content, v := z.compose(NewMirror("zoom_mirror", z.zoomElement()), "zoom_overlay", size)

	frame := NewContainer("zoom_frame")
	frame.SetPosition(rect.X, rect.Y)
	if size.X > 0 && size.Y > 0 {
		frame.SetScale(rect.Width/size.X, rect.Height/size.Y)
	}
	frame.AddChild(content)

	return &zoomLayer{
		dim:    NewRect("zoom_dim", 1, 1, ColorTransparent),
		frame:  frame,
		viewer: v,
	}
}

// buildLayer fills an overlay entry: the full-screen backdrop at the current
// opacity, then the magnified content.
func (z *ZoomOverlay) buildLayer(l *zoomLayer, root *Node) {
	screen := z.host.ScreenBounds()
	l.dim.SetPosition(screen.X, screen.Y)
	l.dim.SetScale(screen.Width, screen.Height)
	c := z.cfg.OverlayColor
	c.A = z.Opacity()
	l.dim.Color = c

	root.AddChild(l.dim)
	root.AddChild(l.frame)
}

// --- Teardown ---

// Dispose stops the reset animation and the removal delay, removes every
// pending overlay and releases the presentation nodes. Base is detached but
// not disposed. Late callbacks are ignored.
func (z *ZoomOverlay) Dispose() {
	if z.disposed {
		return
	}
	z.reset.Dispose()
	z.removal.Stop()
	z.dropPending()
	z.disposed = true

	z.viewer.Dispose()
	z.node.Dispose()
	z.activeContacts = nil
	z.log.Debug("disposed")
}
