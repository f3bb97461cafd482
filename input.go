package pinchzoom

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// --- Input source ---

// TouchPoint is one active touch in screen coordinates.
type TouchPoint struct {
	ID   int
	X, Y float64
}

// inputSource abstracts the per-frame device polling so scenes can run
// without a window (tests, headless automation).
type inputSource interface {
	cursor() (x, y float64)
	mouseButton() (pressed bool, button MouseButton)
	appendTouches(buf []TouchPoint) []TouchPoint
	modifiers() KeyModifiers
}

// ebitenInput polls Ebitengine's global input state.
type ebitenInput struct {
	ids []ebiten.TouchID
}

func (in *ebitenInput) cursor() (float64, float64) {
	mx, my := ebiten.CursorPosition()
	return float64(mx), float64(my)
}

func (in *ebitenInput) mouseButton() (bool, MouseButton) {
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return true, MouseButtonMiddle
	}
	return false, MouseButtonLeft
}

func (in *ebitenInput) appendTouches(buf []TouchPoint) []TouchPoint {
	in.ids = ebiten.AppendTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		tx, ty := ebiten.TouchPosition(id)
		buf = append(buf, TouchPoint{ID: int(id), X: float64(tx), Y: float64(ty)})
	}
	return buf
}

func (in *ebitenInput) modifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// nullInput reports no devices. Injected events still flow.
type nullInput struct{}

func (nullInput) cursor() (float64, float64)                   { return -1, -1 }
func (nullInput) mouseButton() (bool, MouseButton)             { return false, MouseButtonLeft }
func (nullInput) appendTouches(buf []TouchPoint) []TouchPoint { return buf }
func (nullInput) modifiers() KeyModifiers                      { return 0 }

// SetHeadless disconnects the scene from Ebitengine's input devices. Only
// injected events are processed afterwards.
func (s *Scene) SetHeadless(headless bool) {
	if headless {
		s.input = nullInput{}
	} else {
		s.input = &ebitenInput{}
	}
}

// --- Per-pointer state ---

type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	pressSeq  uint64      // order of the press among all pointers
	button    MouseButton // button captured at press time
	travelled bool        // moved beyond the drag dead zone since press
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type gestureHandler struct {
	id uint32
	fn func(GestureContext)
}

type handlerRegistry struct {
	pointerDown   []pointerHandler
	pointerUp     []pointerHandler
	pointerMove   []pointerHandler
	gestureStart  []gestureHandler
	gestureUpdate []gestureHandler
	gestureEnd    []gestureHandler
	nextID        uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeHandler(h.reg.pointerDown, h.id)
	case EventPointerUp:
		h.reg.pointerUp = removeHandler(h.reg.pointerUp, h.id)
	case EventPointerMove:
		h.reg.pointerMove = removeHandler(h.reg.pointerMove, h.id)
	case EventGestureStart:
		h.reg.gestureStart = removeHandler(h.reg.gestureStart, h.id)
	case EventGestureUpdate:
		h.reg.gestureUpdate = removeHandler(h.reg.gestureUpdate, h.id)
	case EventGestureEnd:
		h.reg.gestureEnd = removeHandler(h.reg.gestureEnd, h.id)
	}
}

type handlerEntry interface {
	pointerHandler | gestureHandler
}

func handlerID[T handlerEntry](h T) uint32 {
	switch v := any(h).(type) {
	case pointerHandler:
		return v.id
	case gestureHandler:
		return v.id
	}
	return 0
}

// removeHandler removes the entry with the given id, keeping order.
func removeHandler[T handlerEntry](s []T, id uint32) []T {
	for i := range s {
		if handlerID(s[i]) == id {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

func (s *Scene) addPointerHandler(event EventType, list *[]pointerHandler, fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	*list = append(*list, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: event}
}

func (s *Scene) addGestureHandler(event EventType, list *[]gestureHandler, fn func(GestureContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	*list = append(*list, gestureHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: event}
}

// --- Scene-level event registration ---

// OnPointerDown registers a scene-level callback for pointer down events.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return s.addPointerHandler(EventPointerDown, &s.handlers.pointerDown, fn)
}

// OnPointerUp registers a scene-level callback for pointer up events.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	return s.addPointerHandler(EventPointerUp, &s.handlers.pointerUp, fn)
}

// OnPointerMove registers a scene-level callback for pointer move events.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	return s.addPointerHandler(EventPointerMove, &s.handlers.pointerMove, fn)
}

// OnGestureStart registers a scene-level callback for scale gesture starts.
func (s *Scene) OnGestureStart(fn func(GestureContext)) CallbackHandle {
	return s.addGestureHandler(EventGestureStart, &s.handlers.gestureStart, fn)
}

// OnGestureUpdate registers a scene-level callback for scale gesture updates.
func (s *Scene) OnGestureUpdate(fn func(GestureContext)) CallbackHandle {
	return s.addGestureHandler(EventGestureUpdate, &s.handlers.gestureUpdate, fn)
}

// OnGestureEnd registers a scene-level callback for scale gesture ends.
func (s *Scene) OnGestureEnd(fn func(GestureContext)) CallbackHandle {
	return s.addGestureHandler(EventGestureEnd, &s.handlers.gestureEnd, fn)
}

// CapturePointer routes all events for pointerID to the given node.
func (s *Scene) CapturePointer(pointerID int, node *Node) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = node
	}
}

// ReleasePointer stops routing events for pointerID to a captured node.
func (s *Scene) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a single
// touch starts a gesture.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise derives AABB from node dimensions.
// Containers with no HitShape are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	w, h := nodeDimensions(n)
	if w == 0 && h == 0 {
		return false
	}
	return lx >= 0 && lx <= w && ly >= 0 && ly <= h
}

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending interactable nodes to buf. Skips Visible=false or
// Interactable=false subtrees.
func (s *Scene) collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}

	if n.HitShape != nil || n.Type == NodeTypeSprite {
		buf = append(buf, n)
	}

	if len(n.children) == 0 {
		return buf
	}

	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		buf = s.collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (worldX, worldY).
// Returns nil if nothing is hit. Overlay content is never hit-tested.
func (s *Scene) hitTest(worldX, worldY float64) *Node {
	s.hitBuf = s.collectInteractable(s.root, s.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly := n.WorldToLocal(worldX, worldY)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// processInput is called from Scene.Update() to handle all mouse and touch input.
// World transforms are already refreshed at the start of Scene.Update().
func (s *Scene) processInput() {
	mods := s.input.modifiers()

	cam := s.primaryCamera()

	if !s.processInjectedInput(cam, mods) && !s.mouseInjected {
		s.processMousePointer(cam, mods)
	}
	s.processTouchPointers(cam, mods)
	s.recognizeGesture(mods)
}

// primaryCamera returns the first camera, or nil when the scene has none.
func (s *Scene) primaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	cam := s.cameras[0]
	cam.computeViewMatrix()
	return cam
}

// screenToWorld converts screen coordinates to world coordinates using the primary camera.
func screenToWorld(cam *Camera, sx, sy float64) (float64, float64) {
	if cam != nil {
		return cam.ScreenToWorld(sx, sy)
	}
	return sx, sy
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer(cam *Camera, mods KeyModifiers) {
	sx, sy := s.input.cursor()
	wx, wy := screenToWorld(cam, sx, sy)

	pressed, button := s.input.mouseButton()
	if s.pointers[0].down {
		// Keep the button captured at press time for the whole interaction.
		button = s.pointers[0].button
	}
	s.processPointer(0, wx, wy, pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9). An injected touch
// frame replaces device touches for as long as injected touches are held.
func (s *Scene) processTouchPointers(cam *Camera, mods KeyModifiers) {
	var touches []TouchPoint
	if len(s.touchFrames) > 0 {
		s.heldTouches = append(s.heldTouches[:0], s.touchFrames[0]...)
		copy(s.touchFrames, s.touchFrames[1:])
		s.touchFrames[len(s.touchFrames)-1] = nil
		s.touchFrames = s.touchFrames[:len(s.touchFrames)-1]
		s.touchInjected = true
	}
	if s.touchInjected {
		touches = s.heldTouches
		if len(touches) == 0 && len(s.touchFrames) == 0 {
			s.touchInjected = false
		}
	} else {
		s.touchBuf = s.input.appendTouches(s.touchBuf[:0])
		touches = s.touchBuf
	}

	var activeSlots [maxPointers]bool
	for _, tp := range touches {
		slot := s.touchSlot(tp.ID)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		wx, wy := screenToWorld(cam, tp.X, tp.Y)
		s.processPointer(slot, wx, wy, true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps a touch ID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(id int) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == id {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = id
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Scene) processPointer(pointerID int, wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointers[pointerID]

	// Determine target node: captured node or hit test.
	var target *Node
	if s.captured[pointerID] != nil {
		target = s.captured[pointerID]
	} else {
		target = s.hitTest(wx, wy)
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitNode = target
		ps.travelled = false
		s.pressCount++
		ps.pressSeq = s.pressCount

		s.dispatchPointer(EventPointerDown, target, pointerID, wx, wy, button, mods)
	case !pressed && ps.down:
		// Up is delivered to the node that received the down, wherever the
		// pointer ended up.
		pressTarget := ps.hitNode
		ps.down = false
		ps.hitNode = nil
		ps.travelled = false
		s.captured[pointerID] = nil

		s.dispatchPointer(EventPointerUp, pressTarget, pointerID, wx, wy, ps.button, mods)
	case pressed && ps.down:
		if wx != ps.lastX || wy != ps.lastY {
			if !ps.travelled {
				dx := wx - ps.startX
				dy := wy - ps.startY
				ps.travelled = math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone
			}
			ps.lastX, ps.lastY = wx, wy
			s.dispatchPointer(EventPointerMove, ps.hitNode, pointerID, wx, wy, ps.button, mods)
		}
	default:
		// Hover move.
		if wx != ps.lastX || wy != ps.lastY {
			ps.lastX, ps.lastY = wx, wy
			s.dispatchPointer(EventPointerMove, target, pointerID, wx, wy, button, mods)
		}
	}
}

// --- Event dispatch ---

func pointerCallback(n *Node, kind EventType) func(PointerContext) {
	switch kind {
	case EventPointerDown:
		return n.OnPointerDown
	case EventPointerUp:
		return n.OnPointerUp
	case EventPointerMove:
		return n.OnPointerMove
	}
	return nil
}

// dispatchPointer fires scene-level handlers, then the per-node callbacks of
// target and each of its ancestors, then the ECS bridge.
func (s *Scene) dispatchPointer(kind EventType, target *Node, pointerID int, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ctx := PointerContext{
		Node: target, Target: target,
		GlobalX: wx, GlobalY: wy,
		Button: button, PointerID: pointerID, Modifiers: mods,
	}
	if target != nil {
		ctx.LocalX, ctx.LocalY = target.WorldToLocal(wx, wy)
		ctx.EntityID = target.EntityID
		ctx.UserData = target.UserData
	}

	var handlers []pointerHandler
	switch kind {
	case EventPointerDown:
		handlers = s.handlers.pointerDown
	case EventPointerUp:
		handlers = s.handlers.pointerUp
	case EventPointerMove:
		handlers = s.handlers.pointerMove
	}
	for _, h := range handlers {
		h.fn(ctx)
	}

	for n := target; n != nil; {
		next := n.Parent
		if fn := pointerCallback(n, kind); fn != nil {
			ctx.Node = n
			ctx.LocalX, ctx.LocalY = n.WorldToLocal(wx, wy)
			fn(ctx)
		}
		n = next
	}

	if target != nil {
		lx, ly := target.WorldToLocal(wx, wy)
		s.emitInteractionEvent(kind, target, wx, wy, lx, ly, button, pointerID, mods, GestureContext{})
	}
}

// --- ECS bridge ---

func (s *Scene) emitInteractionEvent(eventType EventType, node *Node, wx, wy, lx, ly float64,
	button MouseButton, pointerID int, mods KeyModifiers, gesture GestureContext) {
	if s.store == nil {
		return
	}
	isGesture := eventType == EventGestureStart || eventType == EventGestureUpdate || eventType == EventGestureEnd
	// Gestures are global — emit even without a hit node or EntityID.
	if !isGesture && (node == nil || node.EntityID == 0) {
		return
	}
	var entityID uint32
	if node != nil {
		entityID = node.EntityID
	}
	s.store.EmitEvent(InteractionEvent{
		Type:         eventType,
		EntityID:     entityID,
		GlobalX:      wx,
		GlobalY:      wy,
		LocalX:       lx,
		LocalY:       ly,
		Button:       button,
		PointerID:    pointerID,
		Modifiers:    mods,
		PointerCount: gesture.PointerCount,
		Scale:        gesture.Scale,
		ScaleDelta:   gesture.ScaleDelta,
		Rotation:     gesture.Rotation,
	})
}
