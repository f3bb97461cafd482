package pinchzoom

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
	// Gesture fields (valid for EventGestureStart, EventGestureUpdate, EventGestureEnd)
	PointerCount int
	Scale        float64
	ScaleDelta   float64
	Rotation     float64
}

const defaultCommandCap = 1024

// DefaultScreenshotDir is where Screenshot writes PNGs unless ScreenshotDir is set.
const DefaultScreenshotDir = "screenshots"

// Scene is the top-level object that owns the node tree, cameras, the
// overlay layer, input state, and render buffers.
type Scene struct {
	// ClearColor fills the screen at the start of Draw when its alpha is > 0.
	ClearColor Color
	// ScreenshotDir is the directory Screenshot writes to.
	ScreenshotDir string

	root        *Node
	overlayRoot *Node
	overlays    []*OverlayEntry
	store       EntityStore
	debug       bool
	logger      *zap.Logger

	screenW, screenH int

	// Cameras
	cameras []*Camera

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand
	nodeBuf  []*Node

	// Input state
	input         inputSource
	handlers      handlerRegistry
	captured      [maxPointers]*Node
	pointers      [maxPointers]pointerState
	pressCount    uint64
	hitBuf        []*Node
	dragDeadZone  float64
	touchMap      [maxPointers]int
	touchUsed     [maxPointers]bool
	touchBuf      []TouchPoint
	gesture       gestureState
	gestureBuf    []int
	injectQueue   []syntheticPointerEvent
	mouseInjected bool
	touchFrames   [][]TouchPoint
	heldTouches   []TouchPoint
	touchInjected bool

	fps *Node

	// Automation
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewScene creates a new scene with a pre-created root container and an
// empty overlay layer.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		ScreenshotDir: DefaultScreenshotDir,
		root:          root,
		overlayRoot:   NewContainer("overlay"),
		logger:        zap.NewNop(),
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone:  defaultDragDeadZone,
		input:         &ebitenInput{},
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetLogger replaces the scene logger. Nil restores the no-op logger.
func (s *Scene) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.logger = l
	debugLogger = l
}

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger {
	return s.logger
}

// SetScreenSize sets the logical screen size used by ScreenBounds. Draw
// updates it from the target image each frame.
func (s *Scene) SetScreenSize(w, h int) {
	s.screenW, s.screenH = w, h
}

// Update processes input, runs node update hooks, and rebuilds dirty
// overlays. The frame delta is derived from ebiten.TPS.
func (s *Scene) Update() {
	s.update(1.0 / float64(ebiten.TPS()))
}

func (s *Scene) update(dt float64) {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}

	// Refresh world transforms first so hit testing sees this frame's layout.
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	updateWorldTransform(s.overlayRoot, identityTransform, 1.0, false)

	for _, cam := range s.cameras {
		cam.update()
	}
	s.processInput()

	s.nodeBuf = updateNodes(s.root, dt, s.nodeBuf[:0])
	s.nodeBuf = updateNodes(s.overlayRoot, dt, s.nodeBuf[:0])
	s.rebuildOverlays()
}

// Draw renders the main tree through each camera, then the overlay layer in
// screen space, then captures queued screenshots.
func (s *Scene) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	s.screenW, s.screenH = b.Dx(), b.Dy()

	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}

	var stats debugStats
	if len(s.cameras) == 0 {
		// No explicit cameras: use implicit identity camera, full screen.
		s.drawPass(screen, s.root, identityTransform, &stats)
	} else {
		for _, cam := range s.cameras {
			vp := cam.Viewport
			viewportImg := screen.SubImage(image.Rect(
				int(vp.X), int(vp.Y),
				int(vp.X+vp.Width), int(vp.Y+vp.Height),
			)).(*ebiten.Image)
			s.drawPass(viewportImg, s.root, cam.computeViewMatrix(), &stats)
		}
	}

	if len(s.overlays) > 0 {
		s.drawPass(screen, s.overlayRoot, identityTransform, &stats)
	}
	stats.overlayCount = len(s.overlays)
	s.debugLog(stats)

	s.flushScreenshots(screen)
}

// drawPass traverses one tree under a view transform, sorts the commands and
// submits them to target.
func (s *Scene) drawPass(target *ebiten.Image, root *Node, view [6]float64, stats *debugStats) {
	s.commands = s.commands[:0]

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(root, view, identityTransform, 1.0, noClip, 0, &treeOrder)

	if s.debug {
		stats.traverseTime += time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime += time.Since(t0)
		stats.commandCount += len(s.commands)
		t0 = time.Now()
	}

	s.submitBatches(target)

	if s.debug {
		stats.submitTime += time.Since(t0)
	}
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are written to the scene logger at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = s.logger
}
