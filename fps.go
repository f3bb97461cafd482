package pinchzoom

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// NewFPSWidget creates a sprite that displays the current FPS and TPS,
// refreshed every ~0.5 seconds.
func NewFPSWidget() *Node {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	img := ebiten.NewImage(100, 32)

	node := NewSprite("fps_widget", img)
	node.RenderLayer = 255

	var lastUpdate float64
	node.OnUpdate = func(dt float64) {
		lastUpdate += dt
		if lastUpdate < 0.5 {
			return
		}
		lastUpdate = 0

		img.Clear()
		img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	return node
}

// fpsWidget returns the scene's FPS widget, creating it on first use so
// overlay rebuilds re-add the same node.
func fpsWidget(s *Scene) *Node {
	if s.fps == nil || s.fps.IsDisposed() {
		s.fps = NewFPSWidget()
		s.fps.X, s.fps.Y = 4, 4
	}
	return s.fps
}
