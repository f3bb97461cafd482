package pinchzoom

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	ShowFPS   bool
	Resizable bool
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
}

func (g *game) Update() error {
	g.scene.Update()
	if g.scene.testRunner != nil && g.scene.testRunner.Done() && len(g.scene.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scene.SetScreenSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a window and drives scene until the window closes or an attached
// test runner finishes. It blocks.
func Run(scene *Scene, cfg RunConfig) error {
	if scene == nil {
		return fmt.Errorf("run: nil scene")
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	scene.SetScreenSize(cfg.Width, cfg.Height)

	if cfg.ShowFPS {
		scene.InsertOverlay(NewOverlayEntry(func(root *Node) {
			root.AddChild(fpsWidget(scene))
		}))
	}

	if err := ebiten.RunGame(&game{scene: scene}); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
