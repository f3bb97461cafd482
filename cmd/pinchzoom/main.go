// Command pinchzoom opens a window with a zoomable checkerboard. Zoom
// settings come from an optional YAML file; an optional test script drives
// the window with synthetic input and exits when done.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/pinchzoom"
)

type options struct {
	config  string
	script  string
	width   int
	height  int
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger, lerr := newLogger(false)
		if lerr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Error("pinchzoom failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "pinchzoom",
		Short:         "Pinch-to-zoom overlay demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "YAML zoom settings file")
	f.StringVarP(&opts.script, "script", "s", "", "YAML test script to run")
	f.IntVar(&opts.width, "width", 640, "window width")
	f.IntVar(&opts.height, "height", 480, "window height")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(opts options) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	zcfg := pinchzoom.DefaultZoomConfig()
	if opts.config != "" {
		data, err := os.ReadFile(opts.config)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		settings, err := pinchzoom.LoadZoomSettings(data)
		if err != nil {
			return err
		}
		if err := settings.Apply(&zcfg); err != nil {
			return err
		}
	}

	scene := pinchzoom.NewScene()
	scene.SetLogger(logger)
	scene.SetDebugMode(opts.verbose)
	scene.ClearColor = pinchzoom.Color{R: 0.1, G: 0.1, B: 0.12, A: 1}

	if opts.script != "" {
		data, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := pinchzoom.LoadTestScript(data)
		if err != nil {
			return err
		}
		scene.SetTestRunner(runner)
	}

	board := checkerboard(8, 32)
	zcfg.Base = board
	zcfg.Logger = logger
	zcfg.OnMultiTouchEngage = func() { logger.Debug("multi-touch engaged") }
	zcfg.OnMultiTouchRelease = func() { logger.Debug("multi-touch released") }
	zoom, err := pinchzoom.NewZoomOverlay(scene, zcfg)
	if err != nil {
		return err
	}
	size := zoom.Viewer().Size()
	zoom.Node().SetPosition((float64(opts.width)-size.X)/2, (float64(opts.height)-size.Y)/2)
	scene.Root().AddChild(zoom.Node())

	logger.Info("starting",
		zap.Int("width", opts.width), zap.Int("height", opts.height),
		zap.Float64("maxScale", zcfg.MaxScale), zap.Bool("overlay", zcfg.UseOverlay))

	return pinchzoom.Run(scene, pinchzoom.RunConfig{
		Title:     "pinchzoom",
		Width:     opts.width,
		Height:    opts.height,
		ShowFPS:   opts.verbose,
		Resizable: true,
	})
}

// checkerboard builds an n×n board of cell-sized squares.
func checkerboard(n int, cell float64) *pinchzoom.Node {
	light := pinchzoom.Color{R: 0.85, G: 0.85, B: 0.8, A: 1}
	dark := pinchzoom.Color{R: 0.25, G: 0.3, B: 0.35, A: 1}
	board := pinchzoom.NewContainer("board")
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := light
			if (x+y)%2 == 1 {
				c = dark
			}
			sq := pinchzoom.NewRect(fmt.Sprintf("cell_%d_%d", x, y), cell, cell, c)
			sq.SetPosition(float64(x)*cell, float64(y)*cell)
			board.AddChild(sq)
		}
	}
	return board
}
