// Package pinchzoom adds pinch-to-zoom to elements of an [Ebitengine] scene
// graph. While the user pinches, a magnified copy of the element is drawn in
// an overlay layer above everything else, over a dimmed backdrop. On release
// the zoom animates back to identity and the overlay is removed.
//
// # Quick start
//
//	scene := pinchzoom.NewScene()
//	photo := pinchzoom.NewSprite("photo", img)
//
//	cfg := pinchzoom.DefaultZoomConfig()
//	cfg.Base = photo
//	cfg.MaxScale = 3
//	zoom, err := pinchzoom.NewZoomOverlay(scene, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	zoom.Node().SetPosition(40, 40)
//	scene.Root().AddChild(zoom.Node())
//
//	pinchzoom.Run(scene, pinchzoom.RunConfig{Title: "Zoom", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Scene.Root]. Children inherit their parent's transform and alpha.
// [NewSprite] draws an image, [NewRect] a solid colour, [NewMirror]
// redraws another subtree in place, and [NewContainer] groups.
//
// # Gestures
//
// Mouse and touch pointers are hit-tested against Interactable nodes with a
// [HitRect] or [HitCircle]. Pointer callbacks bubble from the hit node to
// the root. Two or more held pointers, or one pointer dragged past the dead
// zone, form a scale gesture delivered to the nearest node with gesture
// callbacks via [GestureContext].
//
// [Viewer] turns gestures into a clamped pan/zoom [Affine] on a shared
// [TransformController]. [ZoomOverlay] builds on Viewer and the overlay
// layer ([Scene.InsertOverlay], [OverlayEntry]).
//
// # Configuration
//
// [ZoomConfig] holds the tuning knobs. [LoadZoomSettings] reads the
// serialisable subset from YAML.
//
// # Testing
//
// [Scene.InjectPinch], [Scene.InjectTouches] and the mouse injectors feed
// synthetic input through the same path as real devices. [LoadTestScript]
// sequences them with screenshots for visual checks.
//
// [Ebitengine]: https://ebitengine.org
package pinchzoom
