package pinchzoom

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// submitBatches draws the sorted commands to target in order.
func (s *Scene) submitBatches(target *ebiten.Image) {
	if len(s.commands) == 0 {
		return
	}

	var op ebiten.DrawImageOptions
	for i := range s.commands {
		submitSprite(target, &s.commands[i], &op)
	}
}

// submitSprite draws a single sprite command using DrawImage. Clipped
// commands draw into a sub-image of target, which shares its coordinates.
func submitSprite(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	img := cmd.image
	if img == nil {
		img = whitePixel()
	}

	dst := target
	if cmd.clipped {
		r := cmd.clip.Intersect(target.Bounds())
		if r.Empty() {
			return
		}
		dst = target.SubImage(r).(*ebiten.Image)
	}

	op.GeoM.Reset()
	op.GeoM.Concat(commandGeoM(cmd))

	// Premultiplied color scale.
	op.ColorScale.Reset()
	a := cmd.Color.A
	op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)

	op.Blend = cmd.BlendMode.EbitenBlend()

	dst.DrawImage(img, op)
}

// commandGeoM converts a command's transform into an ebiten.GeoM.
func commandGeoM(cmd *RenderCommand) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, float64(cmd.Transform[0]))
	m.SetElement(1, 0, float64(cmd.Transform[1]))
	m.SetElement(0, 1, float64(cmd.Transform[2]))
	m.SetElement(1, 1, float64(cmd.Transform[3]))
	m.SetElement(0, 2, float64(cmd.Transform[4]))
	m.SetElement(1, 2, float64(cmd.Transform[5]))
	return m
}
