package cartpole

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

const (
	ViewportW int = 600
	ViewportH int = 400
)

var (
	skyColour  = color.RGBA{255, 255, 255, 255}
	cartColour = color.RGBA{0, 0, 0, 255}
	poleColour = color.RGBA{204, 153, 102, 255}
	axleColour = color.RGBA{127, 127, 204, 255}
	railColour = color.RGBA{0, 0, 0, 255}
)

// Render draws the current state of the environment
func (c *Cartpole) Render() (image.Image, error) {
	worldWidth := 2 * PositionBounds
	scale := float64(ViewportW) / worldWidth
	poleLen := scale * (2 * HalfPoleLength)
	cartW, cartH := 50.0, 30.0
	cartY := float64(ViewportH) * 0.6

	state := c.lastStep.Observation
	x, th := state.AtVec(0), state.AtVec(2)
	cartX := x*scale + float64(ViewportW)/2

	dc := gg.NewContext(ViewportW, ViewportH)
	dc.SetColor(skyColour)
	dc.Clear()

	// Rail
	dc.SetColor(railColour)
	dc.SetLineWidth(1)
	dc.DrawLine(0, cartY, float64(ViewportW), cartY)
	dc.Stroke()

	// Cart
	dc.SetColor(cartColour)
	dc.DrawRectangle(cartX-cartW/2, cartY-cartH/2, cartW, cartH)
	dc.Fill()

	// Pole, rotated about the axle. An angle of 0 points straight up.
	dc.Push()
	dc.RotateAbout(th, cartX, cartY-cartH/4)
	dc.SetColor(poleColour)
	dc.DrawRectangle(cartX-5, cartY-cartH/4-poleLen, 10, poleLen)
	dc.Fill()
	dc.Pop()

	dc.SetColor(axleColour)
	dc.DrawCircle(cartX, cartY-cartH/4, 5)
	dc.Fill()

	return dc.Image(), nil
}
