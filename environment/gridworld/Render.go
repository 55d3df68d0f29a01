package gridworld

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// CellSize is the width and height in pixels of a rendered cell
const CellSize int = 40

var (
	floorColour = color.RGBA{255, 255, 255, 255}
	lineColour  = color.RGBA{60, 60, 60, 255}
	goalColour  = color.RGBA{102, 204, 102, 255}
	agentColour = color.RGBA{51, 102, 204, 255}
)

// Render draws the grid, goal cells, and the agent. Row 0 is drawn at
// the bottom of the image.
func (g *GridWorld) Render() (image.Image, error) {
	w, h := g.c*CellSize, g.r*CellSize
	size := float64(CellSize)

	dc := gg.NewContext(w, h)
	dc.SetColor(floorColour)
	dc.Clear()

	cell := func(x, y int) (float64, float64) {
		return float64(x) * size, float64(g.r-1-y) * size
	}

	if goal, ok := g.Task.(*Goal); ok {
		dc.SetColor(goalColour)
		for ind := range goal.goals {
			y := ind / g.c
			x := ind - y*g.c
			px, py := cell(x, y)
			dc.DrawRectangle(px, py, size, size)
			dc.Fill()
		}
	}

	dc.SetColor(lineColour)
	dc.SetLineWidth(1)
	for i := 0; i <= g.c; i++ {
		dc.DrawLine(float64(i)*size, 0, float64(i)*size, float64(h))
	}
	for j := 0; j <= g.r; j++ {
		dc.DrawLine(0, float64(j)*size, float64(w), float64(j)*size)
	}
	dc.Stroke()

	x, y := g.Coordinates()
	px, py := cell(x, y)
	dc.SetColor(agentColour)
	dc.DrawCircle(px+size/2, py+size/2, size/3)
	dc.Fill()

	return dc.Image(), nil
}
