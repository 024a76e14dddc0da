package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text labels on an image
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Thickness int
	LineType  gocv.LineType
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Thickness: 1,
		LineType:  gocv.LineAA,
	}
}

// Label draws a text label at the given position with a filled background
// box so it stays readable over video content
func (f Font) Label(img *gocv.Mat, text string, at image.Point) {

	size := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)

	box := image.Rect(at.X-2, at.Y-size.Y-2, at.X+size.X+2, at.Y+4)
	gocv.Rectangle(img, box, Black, -1)

	gocv.PutTextWithParams(img, text, at, f.Face, f.Scale, White,
		f.Thickness, f.LineType, false)
}
