package render

import (
	"image"

	"github.com/gaitworks/go-gaitpose/gait"
	"gocv.io/x/gocv"
)

// Trajectory renders the walked trajectory as a polyline over the image,
// with the straight start to end baseline drawn beneath it for comparison
func Trajectory(img *gocv.Mat, trail []gait.Point, lineThickness int) {

	if len(trail) < 2 {
		return
	}

	first := image.Pt(int(trail[0].X), int(trail[0].Y))
	last := image.Pt(int(trail[len(trail)-1].X), int(trail[len(trail)-1].Y))

	gocv.Line(img, first, last, placeholderColor, lineThickness)

	for i := 1; i < len(trail); i++ {
		gocv.Line(img,
			image.Pt(int(trail[i-1].X), int(trail[i-1].Y)),
			image.Pt(int(trail[i].X), int(trail[i].Y)),
			trailColor, lineThickness)
	}
}
