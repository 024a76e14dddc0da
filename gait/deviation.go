package gait

import (
	"math"

	clipper "github.com/ctessum/go.clipper"
)

// deviationScale converts float pixel coordinates to the fixed point
// integer space the clipper library works in
const deviationScale = 100.0

// PathDeviation returns the area in square pixels enclosed between the
// walked trajectory and the straight line joining its endpoints.  A
// perfectly straight walk returns zero, weaving returns the total enclosed
// area regardless of which side of the baseline it falls on.
func PathDeviation(trail []Point) float64 {

	if len(trail) < 3 {
		return 0
	}

	// the trajectory followed by the straight return leg forms a closed
	// polygon, possibly self intersecting when the path crosses its own
	// baseline
	var path clipper.Path

	for _, pt := range trail {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(math.Round(pt.X * deviationScale)),
			Y: clipper.CInt(math.Round(pt.Y * deviationScale)),
		})
	}

	c := clipper.NewClipper(clipper.IoStrictlySimple)
	c.AddPath(path, clipper.PtSubject, true)

	// union splits a self intersecting outline into simple polygons
	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftEvenOdd,
		clipper.PftEvenOdd)

	if !ok {
		return 0
	}

	area := 0.0

	for _, poly := range solution {
		area += math.Abs(clipper.Area(poly))
	}

	return area / (deviationScale * deviationScale)
}
