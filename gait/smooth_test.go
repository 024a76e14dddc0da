package gait

import (
	"math"
	"testing"
)

func TestSmoothConstantVelocity(t *testing.T) {

	s := NewTrajectorySmoother(DefaultSmootherParams())

	// a constant velocity trajectory matches the motion model exactly,
	// smoothing should stay close to the measurements
	trail := make([]Point, 10)

	for i := range trail {
		trail[i] = Point{X: float64(i) * 10, Y: 5}
	}

	smoothed := s.Smooth(trail)

	if len(smoothed) != len(trail) {
		t.Fatalf("expected %d points, got %d", len(trail), len(smoothed))
	}

	for i, pt := range smoothed {

		if math.Abs(pt.X-trail[i].X) > 5 {
			t.Errorf("point %d x drifted: %v vs %v", i, pt.X, trail[i].X)
		}

		if math.Abs(pt.Y-5) > 2 {
			t.Errorf("point %d y drifted: %v", i, pt.Y)
		}
	}

	// x remains monotonically increasing
	for i := 1; i < len(smoothed); i++ {
		if smoothed[i].X <= smoothed[i-1].X {
			t.Errorf("x not monotonic at %d: %v <= %v",
				i, smoothed[i].X, smoothed[i-1].X)
		}
	}
}

func TestSmoothReducesJitter(t *testing.T) {

	s := NewTrajectorySmoother(DefaultSmootherParams())

	// alternating +-4px measurement noise around a straight walk
	trail := make([]Point, 20)

	for i := range trail {

		noise := 4.0

		if i%2 == 1 {
			noise = -4.0
		}

		trail[i] = Point{X: float64(i) * 10, Y: 100 + noise}
	}

	smoothed := s.Smooth(trail)

	rawVar := yVariance(trail)
	smoothVar := yVariance(smoothed)

	if smoothVar >= rawVar {
		t.Errorf("smoothing did not reduce jitter: %v >= %v",
			smoothVar, rawVar)
	}
}

func TestSmoothShortTrail(t *testing.T) {

	s := NewTrajectorySmoother(DefaultSmootherParams())

	trail := []Point{{0, 0}, {10, 10}}

	smoothed := s.Smooth(trail)

	if len(smoothed) != 2 || smoothed[0] != trail[0] ||
		smoothed[1] != trail[1] {
		t.Errorf("short trail modified: %v", smoothed)
	}
}

// yVariance computes the variance of y values around their mean
func yVariance(points []Point) float64 {

	mean := 0.0

	for _, pt := range points {
		mean += pt.Y
	}

	mean /= float64(len(points))

	v := 0.0

	for _, pt := range points {
		v += (pt.Y - mean) * (pt.Y - mean)
	}

	return v / float64(len(points))
}
