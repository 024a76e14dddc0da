package gait

import (
	"math"
	"testing"
)

func TestPathDeviationStraightLine(t *testing.T) {

	trail := []Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}}

	if area := PathDeviation(trail); area != 0 {
		t.Errorf("straight walk returned area %v", area)
	}
}

func TestPathDeviationTriangleDetour(t *testing.T) {

	// a detour 10px off the baseline over a 20px walk encloses a
	// triangle of area 100
	trail := []Point{{0, 0}, {10, 10}, {20, 0}}

	area := PathDeviation(trail)

	if math.Abs(area-100) > 1 {
		t.Errorf("expected area near 100, got %v", area)
	}
}

func TestPathDeviationBothSides(t *testing.T) {

	// weaving to both sides of the baseline, two triangles of 50 each
	trail := []Point{{0, 0}, {5, 10}, {10, 0}, {15, -10}, {20, 0}}

	area := PathDeviation(trail)

	if math.Abs(area-100) > 1 {
		t.Errorf("expected area near 100, got %v", area)
	}
}

func TestPathDeviationShortTrail(t *testing.T) {

	if area := PathDeviation([]Point{{0, 0}, {10, 10}}); area != 0 {
		t.Errorf("two point trail returned area %v", area)
	}

	if area := PathDeviation(nil); area != 0 {
		t.Errorf("empty trail returned area %v", area)
	}
}
