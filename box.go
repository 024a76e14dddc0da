package gaitpose

import "fmt"

// Box defines a bounding box region within a given coordinate space.  The
// coordinate space is implied by context, such as the annotation resolution
// recorded in VideoMeta or the actual decoded video resolution.
type Box struct {
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// Center returns the center point coordinates of the box
func (b Box) Center() (x, y float32) {
	return b.Left + b.Width/2, b.Top + b.Height/2
}

// Validate checks the box describes a usable region
func (b Box) Validate() error {

	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: box has non-positive dimensions %.1fx%.1f",
			ErrInvalidInput, b.Width, b.Height)
	}

	return nil
}

// Rescale converts the box coordinates from one coordinate space to another,
// such as from the annotation resolution to the decoded video resolution.
// When source and destination dimensions match the box is returned unchanged
// to avoid needless floating point drift.  A zero source dimension is
// treated as scale factor 1.0.
func (b Box) Rescale(fromW, fromH, toW, toH float32) Box {

	if fromW == toW && fromH == toH {
		return b
	}

	scaleX := float32(1.0)

	if fromW != 0 {
		scaleX = toW / fromW
	}

	scaleY := float32(1.0)

	if fromH != 0 {
		scaleY = toH / fromH
	}

	return Box{
		Left:   b.Left * scaleX,
		Top:    b.Top * scaleY,
		Width:  b.Width * scaleX,
		Height: b.Height * scaleY,
	}
}
