package render

import "image/color"

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}

	// posePalette are the colors used for the skeleton/pose
	posePalette = []color.RGBA{
		{R: 255, G: 128, B: 0, A: 255},
		{R: 255, G: 153, B: 51, A: 255},
		{R: 255, G: 178, B: 102, A: 255},
		{R: 230, G: 230, B: 0, A: 255},
		{R: 255, G: 153, B: 255, A: 255},
		{R: 153, G: 204, B: 255, A: 255},
		{R: 255, G: 102, B: 255, A: 255},
		{R: 255, G: 51, B: 255, A: 255},
		{R: 102, G: 178, B: 255, A: 255},
		{R: 51, G: 153, B: 255, A: 255},
		{R: 255, G: 153, B: 153, A: 255},
		{R: 255, G: 102, B: 102, A: 255},
		{R: 255, G: 51, B: 51, A: 255},
		{R: 153, G: 255, B: 153, A: 255},
		{R: 102, G: 255, B: 102, A: 255},
		{R: 51, G: 255, B: 51, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}

	// trailColor is used for the walked trajectory overlay
	trailColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}

	// placeholderColor marks frames carrying synthetic keypoints
	placeholderColor = color.RGBA{R: 96, G: 96, B: 96, A: 255}
)

// jointColor returns the color for a joint circle, grouping head, arm, hip
// and leg joints
func jointColor(joint int) color.RGBA {

	switch {
	case joint == 0 || (joint >= 15 && joint <= 18):
		// head and face
		return posePalette[16]
	case joint >= 1 && joint <= 7:
		// trunk and arms
		return posePalette[9]
	default:
		// hips, legs and feet
		return posePalette[0]
	}
}
