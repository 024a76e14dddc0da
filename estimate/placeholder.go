package estimate

import (
	"math"

	"github.com/gaitworks/go-gaitpose"
)

// PlaceholderParams defines the parameters used to synthesize placeholder
// keypoints
type PlaceholderParams struct {
	// Count is the number of keypoints to generate.  It must match the
	// keypoint count of the landmark model the rest of the pipeline is
	// configured for, since consumers do not branch on keypoint origin.
	Count int
	// Spacing is the pixel distance between grid positions
	Spacing float32
	// Confidence is the score assigned to every generated keypoint,
	// clamped to the range 0.0 to 1.0
	Confidence float32
}

// DefaultPlaceholderParams returns placeholder parameters matching a
// 25 keypoint landmark model with a low confidence marker score
func DefaultPlaceholderParams() PlaceholderParams {
	return PlaceholderParams{
		Count:      25,
		Spacing:    10,
		Confidence: 0.1,
	}
}

// Placeholder deterministically synthesizes a fixed grid of keypoints
// centered on a bounding box.  It stands in for a real estimator when none
// is configured or when estimation fails for a row, keeping downstream
// feature extraction and rendering paths exercisable.
type Placeholder struct {
	Params PlaceholderParams
}

// NewPlaceholder returns an instance of the Placeholder synthesizer
func NewPlaceholder(p PlaceholderParams) *Placeholder {
	return &Placeholder{
		Params: p,
	}
}

// Generate returns Params.Count keypoints laid out as a square grid centered
// on the given point.  srcW and srcH are echoed on each keypoint as the
// pixel dimensions of the coordinate space the center point belongs to.
// Output is fully determined by the inputs.
func (p *Placeholder) Generate(cx, cy float32, srcW, srcH int) []gaitpose.KeyPoint {

	gridSize := int(math.Floor(math.Sqrt(float64(p.Params.Count))))

	if gridSize < 1 {
		gridSize = 1
	}

	score := clampScore(p.Params.Confidence)

	points := make([]gaitpose.KeyPoint, 0, p.Params.Count)

	for i := 0; i < p.Params.Count; i++ {

		gridX := i % gridSize
		gridY := i / gridSize

		points = append(points, gaitpose.KeyPoint{
			X:         cx + float32(gridX-gridSize/2)*p.Params.Spacing,
			Y:         cy + float32(gridY-gridSize/2)*p.Params.Spacing,
			Score:     score,
			SrcWidth:  srcW,
			SrcHeight: srcH,
		})
	}

	return points
}

// clampScore restricts a confidence score to the range 0.0 to 1.0
func clampScore(val float32) float32 {

	if val < 0 {
		return 0
	}

	if val > 1 {
		return 1
	}

	return val
}
