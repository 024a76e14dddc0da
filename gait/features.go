package gait

import (
	"math"

	"github.com/gaitworks/go-gaitpose"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point represents an x,y coordinate on a joint trajectory
type Point struct {
	X, Y float64
}

// Summary holds descriptive statistics for one gait feature
type Summary struct {
	Mean  float64
	Std   float64
	Max   float64
	Min   float64
	Count int
}

// Features are the biomechanical summary statistics extracted from a pose
// annotated frame sequence.  Distances are in pixels of the keypoint
// coordinate space.
type Features struct {
	// StepLength summarizes the per frame distance between the two
	// ankle keypoints
	StepLength Summary
	// StepHeight summarizes the per frame vertical separation of the
	// ankle keypoints, a proxy for foot clearance
	StepHeight Summary
	// TrunkSway summarizes the frame to frame displacement of the hip
	// center x coordinate
	TrunkSway Summary
	// PathDeviation is the area enclosed between the walked hip
	// trajectory and its straight start to end baseline
	PathDeviation float64
	// FrameCount is the number of input frames
	FrameCount int
	// EstimatedFrames counts frames carrying real estimator keypoints
	// rather than placeholders
	EstimatedFrames int
}

// Extract computes gait features across the frame sequence.  Frames with
// fewer than the minimum joint count are skipped for the features needing
// the missing joints but do not abort extraction.
func Extract(frames []gaitpose.PoseFrame) Features {

	var stepLengths, stepHeights, sways []float64

	prevHipX := 0.0
	havePrev := false
	estimated := 0

	for _, frame := range frames {

		if frame.Origin == gaitpose.OriginEstimated {
			estimated++
		}

		if len(frame.KeyPoints) < gaitpose.MinGaitJoints {
			havePrev = false
			continue
		}

		right := frame.KeyPoints[gaitpose.JointRAnkle]
		left := frame.KeyPoints[gaitpose.JointLAnkle]

		stepLengths = append(stepLengths,
			math.Hypot(float64(left.X-right.X), float64(left.Y-right.Y)))

		stepHeights = append(stepHeights,
			math.Abs(float64(left.Y-right.Y)))

		hipX := hipCenterX(frame)

		if havePrev {
			sways = append(sways, math.Abs(hipX-prevHipX))
		}

		prevHipX = hipX
		havePrev = true
	}

	return Features{
		StepLength:      summarize(stepLengths),
		StepHeight:      summarize(stepHeights),
		TrunkSway:       summarize(sways),
		PathDeviation:   PathDeviation(SmoothedHipTrail(frames)),
		FrameCount:      len(frames),
		EstimatedFrames: estimated,
	}
}

// HipTrail returns the hip center trajectory across frames.  Frames without
// enough keypoints are skipped.
func HipTrail(frames []gaitpose.PoseFrame) []Point {

	trail := make([]Point, 0, len(frames))

	for _, frame := range frames {

		if len(frame.KeyPoints) < gaitpose.MinGaitJoints {
			continue
		}

		trail = append(trail, Point{
			X: hipCenterX(frame),
			Y: hipCenterY(frame),
		})
	}

	return trail
}

// SmoothedHipTrail returns the hip trajectory with default constant
// velocity Kalman smoothing applied to suppress per frame estimation jitter
func SmoothedHipTrail(frames []gaitpose.PoseFrame) []Point {
	return NewTrajectorySmoother(DefaultSmootherParams()).Smooth(HipTrail(frames))
}

// hipCenterX is the mean x coordinate of the two hip keypoints
func hipCenterX(frame gaitpose.PoseFrame) float64 {
	return (float64(frame.KeyPoints[gaitpose.JointRHip].X) +
		float64(frame.KeyPoints[gaitpose.JointLHip].X)) / 2
}

// hipCenterY is the mean y coordinate of the two hip keypoints
func hipCenterY(frame gaitpose.PoseFrame) float64 {
	return (float64(frame.KeyPoints[gaitpose.JointRHip].Y) +
		float64(frame.KeyPoints[gaitpose.JointLHip].Y)) / 2
}

// summarize computes descriptive statistics over the values
func summarize(vals []float64) Summary {

	if len(vals) == 0 {
		return Summary{}
	}

	s := Summary{
		Mean:  stat.Mean(vals, nil),
		Max:   floats.Max(vals),
		Min:   floats.Min(vals),
		Count: len(vals),
	}

	if len(vals) > 1 {
		s.Std = stat.StdDev(vals, nil)
	}

	return s
}
