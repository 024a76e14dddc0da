package gaitpose

// BODY_25 style positional joint indices.  Keypoint identity is positional,
// not named, so consumers index the keypoint slice with these constants.
const (
	JointRHip   = 8
	JointRAnkle = 10
	JointLHip   = 11
	JointLAnkle = 13

	// MinGaitJoints is the minimum keypoint count a frame needs before the
	// gait feature extractor will use it
	MinGaitJoints = 14
)

// KeyPoint represents a single pose landmark in pixel space.  SrcWidth and
// SrcHeight echo the pixel dimensions of the video or image the coordinates
// are relative to, so downstream consumers can rescale consistently.
type KeyPoint struct {
	X         float32
	Y         float32
	Score     float32
	SrcWidth  int
	SrcHeight int
}

// KeypointOrigin records which producer generated a frame's keypoints
type KeypointOrigin int

const (
	// OriginEstimated marks keypoints produced by a real pose estimator
	OriginEstimated KeypointOrigin = iota
	// OriginPlaceholder marks the deterministic bbox-anchored fallback grid
	OriginPlaceholder
)

// String returns the origin name for logging and reports
func (o KeypointOrigin) String() string {

	if o == OriginEstimated {
		return "estimated"
	}

	return "placeholder"
}

// FrameMeta echoes selected annotation row fields on a pose frame when
// metadata passthrough is requested
type FrameMeta struct {
	SequenceID string
	GaitEvent  string
	CameraView string
	Box        Box
	SourceRef  string
}

// PoseFrame is a single annotated frame with its pose keypoints.  The frame
// number is the original 1-based annotation value, never renumbered.
type PoseFrame struct {
	FrameNumber int
	PersonID    int
	KeyPoints   []KeyPoint
	Origin      KeypointOrigin
	Meta        *FrameMeta
}
