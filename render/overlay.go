package render

import (
	"fmt"
	"image"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/gait"
	"gocv.io/x/gocv"
)

// OverlayParams configures sequence overlay rendering
type OverlayParams struct {
	// LineThickness is the pixel width of skeleton and trajectory lines
	LineThickness int
	// DrawTrail renders the smoothed hip trajectory with its straight
	// baseline
	DrawTrail bool
	// DrawLabel renders the sequence label in the top left corner
	DrawLabel bool
}

// DefaultOverlayParams returns overlay rendering defaults
func DefaultOverlayParams() OverlayParams {
	return OverlayParams{
		LineThickness: 2,
		DrawTrail:     true,
		DrawLabel:     true,
	}
}

// SequenceOverlay renders pose keypoints and the walked trajectory over a
// sequence's source video frames, writing the annotated frames as a new
// video file.  Placeholder frames draw in the muted marker color, making
// the keypoint provenance of each frame visible in the output.
type SequenceOverlay struct {
	Params OverlayParams

	font Font
}

// NewSequenceOverlay returns an instance of the SequenceOverlay renderer
func NewSequenceOverlay(p OverlayParams) *SequenceOverlay {
	return &SequenceOverlay{
		Params: p,
		font:   DefaultFont(),
	}
}

// Render decodes the annotated frames of the sequence from the video file
// and writes them with the pose overlay to outFile.  Keypoints are rescaled
// from their own pixel space to the decoded video resolution before drawing.
// Frames whose index falls outside the video are skipped.
func (s *SequenceOverlay) Render(videoFile, outFile string,
	frames []gaitpose.PoseFrame, label string) error {

	video, err := gocv.VideoCaptureFile(videoFile)

	if err != nil {
		return fmt.Errorf("%w: opening video %s: %v",
			gaitpose.ErrAssetUnreadable, videoFile, err)
	}

	defer video.Close()

	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	if width < 1 || height < 1 {
		return fmt.Errorf("%w: video %s has no frame size",
			gaitpose.ErrAssetUnreadable, videoFile)
	}

	fps := video.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		fps = 30
	}

	writer, err := gocv.VideoWriterFile(outFile, "mp4v", fps, width,
		height, true)

	if err != nil {
		return fmt.Errorf("error creating overlay video %s: %w", outFile, err)
	}

	defer writer.Close()

	scaled := make([]gaitpose.PoseFrame, len(frames))

	for i, frame := range frames {
		scaled[i] = scaleFrame(frame, width, height)
	}

	trail := gait.SmoothedHipTrail(scaled)

	img := gocv.NewMat()
	defer img.Close()

	for _, frame := range scaled {

		idx := frame.FrameNumber

		if idx >= 1 {
			idx--
		}

		video.Set(gocv.VideoCapturePosFrames, float64(idx))

		if ok := video.Read(&img); !ok || img.Empty() {
			continue
		}

		PoseKeyPoints(&img, frame, s.Params.LineThickness)

		if s.Params.DrawTrail {
			Trajectory(&img, trail, s.Params.LineThickness)
		}

		if s.Params.DrawLabel && label != "" {
			s.font.Label(&img, label, image.Pt(10, 24))
		}

		if err := writer.Write(img); err != nil {
			return fmt.Errorf("error writing overlay frame: %w", err)
		}
	}

	return nil
}

// scaleFrame maps the frame's keypoints from their source pixel space to the
// decoded video resolution.  Keypoints without known source dimensions pass
// through unchanged.
func scaleFrame(frame gaitpose.PoseFrame, width, height int) gaitpose.PoseFrame {

	out := frame
	out.KeyPoints = make([]gaitpose.KeyPoint, len(frame.KeyPoints))

	for i, kp := range frame.KeyPoints {

		if kp.SrcWidth > 0 && kp.SrcHeight > 0 &&
			(kp.SrcWidth != width || kp.SrcHeight != height) {

			kp.X = kp.X * float32(width) / float32(kp.SrcWidth)
			kp.Y = kp.Y * float32(height) / float32(kp.SrcHeight)
			kp.SrcWidth = width
			kp.SrcHeight = height
		}

		out.KeyPoints[i] = kp
	}

	return out
}
