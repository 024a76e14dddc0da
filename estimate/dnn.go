package estimate

import (
	"context"
	"fmt"
	"image"

	"github.com/gaitworks/go-gaitpose"
	"gocv.io/x/gocv"
)

// Config defines the settings used to construct a Landmarker
type Config struct {
	// ModelPath is the ONNX pose model file to load
	ModelPath string
	// InputSize is the square input tensor dimension of the model
	InputSize int
	// MinConfidence is the landmark score below which keypoint
	// coordinates are still returned but should be treated as unreliable
	// by consumers
	MinConfidence float32
	// ModelID names the landmark ordering convention of the model output
	ModelID string
	// LandmarkCount is the number of landmarks the model regresses
	LandmarkCount int
}

// DefaultConfig returns a Config for a BODY_25 style single person landmark
// model at the given path
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:     modelPath,
		InputSize:     256,
		MinConfidence: 0.3,
		ModelID:       "body25",
		LandmarkCount: 25,
	}
}

// Landmarker implements Estimator using a single person pose landmark model
// run through the gocv DNN module.  The model is expected to regress
// LandmarkCount landmarks as (x, y, score) triplets normalized to the input
// tensor, which are converted back to source pixel space before returning.
type Landmarker struct {
	cfg Config
	net gocv.Net
}

// NewLandmarker loads the configured pose model and returns a Landmarker.
// Construction failure is reported as a gaitpose.ErrModelLoad wrapped error,
// never as a nil estimator.
func NewLandmarker(cfg Config) (*Landmarker, error) {

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured",
			gaitpose.ErrModelLoad)
	}

	if cfg.InputSize <= 0 || cfg.LandmarkCount <= 0 {
		return nil, fmt.Errorf("%w: bad input size or landmark count",
			gaitpose.ErrModelLoad)
	}

	net := gocv.ReadNet(cfg.ModelPath, "")

	if net.Empty() {
		return nil, fmt.Errorf("%w: cannot read model %s",
			gaitpose.ErrModelLoad, cfg.ModelPath)
	}

	return &Landmarker{
		cfg: cfg,
		net: net,
	}, nil
}

// Close frees the loaded network
func (l *Landmarker) Close() error {
	return l.net.Close()
}

// ModelID names the landmark ordering convention of the model output
func (l *Landmarker) ModelID() string {
	return l.cfg.ModelID
}

// SupportsBatchVideo reports batch video estimation is available
func (l *Landmarker) SupportsBatchVideo() bool {
	return true
}

// CacheFingerprint returns a stable identifier for the estimator
// configuration
func (l *Landmarker) CacheFingerprint() string {
	return fmt.Sprintf("%s-%d-%.2f", l.cfg.ModelID, l.cfg.InputSize,
		l.cfg.MinConfidence)
}

// EstimateImage returns the pose keypoints for a single image file.  When a
// bounding box is given the image is cropped to it before inference and the
// returned coordinates are re-offset to remain relative to the full image.
func (l *Landmarker) EstimateImage(ctx context.Context, imgFile string,
	box *gaitpose.Box) ([]gaitpose.KeyPoint, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := gocv.IMRead(imgFile, gocv.IMReadColor)

	if img.Empty() {
		return nil, fmt.Errorf("%w: cannot read image %s",
			gaitpose.ErrAssetUnreadable, imgFile)
	}

	defer img.Close()

	fullW := img.Cols()
	fullH := img.Rows()

	offsetX := float32(0)
	offsetY := float32(0)

	region := img

	if box != nil {

		rect := clampRect(*box, fullW, fullH)

		if rect.Dx() > 0 && rect.Dy() > 0 {
			crop := img.Region(rect)
			defer crop.Close()

			region = crop
			offsetX = float32(rect.Min.X)
			offsetY = float32(rect.Min.Y)
		}
	}

	points, err := l.estimateMat(region)

	if err != nil {
		return nil, err
	}

	// re-offset crop relative coordinates to the full image
	for i := range points {
		points[i].X += offsetX
		points[i].Y += offsetY
		points[i].SrcWidth = fullW
		points[i].SrcHeight = fullH
	}

	return points, nil
}

// EstimateVideo decodes every frame of the video and returns keypoints in
// 0-based decode order
func (l *Landmarker) EstimateVideo(ctx context.Context,
	videoFile string) (*VideoResult, error) {

	cap, err := gocv.VideoCaptureFile(videoFile)

	if err != nil {
		return nil, fmt.Errorf("%w: cannot open video %s: %v",
			gaitpose.ErrAssetUnreadable, videoFile, err)
	}

	defer cap.Close()

	res := &VideoResult{
		PixelWidth:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
		PixelHeight: int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if ok := cap.Read(&frame); !ok || frame.Empty() {
			break
		}

		points, err := l.estimateMat(frame)

		if err != nil {
			return nil, err
		}

		for i := range points {
			points[i].SrcWidth = res.PixelWidth
			points[i].SrcHeight = res.PixelHeight
		}

		res.Frames = append(res.Frames, points)
	}

	return res, nil
}

// estimateMat runs inference on a single Mat and returns keypoints in the
// Mat's own pixel space
func (l *Landmarker) estimateMat(img gocv.Mat) ([]gaitpose.KeyPoint, error) {

	lb := NewLetterbox(img.Cols(), img.Rows(), l.cfg.InputSize,
		l.cfg.InputSize)
	defer lb.Close()

	input := gocv.NewMat()
	defer input.Close()

	lb.Apply(img, &input, blackBorder)

	blob := gocv.BlobFromImage(input, 1.0/255.0,
		image.Pt(l.cfg.InputSize, l.cfg.InputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	l.net.SetInput(blob, "")

	out := l.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("%w: reading model output: %v",
			gaitpose.ErrEstimation, err)
	}

	if len(data) < l.cfg.LandmarkCount*3 {
		return nil, fmt.Errorf("%w: model output has %d values, want %d",
			gaitpose.ErrEstimation, len(data), l.cfg.LandmarkCount*3)
	}

	points := make([]gaitpose.KeyPoint, 0, l.cfg.LandmarkCount)

	for i := 0; i < l.cfg.LandmarkCount; i++ {

		// landmarks are normalized to the input tensor, scale up then
		// undo the letterbox to reach source pixel space
		nx := data[i*3] * float32(l.cfg.InputSize)
		ny := data[i*3+1] * float32(l.cfg.InputSize)

		x, y := lb.Undo(nx, ny)

		points = append(points, gaitpose.KeyPoint{
			X:     x,
			Y:     y,
			Score: clampScore(data[i*3+2]),
		})
	}

	return points, nil
}

// clampRect converts a box to an image.Rectangle clipped to the image bounds
func clampRect(box gaitpose.Box, width, height int) image.Rectangle {

	rect := image.Rect(int(box.Left), int(box.Top),
		int(box.Left+box.Width), int(box.Top+box.Height))

	return rect.Intersect(image.Rect(0, 0, width, height))
}
