package align

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/estimate"
)

// stubEstimator implements estimate.Estimator and counts invocations
type stubEstimator struct {
	batch       bool
	batchCalls  int
	videoResult *estimate.VideoResult
	videoErr    error
	imageCalls  int
	imagePoints []gaitpose.KeyPoint
	imageErr    error
	lastBox     *gaitpose.Box
}

func (s *stubEstimator) EstimateImage(ctx context.Context, imgFile string,
	box *gaitpose.Box) ([]gaitpose.KeyPoint, error) {

	s.imageCalls++
	s.lastBox = box

	if s.imageErr != nil {
		return nil, s.imageErr
	}

	return s.imagePoints, nil
}

func (s *stubEstimator) EstimateVideo(ctx context.Context,
	videoFile string) (*estimate.VideoResult, error) {

	s.batchCalls++

	if s.videoErr != nil {
		return nil, s.videoErr
	}

	return s.videoResult, nil
}

func (s *stubEstimator) CacheFingerprint() string { return "stub-1" }
func (s *stubEstimator) SupportsBatchVideo() bool { return s.batch }
func (s *stubEstimator) ModelID() string          { return "body25" }

// stubResolver maps source references to fixed local paths
type stubResolver struct {
	assets map[string]string
}

func (r stubResolver) Resolve(sourceRef string) (*Asset, bool) {

	path, ok := r.assets[sourceRef]

	if !ok {
		return nil, false
	}

	return &Asset{SourceRef: sourceRef, LocalPath: path}, true
}

// stubExtractor pretends to decode frames, failing for one chosen index
type stubExtractor struct {
	calls     int
	failIndex int
	width     int
	height    int
}

func (e *stubExtractor) ExtractFrame(ctx context.Context, videoFile string,
	frameIndex int) (string, int, int, func(), error) {

	e.calls++

	if frameIndex == e.failIndex {
		return "", 0, 0, nil, fmt.Errorf("%w: frame %d not decodable",
			gaitpose.ErrAssetUnreadable, frameIndex)
	}

	return "frame.png", e.width, e.height, func() {}, nil
}

// batchResult builds a VideoResult where frame i carries a single keypoint
// with X equal to the frame index, making index lookups verifiable
func batchResult(frameCount, pixelW, pixelH int) *estimate.VideoResult {

	res := &estimate.VideoResult{
		PixelWidth:  pixelW,
		PixelHeight: pixelH,
	}

	for i := 0; i < frameCount; i++ {
		res.Frames = append(res.Frames, []gaitpose.KeyPoint{
			{X: float32(i), Y: 1, Score: 0.9},
		})
	}

	return res
}

// sequenceRows builds n rows in one sequence sharing the source reference
func sequenceRows(n int, sourceRef string) []gaitpose.AnnotationRow {

	rows := make([]gaitpose.AnnotationRow, 0, n)

	for i := 0; i < n; i++ {
		rows = append(rows, gaitpose.AnnotationRow{
			SequenceID:  "s1",
			FrameNumber: i + 1,
			Box:         gaitpose.Box{Left: 10, Top: 10, Width: 50, Height: 100},
			VideoMeta:   gaitpose.VideoMeta{Width: 1280, Height: 720},
			SourceRef:   sourceRef,
		})
	}

	return rows
}

func TestBatchCalledOncePerVideoPerSequence(t *testing.T) {

	est := &stubEstimator{
		batch:       true,
		videoResult: batchResult(100, 1920, 1080),
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/X": "/cache/X.mp4",
	}}

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(context.Background(),
		sequenceRows(50, "https://youtu.be/X"), est, resolver)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if est.batchCalls != 1 {
		t.Errorf("expected exactly 1 batch call, got %d", est.batchCalls)
	}

	if len(frames) != 50 {
		t.Fatalf("expected 50 frames, got %d", len(frames))
	}

	for i, frame := range frames {

		if frame.Origin != gaitpose.OriginEstimated {
			t.Errorf("frame %d: expected estimated origin, got %v",
				i, frame.Origin)
		}

		// keypoints are annotated with the batch pixel dimensions
		if frame.KeyPoints[0].SrcWidth != 1920 ||
			frame.KeyPoints[0].SrcHeight != 1080 {
			t.Errorf("frame %d: wrong source dimensions %+v",
				i, frame.KeyPoints[0])
		}
	}
}

func TestTwoVideosTwoBatchCalls(t *testing.T) {

	est := &stubEstimator{
		batch:       true,
		videoResult: batchResult(100, 1280, 720),
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/A": "/cache/A.mp4",
		"https://youtu.be/B": "/cache/B.mp4",
	}}

	rows := append(sequenceRows(3, "https://youtu.be/A"),
		sequenceRows(3, "https://youtu.be/B")...)

	aligner := NewSequencePoseAligner(DefaultParams())

	if _, err := aligner.ConvertSequence(context.Background(), rows, est,
		resolver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if est.batchCalls != 2 {
		t.Errorf("expected 2 batch calls, got %d", est.batchCalls)
	}
}

func TestFrameReindexing(t *testing.T) {

	// frame i of the batch result carries X == i, so the keypoint X value
	// reveals which decode index was used
	est := &stubEstimator{
		batch:       true,
		videoResult: batchResult(2000, 1280, 720),
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/X": "/cache/X.mp4",
	}}

	rows := sequenceRows(1, "https://youtu.be/X")
	rows[0].FrameNumber = 1757

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(context.Background(), rows, est,
		resolver)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1-based frame 1757 decodes index 1756
	if frames[0].KeyPoints[0].X != 1756 {
		t.Errorf("frame number 1757: expected decode index 1756, got %v",
			frames[0].KeyPoints[0].X)
	}

	// output keeps the original 1-based frame number
	if frames[0].FrameNumber != 1757 {
		t.Errorf("frame number renumbered to %d", frames[0].FrameNumber)
	}

	rows[0].FrameNumber = 1

	frames, err = aligner.ConvertSequence(context.Background(), rows, est,
		resolver)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if frames[0].KeyPoints[0].X != 0 {
		t.Errorf("frame number 1: expected decode index 0, got %v",
			frames[0].KeyPoints[0].X)
	}
}

func TestNoEstimatorEndToEnd(t *testing.T) {

	rows := []gaitpose.AnnotationRow{{
		SequenceID:  "s1",
		FrameNumber: 1757,
		Box:         gaitpose.Box{Left: 156, Top: 125, Width: 228, Height: 497},
		VideoMeta:   gaitpose.VideoMeta{Width: 1280, Height: 720},
		SourceRef:   "https://youtu.be/X",
	}}

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(context.Background(), rows, nil,
		nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}

	frame := frames[0]

	if frame.FrameNumber != 1757 || frame.PersonID != 0 {
		t.Errorf("unexpected frame identity: %+v", frame)
	}

	if frame.Origin != gaitpose.OriginPlaceholder {
		t.Errorf("expected placeholder origin, got %v", frame.Origin)
	}

	if len(frame.KeyPoints) != 25 {
		t.Fatalf("expected 25 keypoints, got %d", len(frame.KeyPoints))
	}

	// grid centered on the bounding box center (270, 373.5)
	center := frame.KeyPoints[12]

	if center.X != 270 || center.Y != 373.5 {
		t.Errorf("grid center at (%v, %v), expected (270, 373.5)",
			center.X, center.Y)
	}
}

func TestNoRowDroppedOnEmptyReferences(t *testing.T) {

	est := &stubEstimator{batch: true}

	rows := sequenceRows(5, "")

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(context.Background(), rows, est,
		stubResolver{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(frames))
	}

	for i, frame := range frames {
		if frame.Origin != gaitpose.OriginPlaceholder {
			t.Errorf("frame %d: expected placeholder origin", i)
		}
	}

	if est.batchCalls != 0 || est.imageCalls != 0 {
		t.Errorf("estimator invoked for empty references: batch=%d image=%d",
			est.batchCalls, est.imageCalls)
	}
}

func TestUnresolvedSourceGetsPlaceholder(t *testing.T) {

	est := &stubEstimator{batch: true}

	// resolver knows none of the references
	rows := sequenceRows(4, "https://youtu.be/missing")

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(context.Background(), rows, est,
		stubResolver{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// rows are substituted, never silently dropped
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}

	for i, frame := range frames {
		if frame.Origin != gaitpose.OriginPlaceholder {
			t.Errorf("frame %d: expected placeholder origin", i)
		}
	}
}

func TestFaultIsolation(t *testing.T) {

	// batch mode unavailable so every row takes the per frame path, and
	// the extractor fails for decode index 4 (frame number 5) only
	est := &stubEstimator{
		batch: false,
		imagePoints: []gaitpose.KeyPoint{
			{X: 50, Y: 60, Score: 0.8, SrcWidth: 640, SrcHeight: 360},
		},
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/X": "/cache/X.mp4",
	}}

	aligner := NewSequencePoseAligner(DefaultParams())
	aligner.Extractor = &stubExtractor{failIndex: 4, width: 640, height: 360}

	frames, err := aligner.ConvertSequence(context.Background(),
		sequenceRows(10, "https://youtu.be/X"), est, resolver)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(frames))
	}

	for i, frame := range frames {

		expected := gaitpose.OriginEstimated

		if i == 4 {
			expected = gaitpose.OriginPlaceholder
		}

		if frame.Origin != expected {
			t.Errorf("frame %d: expected origin %v, got %v",
				i, expected, frame.Origin)
		}
	}

	// no batch calls were made without batch support
	if est.batchCalls != 0 {
		t.Errorf("unexpected batch calls: %d", est.batchCalls)
	}

	if est.imageCalls != 9 {
		t.Errorf("expected 9 image calls, got %d", est.imageCalls)
	}
}

func TestBoundingBoxRescaledForCrop(t *testing.T) {

	est := &stubEstimator{
		batch: false,
		imagePoints: []gaitpose.KeyPoint{
			{X: 1, Y: 1, Score: 0.5},
		},
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/X": "/cache/X.mp4",
	}}

	aligner := NewSequencePoseAligner(DefaultParams())

	// decoded frames are half the annotation resolution
	aligner.Extractor = &stubExtractor{failIndex: -1, width: 640, height: 360}

	rows := sequenceRows(1, "https://youtu.be/X")
	rows[0].Box = gaitpose.Box{Left: 156, Top: 125, Width: 228, Height: 497}

	if _, err := aligner.ConvertSequence(context.Background(), rows, est,
		resolver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if est.lastBox == nil {
		t.Fatal("estimator received no crop box")
	}

	if est.lastBox.Left != 78 || est.lastBox.Width != 114 {
		t.Errorf("box not rescaled to decoded resolution: %+v", est.lastBox)
	}
}

func TestBatchFailureFallsBackPerFrame(t *testing.T) {

	est := &stubEstimator{
		batch:    true,
		videoErr: fmt.Errorf("%w: corrupt container", gaitpose.ErrAssetUnreadable),
		imagePoints: []gaitpose.KeyPoint{
			{X: 5, Y: 6, Score: 0.7},
		},
	}

	resolver := stubResolver{assets: map[string]string{
		"https://youtu.be/X": "/cache/X.mp4",
	}}

	aligner := NewSequencePoseAligner(DefaultParams())
	aligner.Extractor = &stubExtractor{failIndex: -1, width: 640, height: 360}

	frames, err := aligner.ConvertSequence(context.Background(),
		sequenceRows(3, "https://youtu.be/X"), est, resolver)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the failed batch call is attempted once, then tombstoned
	if est.batchCalls != 1 {
		t.Errorf("expected 1 batch attempt, got %d", est.batchCalls)
	}

	if est.imageCalls != 3 {
		t.Errorf("expected 3 per frame calls, got %d", est.imageCalls)
	}

	for i, frame := range frames {
		if frame.Origin != gaitpose.OriginEstimated {
			t.Errorf("frame %d: expected estimated origin", i)
		}
	}
}

func TestMalformedBoxPropagates(t *testing.T) {

	rows := sequenceRows(2, "")
	rows[1].Box = gaitpose.Box{}

	aligner := NewSequencePoseAligner(DefaultParams())

	_, err := aligner.ConvertSequence(context.Background(), rows, nil, nil)

	if !errors.Is(err, gaitpose.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCancellationBetweenRows(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	aligner := NewSequencePoseAligner(DefaultParams())

	frames, err := aligner.ConvertSequence(ctx, sequenceRows(5, ""), nil, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if len(frames) != 0 {
		t.Errorf("expected no frames after immediate cancel, got %d",
			len(frames))
	}
}
