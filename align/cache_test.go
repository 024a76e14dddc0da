package align

import (
	"math"
	"testing"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/estimate"
)

func TestFrameStoreRoundTrip(t *testing.T) {

	res := &estimate.VideoResult{
		PixelWidth:  1920,
		PixelHeight: 1080,
		Frames: [][]gaitpose.KeyPoint{
			{
				{X: 270.5, Y: 373.25, Score: 0.875},
				{X: 1756, Y: 1055, Score: 1},
			},
		},
	}

	store := packResult(res)

	points, ok := store.keyPoints(0)

	if !ok {
		t.Fatal("frame 0 not found")
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 keypoints, got %d", len(points))
	}

	// fp16 keeps roughly 3 decimal digits, pixel coordinates survive
	// within a fraction of a pixel
	for i, kp := range points {

		orig := res.Frames[0][i]

		if math.Abs(float64(kp.X-orig.X)) > 0.5 ||
			math.Abs(float64(kp.Y-orig.Y)) > 0.5 {
			t.Errorf("keypoint %d drifted: %+v vs %+v", i, kp, orig)
		}

		if math.Abs(float64(kp.Score-orig.Score)) > 0.001 {
			t.Errorf("keypoint %d score drifted: %v vs %v",
				i, kp.Score, orig.Score)
		}

		if kp.SrcWidth != 1920 || kp.SrcHeight != 1080 {
			t.Errorf("keypoint %d missing pixel dimensions: %+v", i, kp)
		}
	}
}

func TestFrameStore4KQuantization(t *testing.T) {

	res := &estimate.VideoResult{
		PixelWidth:  3840,
		PixelHeight: 2160,
		Frames: [][]gaitpose.KeyPoint{
			{
				{X: 3841.5, Y: 2159.25, Score: 0.875},
			},
		},
	}

	store := packResult(res)

	points, ok := store.keyPoints(0)

	if !ok {
		t.Fatal("frame 0 not found")
	}

	// above x=2048 float16 quantizes to 2 pixel steps, coordinates only
	// survive within that bound
	kp := points[0]

	if math.Abs(float64(kp.X)-3841.5) > 2 ||
		math.Abs(float64(kp.Y)-2159.25) > 2 {
		t.Errorf("4K keypoint drifted past the quantization step: %+v", kp)
	}

	if kp.Score != 0.875 {
		t.Errorf("score lost precision: %v", kp.Score)
	}

	if kp.SrcWidth != 3840 || kp.SrcHeight != 2160 {
		t.Errorf("keypoint missing pixel dimensions: %+v", kp)
	}
}

func TestFrameStoreOutOfRange(t *testing.T) {

	store := packResult(&estimate.VideoResult{
		Frames: [][]gaitpose.KeyPoint{{{X: 1, Y: 2, Score: 0.5}}},
	})

	if _, ok := store.keyPoints(1); ok {
		t.Error("index past the decoded range reported in range")
	}

	if _, ok := store.keyPoints(-1); ok {
		t.Error("negative index reported in range")
	}
}

func TestVideoPoseCacheTombstone(t *testing.T) {

	cache := newVideoPoseCache()
	key := cacheKey{localPath: "/cache/X.mp4", modelID: "body25",
		fingerprint: "stub-1"}

	if _, seen := cache.lookup(key); seen {
		t.Error("empty cache reported a seen key")
	}

	cache.store(key, nil)

	store, seen := cache.lookup(key)

	if !seen {
		t.Error("tombstoned key reported unseen")
	}

	if store != nil {
		t.Error("tombstone returned a non-nil store")
	}
}
