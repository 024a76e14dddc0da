package estimate

import (
	"context"

	"github.com/gaitworks/go-gaitpose"
)

// VideoResult holds the batch estimation output for an entire video, one
// keypoint list per decoded frame in 0-based decode order.  PixelWidth and
// PixelHeight are the dimensions the estimator actually worked at.
type VideoResult struct {
	Frames      [][]gaitpose.KeyPoint
	PixelWidth  int
	PixelHeight int
}

// Estimator is the interface implemented by pose estimation backends.  All
// returned keypoint coordinates are in pixel space of the dimensions the
// estimator actually used, never normalized.
type Estimator interface {
	// EstimateImage returns the pose keypoints for a single image.  A
	// non-nil box may be used by the implementation as a crop assist, in
	// which case coordinates must be re-offset so they remain relative to
	// the full image.
	EstimateImage(ctx context.Context, imgFile string,
		box *gaitpose.Box) ([]gaitpose.KeyPoint, error)

	// EstimateVideo returns keypoints for every frame of a video in one
	// pass.  Returns a gaitpose.ErrAssetUnreadable wrapped error when the
	// video cannot be opened.
	EstimateVideo(ctx context.Context, videoFile string) (*VideoResult, error)

	// CacheFingerprint returns a stable identifier for the estimator
	// configuration, used in cache keys so results invalidate when the
	// configuration changes
	CacheFingerprint() string

	// SupportsBatchVideo reports whether EstimateVideo is implemented.
	// When false callers fall back to per frame image estimation.
	SupportsBatchVideo() bool

	// ModelID names the landmark model convention of the output, such
	// as "body25"
	ModelID() string
}
