package gaitpose

import "errors"

var (
	// ErrInvalidInput indicates a malformed annotation row or bounding box.
	// It is never recovered locally and propagates to the caller.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAssetUnreadable indicates a video or image file that cannot be
	// opened or decoded
	ErrAssetUnreadable = errors.New("asset unreadable")

	// ErrEstimation indicates a pose estimator failure for a single
	// image or video
	ErrEstimation = errors.New("pose estimation failed")

	// ErrUnresolvedSource indicates a source reference with no cached
	// local video asset
	ErrUnresolvedSource = errors.New("unresolved video source")

	// ErrModelLoad indicates a pose model that could not be loaded at
	// estimator construction time
	ErrModelLoad = errors.New("model load failed")
)
