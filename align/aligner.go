package align

import (
	"context"
	"fmt"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/estimate"
	"github.com/rs/zerolog/log"
)

// Params configures sequence conversion
type Params struct {
	// PersonID is assigned to every output frame, single person
	// assumption
	PersonID int
	// Placeholder configures the synthetic keypoints substituted when
	// real estimation is unavailable
	Placeholder estimate.PlaceholderParams
	// IncludeMeta echoes annotation row metadata on each output frame
	IncludeMeta bool
}

// DefaultParams returns conversion parameters for a 25 keypoint landmark
// model with person id 0
func DefaultParams() Params {
	return Params{
		PersonID:    0,
		Placeholder: estimate.DefaultPlaceholderParams(),
		IncludeMeta: false,
	}
}

// SequencePoseAligner converts one sequence's ordered annotation rows into
// pose annotated frames with correct coordinate alignment and at most one
// batch pose inference per distinct video per sequence.
//
// Rows are never dropped.  Rows without a usable estimator, source
// reference or resolved asset receive deterministic placeholder keypoints,
// and any estimation failure local to one row degrades that row to
// placeholder keypoints rather than aborting the sequence.  Each output
// frame records which producer generated its keypoints for downstream
// data quality auditing.
type SequencePoseAligner struct {
	// Params are the conversion configuration parameters
	Params Params
	// Extractor decodes single frames for the per frame estimation
	// fallback path, replaceable for testing
	Extractor FrameExtractor

	placeholder *estimate.Placeholder
}

// NewSequencePoseAligner returns an instance of the SequencePoseAligner
func NewSequencePoseAligner(p Params) *SequencePoseAligner {
	return &SequencePoseAligner{
		Params:      p,
		Extractor:   &VideoFrameExtractor{},
		placeholder: estimate.NewPlaceholder(p.Placeholder),
	}
}

// ConvertSequence converts all rows belonging to one sequence, in input
// order, into pose annotated frames.  The estimator may be nil, in which
// case every row receives placeholder keypoints.  Conversion is abortable
// between rows through the context, returning the frames assembled so far
// alongside the context error.
//
// Only malformed input structure propagates as an error, estimator and
// video failures degrade per row and never abort the sequence.
func (a *SequencePoseAligner) ConvertSequence(ctx context.Context,
	rows []gaitpose.AnnotationRow, est estimate.Estimator,
	resolver Resolver) ([]gaitpose.PoseFrame, error) {

	if len(rows) == 0 {
		return nil, nil
	}

	// malformed rows are a programmer error class, reject the sequence
	// up front before any estimation work
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	// resolve each distinct source reference once per sequence, not once
	// per row.  An unresolved reference is recorded as a nil asset so
	// rows referencing it take the placeholder path.
	resolved := make(map[string]*Asset)

	if est != nil && resolver != nil {

		for i := range rows {

			ref := rows[i].SourceRef

			if ref == "" {
				continue
			}

			if _, seen := resolved[ref]; seen {
				continue
			}

			if asset, ok := resolver.Resolve(ref); ok {
				resolved[ref] = asset
				continue
			}

			resolved[ref] = nil

			log.Warn().
				Str("sequence", rows[i].SequenceID).
				Str("source", ref).
				Msg("video source not cached, affected rows get placeholder keypoints")
		}
	}

	cache := newVideoPoseCache()
	frames := make([]gaitpose.PoseFrame, 0, len(rows))

	for i := range rows {

		// checkpointable between rows
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		row := &rows[i]
		points, origin := a.rowKeyPoints(ctx, row, est, resolved, cache)
		frames = append(frames, a.assemble(row, points, origin))
	}

	return frames, nil
}

// rowKeyPoints produces the keypoints for one row, degrading to the
// placeholder synthesizer on any row local failure
func (a *SequencePoseAligner) rowKeyPoints(ctx context.Context,
	row *gaitpose.AnnotationRow, est estimate.Estimator,
	resolved map[string]*Asset,
	cache *videoPoseCache) ([]gaitpose.KeyPoint, gaitpose.KeypointOrigin) {

	asset := resolved[row.SourceRef]

	if est == nil || row.SourceRef == "" || asset == nil {
		return a.placeholderFor(row), gaitpose.OriginPlaceholder
	}

	frameIndex := frameIndexFor(row.FrameNumber)

	key := cacheKey{
		localPath:   asset.LocalPath,
		modelID:     est.ModelID(),
		fingerprint: est.CacheFingerprint(),
	}

	store, seen := cache.lookup(key)

	if !seen {
		store = a.batchEstimate(ctx, est, asset, row.SequenceID)
		cache.store(key, store)
	}

	if store != nil {
		if points, ok := store.keyPoints(frameIndex); ok {
			return points, gaitpose.OriginEstimated
		}
	}

	// batch unavailable or frame index outside the decoded range, fall
	// back to extracting and estimating the single frame
	points, err := a.estimateSingleFrame(ctx, row, est, asset, frameIndex)

	if err != nil {
		log.Warn().
			Err(err).
			Str("sequence", row.SequenceID).
			Int("frame", row.FrameNumber).
			Msg("per frame estimation failed, substituting placeholder keypoints")

		return a.placeholderFor(row), gaitpose.OriginPlaceholder
	}

	return points, gaitpose.OriginEstimated
}

// batchEstimate runs whole video estimation once for an asset, returning
// nil when batch mode is unsupported or the estimation fails
func (a *SequencePoseAligner) batchEstimate(ctx context.Context,
	est estimate.Estimator, asset *Asset, sequenceID string) *frameStore {

	if !est.SupportsBatchVideo() {
		return nil
	}

	res, err := est.EstimateVideo(ctx, asset.LocalPath)

	if err != nil {
		log.Warn().
			Err(err).
			Str("sequence", sequenceID).
			Str("video", asset.LocalPath).
			Msg("batch video estimation failed, falling back to per frame extraction")

		return nil
	}

	return packResult(res)
}

// estimateSingleFrame extracts the frame at the 0-based index and runs
// image estimation on it, passing the bounding box through for crop assist
// after rescaling it from annotation space to the decoded frame resolution
func (a *SequencePoseAligner) estimateSingleFrame(ctx context.Context,
	row *gaitpose.AnnotationRow, est estimate.Estimator, asset *Asset,
	frameIndex int) ([]gaitpose.KeyPoint, error) {

	imgFile, width, height, cleanup, err := a.Extractor.ExtractFrame(ctx,
		asset.LocalPath, frameIndex)

	if err != nil {
		return nil, err
	}

	defer cleanup()

	box := row.Box.Rescale(
		float32(row.VideoMeta.Width), float32(row.VideoMeta.Height),
		float32(width), float32(height))

	return est.EstimateImage(ctx, imgFile, &box)
}

// placeholderFor generates the deterministic fallback keypoints centered on
// the row's bounding box, in annotation space
func (a *SequencePoseAligner) placeholderFor(
	row *gaitpose.AnnotationRow) []gaitpose.KeyPoint {

	cx, cy := row.Box.Center()

	return a.placeholder.Generate(cx, cy, row.VideoMeta.Width,
		row.VideoMeta.Height)
}

// assemble builds the output frame for a row.  The original 1-based frame
// number is kept unmodified.
func (a *SequencePoseAligner) assemble(row *gaitpose.AnnotationRow,
	points []gaitpose.KeyPoint,
	origin gaitpose.KeypointOrigin) gaitpose.PoseFrame {

	frame := gaitpose.PoseFrame{
		FrameNumber: row.FrameNumber,
		PersonID:    a.Params.PersonID,
		KeyPoints:   points,
		Origin:      origin,
	}

	if a.Params.IncludeMeta {
		frame.Meta = &gaitpose.FrameMeta{
			SequenceID: row.SequenceID,
			GaitEvent:  row.GaitEvent,
			CameraView: row.CameraView,
			Box:        row.Box,
			SourceRef:  row.SourceRef,
		}
	}

	return frame
}

// frameIndexFor converts a 1-based annotation frame number to the 0-based
// decode index.  Values already below 1 pass through unchanged.
func frameIndexFor(frameNumber int) int {

	if frameNumber >= 1 {
		return frameNumber - 1
	}

	return frameNumber
}
