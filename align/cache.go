package align

import (
	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/estimate"
	"github.com/x448/float16"
)

// f16Lookup is a precomputed float16 bit pattern to float32 table for
// faster decoding of packed keypoints
var f16Lookup [65536]float32

func init() {
	for i := range f16Lookup {
		f16Lookup[i] = float16.Frombits(uint16(i)).Float32()
	}
}

// cacheKey identifies one batch estimation result within a single sequence
// conversion.  The fingerprint invalidates entries when the estimator
// configuration changes.
type cacheKey struct {
	localPath   string
	modelID     string
	fingerprint string
}

// packedKeyPoint stores one landmark with coordinates and score as float16
// bits.  A multi minute video holds tens of thousands of landmark rows per
// sequence, so halving the footprint matters when sequences are converted
// in parallel.  float16 quantizes coordinates to 1 pixel steps above 1024
// and 2 pixel steps above 2048, so 4K coordinates lose sub pixel accuracy.
// The gait feature thresholds operate on tens of pixels, well above that
// bound.
type packedKeyPoint struct {
	x     uint16
	y     uint16
	score uint16
}

// frameStore holds one video's packed batch keypoints plus the pixel
// dimensions the estimator worked at
type frameStore struct {
	frames      [][]packedKeyPoint
	pixelWidth  int
	pixelHeight int
}

// packResult converts a batch estimation result into its packed form
func packResult(res *estimate.VideoResult) *frameStore {

	s := &frameStore{
		frames:      make([][]packedKeyPoint, len(res.Frames)),
		pixelWidth:  res.PixelWidth,
		pixelHeight: res.PixelHeight,
	}

	for i, points := range res.Frames {

		packed := make([]packedKeyPoint, len(points))

		for j, kp := range points {
			packed[j] = packedKeyPoint{
				x:     float16.Fromfloat32(kp.X).Bits(),
				y:     float16.Fromfloat32(kp.Y).Bits(),
				score: float16.Fromfloat32(kp.Score).Bits(),
			}
		}

		s.frames[i] = packed
	}

	return s
}

// keyPoints decodes the keypoints for the frame at the 0-based index,
// reporting false when the index is outside the decoded frame range
func (s *frameStore) keyPoints(frameIndex int) ([]gaitpose.KeyPoint, bool) {

	if frameIndex < 0 || frameIndex >= len(s.frames) {
		return nil, false
	}

	packed := s.frames[frameIndex]
	points := make([]gaitpose.KeyPoint, len(packed))

	for i, pk := range packed {
		points[i] = gaitpose.KeyPoint{
			X:         f16Lookup[pk.x],
			Y:         f16Lookup[pk.y],
			Score:     f16Lookup[pk.score],
			SrcWidth:  s.pixelWidth,
			SrcHeight: s.pixelHeight,
		}
	}

	return points, true
}

// videoPoseCache is the per conversion arena holding batch estimation
// results.  It is created at ConvertSequence entry and unreachable after
// return, nothing is shared between conversions.  A stored nil frameStore
// is a tombstone marking batch estimation unavailable for that video.
type videoPoseCache struct {
	entries map[cacheKey]*frameStore
}

// newVideoPoseCache returns an empty cache arena
func newVideoPoseCache() *videoPoseCache {
	return &videoPoseCache{
		entries: make(map[cacheKey]*frameStore),
	}
}

// lookup returns the stored entry and whether the key has been seen
func (c *videoPoseCache) lookup(key cacheKey) (*frameStore, bool) {
	store, seen := c.entries[key]
	return store, seen
}

// store records the batch result, or a nil tombstone, for the key
func (c *videoPoseCache) store(key cacheKey, s *frameStore) {
	c.entries[key] = s
}
