package align

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaitworks/go-gaitpose"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// FrameExtractor decodes a single frame from a video file into an image
// file on disk
type FrameExtractor interface {
	// ExtractFrame writes the frame at the 0-based index to a temporary
	// image file and returns its path, the frame pixel dimensions and a
	// cleanup func the caller must run when done with the file
	ExtractFrame(ctx context.Context, videoFile string,
		frameIndex int) (imgFile string, width, height int,
		cleanup func(), err error)
}

// VideoFrameExtractor implements FrameExtractor using gocv.  Each
// extraction writes into a fresh uniquely named temp directory so
// concurrent sequence conversions never share paths.
type VideoFrameExtractor struct{}

// ExtractFrame decodes the frame at the given 0-based index
func (e *VideoFrameExtractor) ExtractFrame(ctx context.Context,
	videoFile string, frameIndex int) (string, int, int, func(), error) {

	if err := ctx.Err(); err != nil {
		return "", 0, 0, nil, err
	}

	if frameIndex < 0 {
		return "", 0, 0, nil, fmt.Errorf("%w: negative frame index %d",
			gaitpose.ErrInvalidInput, frameIndex)
	}

	cap, err := gocv.VideoCaptureFile(videoFile)

	if err != nil {
		return "", 0, 0, nil, fmt.Errorf("%w: cannot open video %s: %v",
			gaitpose.ErrAssetUnreadable, videoFile, err)
	}

	defer cap.Close()

	cap.Set(gocv.VideoCapturePosFrames, float64(frameIndex))

	img := gocv.NewMat()
	defer img.Close()

	if ok := cap.Read(&img); !ok || img.Empty() {
		return "", 0, 0, nil, fmt.Errorf(
			"%w: frame %d not decodable from %s",
			gaitpose.ErrAssetUnreadable, frameIndex, videoFile)
	}

	dir := filepath.Join(os.TempDir(), "gaitpose-"+uuid.NewString())

	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", 0, 0, nil, fmt.Errorf("error creating temp dir: %w", err)
	}

	cleanup := func() {
		_ = os.RemoveAll(dir)
	}

	imgFile := filepath.Join(dir, fmt.Sprintf("frame-%d.png", frameIndex))

	if ok := gocv.IMWrite(imgFile, img); !ok {
		cleanup()
		return "", 0, 0, nil, fmt.Errorf("%w: cannot write frame image %s",
			gaitpose.ErrAssetUnreadable, imgFile)
	}

	return imgFile, img.Cols(), img.Rows(), cleanup, nil
}
