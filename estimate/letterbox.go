package estimate

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// blackBorder is the padding color used for letterboxed model input
var blackBorder = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// Letterbox handles scaling a source image to the model input tensor
// dimensions whilst maintaining image aspect
type Letterbox struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewLetterbox returns a letterbox resizer for scaling an image to the
// needed dimensions for the model input tensor size
func NewLetterbox(srcWidth, srcHeight, destWidth, destHeight int) *Letterbox {

	l := &Letterbox{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	l.preCalc()

	return l
}

// Close frees memory allocated during the resize process
func (l *Letterbox) Close() error {
	return l.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (l *Letterbox) preCalc() {

	l.resizeW = l.destWidth
	l.resizeH = l.destHeight

	scaleW := float32(l.destWidth) / float32(l.srcWidth)
	scaleH := float32(l.destHeight) / float32(l.srcHeight)
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		l.resizeH = int(float32(l.srcHeight) * l.scale)
	} else {
		l.resizeW = int(float32(l.srcWidth) * l.scale)
	}

	l.yPad = (l.destHeight - l.resizeH) / 2
	l.xPad = (l.destWidth - l.resizeW) / 2
}

// Apply resizes the input image to the model input dimensions, padding the
// unused border with the given color
func (l *Letterbox) Apply(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	gocv.Resize(src, &l.tempMat, image.Pt(l.resizeW, l.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(l.tempMat, dest, l.yPad, l.destHeight-l.resizeH-l.yPad,
		l.xPad, l.destWidth-l.resizeW-l.xPad, gocv.BorderConstant, color)
}

// Undo converts a point in letterboxed input tensor space back to source
// image pixel space
func (l *Letterbox) Undo(x, y float32) (float32, float32) {
	return (x - float32(l.xPad)) / l.scale, (y - float32(l.yPad)) / l.scale
}

// ScaleFactor returns the scale factor used in the letterbox resize
func (l *Letterbox) ScaleFactor() float32 {
	return l.scale
}
