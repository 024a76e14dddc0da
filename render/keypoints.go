package render

import (
	"image"

	"github.com/gaitworks/go-gaitpose"
	"gocv.io/x/gocv"
)

/* BODY_25 joints
0: Nose          1: Neck          2: Right Shoulder
3: Right Elbow   4: Right Wrist   5: Left Shoulder
6: Left Elbow    7: Left Wrist    8: Right Hip
9: Right Knee   10: Right Ankle  11: Left Hip
12: Left Knee   13: Left Ankle   14: MidHip alt
15: Right Eye   16: Left Eye     17: Right Ear
18: Left Ear    19-24: feet
*/

var (
	// skeleton defines the joint index pairs to draw limb lines between
	skeleton = [][2]int{
		{0, 1},
		{1, 2}, {2, 3}, {3, 4},
		{1, 5}, {5, 6}, {6, 7},
		{1, 8}, {8, 9}, {9, 10},
		{1, 11}, {11, 12}, {12, 13},
		{0, 15}, {0, 16}, {15, 17}, {16, 18},
	}
)

// PoseKeyPoints renders the pose keypoints of a frame over the image.
// Placeholder frames are drawn in a muted color so rendered output shows
// which frames carry synthetic keypoints.
func PoseKeyPoints(img *gocv.Mat, frame gaitpose.PoseFrame, lineThickness int) {

	points := frame.KeyPoints

	// draw skeleton limb lines
	for i, limb := range skeleton {

		if limb[0] >= len(points) || limb[1] >= len(points) {
			continue
		}

		a := points[limb[0]]
		b := points[limb[1]]

		clr := posePalette[i%len(posePalette)]

		if frame.Origin == gaitpose.OriginPlaceholder {
			clr = placeholderColor
		}

		gocv.Line(img, image.Pt(int(a.X), int(a.Y)),
			image.Pt(int(b.X), int(b.Y)), clr, lineThickness)
	}

	// draw circles at the joints
	for j, kp := range points {

		clr := jointColor(j)

		if frame.Origin == gaitpose.OriginPlaceholder {
			clr = placeholderColor
		}

		gocv.Circle(img, image.Pt(int(kp.X), int(kp.Y)), 3, clr, -1)
	}
}
