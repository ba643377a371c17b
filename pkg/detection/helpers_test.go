package detection

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var white = color.RGBA{255, 255, 255, 255}

//newMask returns an all black single channel mask
func newMask(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
}

//newFrame returns a BGR frame filled with c
func newFrame(rows, cols int, c RGB) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(c.Scalar(), rows, cols, gocv.MatTypeCV8UC3)
}

func fillBox(m *gocv.Mat, b BoundingBox, c color.RGBA) {
	gocv.Rectangle(m, b.Rect(), c, -1)
}

//drawComb draws four 3 pixel wide teeth, 3 pixels apart, standing on a 3 pixel high base: a thick but very
//jagged shape (21x38 at origin)
func drawComb(m *gocv.Mat, origin image.Point) {
	for i := 0; i < 4; i++ {
		fillBox(m, BoundingBox{X: 6 * i, Y: 0, Width: 3, Height: 35}.Offset(origin.X, origin.Y), white)
	}
	fillBox(m, BoundingBox{X: 0, Y: 35, Width: 21, Height: 3}.Offset(origin.X, origin.Y), white)
}

func countIn(m gocv.Mat, r image.Rectangle) int {
	region := m.Region(r)
	defer region.Close()
	return gocv.CountNonZero(region)
}
