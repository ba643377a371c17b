package detection

import (
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

//Mode selects how ShapeFilter extracts blobs from a mask
type Mode string

const (
	//ModeComponents labels 8-connected components
	ModeComponents Mode = "components"

	//ModeContours walks outer contours and drops non compact shapes first
	ModeContours Mode = "contours"

	//ModeProjection cuts the mask at empty column runs, the fastest and coarsest of the three
	ModeProjection Mode = "projection"
)

//Valid reports whether m names a known sub algorithm
func (m Mode) Valid() bool {
	return m == ModeComponents || m == ModeContours || m == ModeProjection
}

const (
	//DefaultMinArea is the smallest blob area (pixels) that is not considered noise
	DefaultMinArea = 32

	//DefaultCompactness is the lowest 4*pi*area/perimeter^2 a contour may have before it is erased
	DefaultCompactness = 0.3

	//projectionGap is the widest run of empty columns still inside one projected blob
	projectionGap = 10

	projectionMinWidth  = 15
	projectionMinHeight = 30
)

//column indexes of the stats mat returned by ConnectedComponentsWithStats
const (
	statLeft = iota
	statTop
	statWidth
	statHeight
	statArea
)

//DefaultLimits are the sizes a single player can have in a 640x360 frame
var DefaultLimits = SizeLimits{MinWidth: 1, MaxWidth: 100, MinHeight: 2, MaxHeight: 200}

//ShapeFilter turns a mask into player shaped bounding boxes
type ShapeFilter struct {
	MinArea     float64
	Limits      SizeLimits
	Compactness float64
}

//DefaultShapeFilter returns a ShapeFilter with the default thresholds
func DefaultShapeFilter() ShapeFilter {
	return ShapeFilter{
		MinArea:     DefaultMinArea,
		Limits:      DefaultLimits,
		Compactness: DefaultCompactness,
	}
}

//Filter runs the sub algorithm selected by mode (contours for anything unknown). Next to the boxes it returns
//the mask the boxes were found on: for contours the mask without its low compactness shapes, otherwise a copy
//of mask. The caller closes it.
func (f ShapeFilter) Filter(mask gocv.Mat, mode Mode) ([]BoundingBox, gocv.Mat) {
	switch mode {
	case ModeComponents:
		return f.Components(mask), mask.Clone()
	case ModeProjection:
		return f.Projection(mask), mask.Clone()
	}

	filtered := RemoveLowCompactness(mask, f.Compactness)
	return f.contourBoxes(filtered), filtered
}

//Components returns the boxes of the 8-connected components bigger than MinArea which are at least as tall as wide
//and within Limits
func (f ShapeFilter) Components(mask gocv.Mat) []BoundingBox {
	boxes := make([]BoundingBox, 0)
	if mask.Empty() {
		return boxes
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	//label 0 is the background
	for i := 1; i < n; i++ {
		area := float64(stats.GetIntAt(i, statArea))
		if area <= f.MinArea {
			continue
		}

		box := BoundingBox{
			X:      int(stats.GetIntAt(i, statLeft)),
			Y:      int(stats.GetIntAt(i, statTop)),
			Width:  int(stats.GetIntAt(i, statWidth)),
			Height: int(stats.GetIntAt(i, statHeight)),
		}
		if box.Height >= box.Width && f.Limits.Contains(box.Width, box.Height) {
			boxes = append(boxes, box)
		}
	}

	return boxes
}

//Contours erases the low compactness shapes of the mask and returns the boxes of the remaining outer contours
//bigger than MinArea, strictly taller than wide and within Limits
func (f ShapeFilter) Contours(mask gocv.Mat) []BoundingBox {
	boxes := make([]BoundingBox, 0)
	if mask.Empty() {
		return boxes
	}

	filtered := RemoveLowCompactness(mask, f.Compactness)
	defer filtered.Close()

	return f.contourBoxes(filtered)
}

func (f ShapeFilter) contourBoxes(filtered gocv.Mat) []BoundingBox {
	boxes := make([]BoundingBox, 0)
	if filtered.Empty() {
		return boxes
	}

	contours := gocv.FindContours(filtered, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if gocv.ContourArea(c) <= f.MinArea {
			continue
		}

		box := BoxFromRect(gocv.BoundingRect(c))
		if box.Height > box.Width && f.Limits.Contains(box.Width, box.Height) {
			boxes = append(boxes, box)
		}
	}

	return boxes
}

//Projection splits the mask into runs of set columns, cutting where two consecutive set columns are more than
//10 apart, and boxes the set rows of every run. Runs strictly taller than wide, at least 15 wide and 30 tall are kept. Limits and MinArea do not apply.
func (f ShapeFilter) Projection(mask gocv.Mat) []BoundingBox {
	boxes := make([]BoundingBox, 0)
	if mask.Empty() {
		return boxes
	}

	rows, cols := mask.Rows(), mask.Cols()
	data := matBytes(mask)

	setCols := make([]int, 0)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			if data[y*cols+x] != 0 {
				setCols = append(setCols, x)
				break
			}
		}
	}

	start := 0
	for i := range setCols {
		if i < len(setCols)-1 && setCols[i+1]-setCols[i] <= projectionGap {
			continue
		}

		x0, x1 := setCols[start], setCols[i]
		start = i + 1

		y0, y1 := -1, -1
		for y := 0; y < rows; y++ {
			for x := x0; x <= x1; x++ {
				if data[y*cols+x] != 0 {
					if y0 < 0 {
						y0 = y
					}
					y1 = y
					break
				}
			}
		}
		if y0 < 0 {
			continue
		}

		box := BoundingBox{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1}
		if box.Height > box.Width && box.Width >= projectionMinWidth && box.Height >= projectionMinHeight {
			boxes = append(boxes, box)
		}
	}

	return boxes
}

//RemoveLowCompactness returns a copy of mask where every outer contour whose compactness is below threshold has
//been filled with background. Contours with zero area or zero perimeter are left alone.
func RemoveLowCompactness(mask gocv.Mat, threshold float64) gocv.Mat {
	out := mask.Clone()
	if mask.Empty() {
		return out
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	background := color.RGBA{0, 0, 0, 0}
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		perimeter := gocv.ArcLength(c, true)
		if area == 0 || perimeter == 0 {
			continue
		}

		if Compactness(area, perimeter) < threshold {
			gocv.DrawContours(&out, contours, i, background, -1)
		}
	}

	return out
}

//Compactness is 4*pi*area/perimeter^2: 1 for a circle, close to 0 for thin or jagged shapes.
//Degenerate input gives 0.
func Compactness(area, perimeter float64) float64 {
	if area <= 0 || perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}
