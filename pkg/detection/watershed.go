package detection

import (
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"
)

const (
	//DefaultMinConnectionWidth is the narrowest neck (pixels) that still joins two blobs into one player
	DefaultMinConnectionWidth = 2

	//DefaultSuspectWidth is the merged box width above which the pipeline tries to split the box
	DefaultSuspectWidth = 30

	//peakRatio of the distance map maximum above which a pixel becomes a seed candidate
	peakRatio = 0.1

	//seed labels start at 2: 1 marks foreground no seed reached, 0 is unknown/background
	unseededLabel = 1
)

//DefaultSplitLimits are the per player sizes accepted after a split
var DefaultSplitLimits = SizeLimits{MinWidth: 5, MaxWidth: 100, MinHeight: 10, MaxHeight: 200}

//Splitter separates touching players inside one blob with a marker based watershed
type Splitter struct {
	MinConnectionWidth int
	MinArea            int
	Limits             SizeLimits
}

//DefaultSplitter returns a Splitter with the default thresholds
func DefaultSplitter() Splitter {
	return Splitter{
		MinConnectionWidth: DefaultMinConnectionWidth,
		MinArea:            DefaultMinArea,
		Limits:             DefaultSplitLimits,
	}
}

//labelArena holds one int32 label per pixel, row-major. Label 0 is background or a watershed boundary.
type labelArena struct {
	rows, cols int
	labels     []int32
}

func newLabelArena(m gocv.Mat) *labelArena {
	a := &labelArena{rows: m.Rows(), cols: m.Cols(), labels: make([]int32, m.Rows()*m.Cols())}
	for y := 0; y < a.rows; y++ {
		for x := 0; x < a.cols; x++ {
			a.labels[y*a.cols+x] = m.GetIntAt(y, x)
		}
	}
	return a
}

func (a *labelArena) toMat() gocv.Mat {
	m := gocv.NewMatWithSize(a.rows, a.cols, gocv.MatTypeCV32SC1)
	for y := 0; y < a.rows; y++ {
		for x := 0; x < a.cols; x++ {
			m.SetIntAt(y, x, a.labels[y*a.cols+x])
		}
	}
	return m
}

//keep resets every label outside the foreground bytes (and every boundary) to 0
func (a *labelArena) keep(foreground []byte) {
	for i, l := range a.labels {
		if foreground[i] == 0 || l < 0 {
			a.labels[i] = 0
		}
	}
}

//areas counts the pixels of every label above 0
func (a *labelArena) areas() map[int32]int {
	res := make(map[int32]int)
	for _, l := range a.labels {
		if l > 0 {
			res[l]++
		}
	}
	return res
}

//mask returns a 0/255 mask of the pixels carrying label
func (a *labelArena) mask(label int32) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), a.rows, a.cols, gocv.MatTypeCV8UC1)
	for i, l := range a.labels {
		if l == label {
			m.SetUCharAt(i/a.cols, i%a.cols, 255)
		}
	}
	return m
}

//NarrowBridgeFilter cuts connections thinner than minWidth: opening with a max(3, minWidth/2) ellipse, two 3x3
//dilations to win back the eroded outline, then AND with the original so nothing grows past the true foreground.
func NarrowBridgeFilter(mask gocv.Mat, minWidth int) gocv.Mat {
	kernelSize := minWidth / 2
	if kernelSize < 3 {
		kernelSize = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(mask, &opened, gocv.MorphOpen, kernel)

	restoreKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer restoreKernel.Close()

	restored := gocv.NewMat()
	defer restored.Close()
	gocv.Dilate(opened, &restored, restoreKernel)
	gocv.Dilate(restored, &restored, restoreKernel)

	res := gocv.NewMat()
	gocv.BitwiseAnd(mask, restored, &res)
	return res
}

//Split returns one box per player found in mask. An empty mask gives an empty result.
func (s Splitter) Split(mask gocv.Mat) []BoundingBox {
	boxes := make([]BoundingBox, 0)
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		return boxes
	}

	//watershed overwrites the outermost pixels with boundaries, keep real foreground off the edge
	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(mask, &padded, 1, 1, 1, 1, gocv.BorderConstant, color.RGBA{0, 0, 0, 0})

	filtered := NarrowBridgeFilter(padded, s.MinConnectionWidth)
	defer filtered.Close()
	if gocv.CountNonZero(filtered) == 0 {
		return boxes
	}

	markers := s.seedMarkers(filtered)
	defer markers.Close()

	filtered3ch := gocv.NewMat()
	defer filtered3ch.Close()
	gocv.CvtColor(filtered, &filtered3ch, gocv.ColorGrayToBGR)

	gocv.Watershed(filtered3ch, &markers)

	arena := newLabelArena(markers)
	arena.keep(matBytes(filtered))

	for label, area := range arena.areas() {
		if label <= unseededLabel || area < s.MinArea {
			continue
		}
		boxes = append(boxes, s.labelBoxes(arena, label)...)
	}

	for i := range boxes {
		boxes[i] = boxes[i].Offset(-1, -1)
	}
	sortBoxes(boxes)
	return boxes
}

//SplitRegion runs Split on the part of mask covered by box and returns the results in mask coordinates
func (s Splitter) SplitRegion(mask gocv.Mat, box BoundingBox) []BoundingBox {
	r := box.Rect().Intersect(image.Rect(0, 0, mask.Cols(), mask.Rows()))
	if r.Empty() {
		return make([]BoundingBox, 0)
	}

	region := mask.Region(r)
	sub := region.Clone()
	region.Close()
	defer sub.Close()

	boxes := s.Split(sub)
	for i := range boxes {
		boxes[i] = boxes[i].Offset(r.Min.X, r.Min.Y)
	}
	return boxes
}

//seedMarkers builds the watershed markers: distance peaks as labels 2.., remaining foreground as 1 and the
//filtered background as 0 (unknown, left for the flood)
func (s Splitter) seedMarkers(filtered gocv.Mat) gocv.Mat {
	dist := gocv.NewMat()
	defer dist.Close()
	voronoi := gocv.NewMat()
	defer voronoi.Close()
	gocv.DistanceTransform(filtered, &dist, &voronoi, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	smooth := gocv.NewMat()
	defer smooth.Close()
	gocv.GaussianBlur(dist, &smooth, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	_, maxVal, _, _ := gocv.MinMaxLoc(smooth)

	peaks := gocv.NewMat()
	defer peaks.Close()
	gocv.Threshold(smooth, &peaks, peakRatio*maxVal, 255, gocv.ThresholdBinary)

	peaks8 := gocv.NewMat()
	defer peaks8.Close()
	peaks.ConvertTo(&peaks8, gocv.MatTypeCV8U)

	peakKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer peakKernel.Close()
	gocv.Dilate(peaks8, &peaks8, peakKernel)

	components := gocv.NewMat()
	defer components.Close()
	gocv.ConnectedComponents(peaks8, &components)

	arena := newLabelArena(components)
	foreground := matBytes(filtered)
	for i := range arena.labels {
		if foreground[i] == 0 {
			arena.labels[i] = 0
			continue
		}
		arena.labels[i]++
	}

	return arena.toMat()
}

func (s Splitter) labelBoxes(arena *labelArena, label int32) []BoundingBox {
	boxes := make([]BoundingBox, 0)

	m := arena.mask(label)
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		box := BoxFromRect(gocv.BoundingRect(contours.At(i)))
		if box.Height > box.Width && s.Limits.Contains(box.Width, box.Height) {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

//sortBoxes orders boxes left to right, then top to bottom, so results do not depend on map iteration
func sortBoxes(boxes []BoundingBox) {
	sort.Slice(boxes, func(i, j int) bool {
		if boxes[i].X != boxes[j].X {
			return boxes[i].X < boxes[j].X
		}
		return boxes[i].Y < boxes[j].Y
	})
}
