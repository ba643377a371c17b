package detection

import (
	"sort"

	"gocv.io/x/gocv"
)

//ColorBucketSize is the quantization step used when counting colors (8 levels per channel)
const ColorBucketSize = 32

//CalibrationColors is the number of dominant colors reported while calibrating
const CalibrationColors = 3

//DominantColors returns the n most frequent quantized colors of the frame pixels selected by mask (non-zero).
//Samples are sorted by descending fraction, ties keep the order in which the colors were first met (row-major scan).
//n <= 0 reports every color found. An empty selection returns an empty slice.
func DominantColors(frame gocv.Mat, mask gocv.Mat, n int) []ColorSample {
	res := make([]ColorSample, 0)
	if frame.Empty() || mask.Empty() || frame.Channels() != 3 {
		return res
	}

	pixels := matBytes(frame)
	selected := matBytes(mask)
	if len(selected)*3 != len(pixels) {
		return res
	}

	type bucket struct {
		color RGB
		count int
	}

	counts := make(map[RGB]int)
	order := make([]RGB, 0)
	total := 0

	for i, m := range selected {
		if m == 0 {
			continue
		}
		//frame is BGR
		c := RGB{
			R: quantize(pixels[i*3+2]),
			G: quantize(pixels[i*3+1]),
			B: quantize(pixels[i*3]),
		}
		if _, ok := counts[c]; !ok {
			order = append(order, c)
		}
		counts[c]++
		total++
	}

	if total == 0 {
		return res
	}

	buckets := make([]bucket, 0, len(order))
	for _, c := range order {
		buckets = append(buckets, bucket{color: c, count: counts[c]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	if n <= 0 || n > len(buckets) {
		n = len(buckets)
	}

	for _, b := range buckets[:n] {
		res = append(res, ColorSample{Color: b.color, Fraction: float64(b.count) / float64(total)})
	}

	return res
}

//Calibrate finds the dominant field color of given frame, using every pixel.
//All found samples are handed to reporter (may be nil) before returning.
func Calibrate(frame gocv.Mat, reporter CalibrationReporter) (RGB, []ColorSample, error) {
	if frame.Empty() {
		return RGB{}, nil, ErrNoCalibration
	}

	all := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC1)
	defer all.Close()

	samples := DominantColors(frame, all, CalibrationColors)
	if reporter != nil {
		reporter.ReportCalibration(samples)
	}

	if len(samples) == 0 {
		return RGB{}, samples, ErrNoCalibration
	}

	return samples[0].Color, samples, nil
}

func quantize(v uint8) uint8 {
	return v / ColorBucketSize * ColorBucketSize
}

//matBytes returns a row-major copy of the mat's pixel data
func matBytes(m gocv.Mat) []byte {
	if m.IsContinuous() {
		return m.ToBytes()
	}
	c := m.Clone()
	defer c.Close()
	return c.ToBytes()
}
