package detection

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	//DefaultFieldTolerance is the per channel tolerance around the calibrated field color
	DefaultFieldTolerance = 60

	//DefaultUniformTolerance is the per channel tolerance around a team's uniform color
	DefaultUniformTolerance = 50

	//DefaultCloseKernel is the square kernel size used to close holes in a team mask
	DefaultCloseKernel = 5

	//fieldBlurKernel removes grass texture before the field color is thresholded
	fieldBlurKernel = 41
)

//ColorRange returns the BGR lower and upper bounds of c +- tolerance, each channel clamped to [0,255]
func ColorRange(c RGB, tolerance int) (gocv.Scalar, gocv.Scalar) {
	lower := RGB{R: clampChannel(int(c.R) - tolerance), G: clampChannel(int(c.G) - tolerance), B: clampChannel(int(c.B) - tolerance)}
	upper := RGB{R: clampChannel(int(c.R) + tolerance), G: clampChannel(int(c.G) + tolerance), B: clampChannel(int(c.B) + tolerance)}
	return lower.Scalar(), upper.Scalar()
}

//UniformMask returns a mask (0/255) of the frame pixels within tolerance of target on every channel
func UniformMask(frame gocv.Mat, target RGB, tolerance int) gocv.Mat {
	lower, upper := ColorRange(target, tolerance)
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(frame, lower, upper, &mask)
	return mask
}

//FieldMask returns a mask of the frame pixels matching the field color.
//The frame is blurred hard first so that grass texture and line markings do not punch holes in the field.
func FieldMask(frame gocv.Mat, field RGB, tolerance int) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(frame, &blurred, image.Pt(fieldBlurKernel, fieldBlurKernel), 0, 0, gocv.BorderDefault)

	return UniformMask(blurred, field, tolerance)
}

//ForegroundMask is the complement of FieldMask: everything that is not grass
func ForegroundMask(frame gocv.Mat, field RGB, tolerance int) gocv.Mat {
	fieldMask := FieldMask(frame, field, tolerance)
	defer fieldMask.Close()

	fg := gocv.NewMat()
	gocv.BitwiseNot(fieldMask, &fg)
	return fg
}

//CombineMasks keeps the pixels set in both masks and closes small holes with a closeKernel sized square.
//closeKernel <= 1 skips the closing.
func CombineMasks(foreground, uniform gocv.Mat, closeKernel int) gocv.Mat {
	combined := gocv.NewMat()
	gocv.BitwiseAnd(foreground, uniform, &combined)
	if closeKernel <= 1 {
		return combined
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(closeKernel, closeKernel))
	defer kernel.Close()

	closed := gocv.NewMat()
	gocv.MorphologyEx(combined, &closed, gocv.MorphClose, kernel)
	combined.Close()
	return closed
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
