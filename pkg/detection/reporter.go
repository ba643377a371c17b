package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

//CalibrationReporter receives the dominant colors found while calibrating.
//It is passed to Calibrate explicitly by whoever wants to watch the calibration.
type CalibrationReporter interface {
	ReportCalibration(samples []ColorSample)
}

//Hex returns the color in "#rrggbb" form
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

//HSV returns hue in degrees [0,360), saturation and value in [0,1]
func (c RGB) HSV() (float64, float64, float64) {
	return c.colorful().Hsv()
}

func (c RGB) colorful() colorful.Color {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return cf
}

//LogReporter writes the calibration result to a logger
type LogReporter struct {
	Logger *zap.SugaredLogger
}

//ReportCalibration implements CalibrationReporter
func (r LogReporter) ReportCalibration(samples []ColorSample) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if len(samples) == 0 {
		logger.Warnw("Calibrate: no dominant colors found")
		return
	}
	for i, s := range samples {
		h, sat, v := s.Color.HSV()
		logger.Infow("Calibrate: dominant color",
			"rank", i+1,
			"rgb", fmt.Sprintf("(%d,%d,%d)", s.Color.R, s.Color.G, s.Color.B),
			"hex", s.Color.Hex(),
			"hsv", fmt.Sprintf("(%.0f,%.2f,%.2f)", h, sat, v),
			"fraction", fmt.Sprintf("%.1f%%", s.Fraction*100),
		)
	}
}

//SwatchReporter renders the calibration colors as a horizontal bar, each color as wide as its fraction.
//The last rendered image is kept in Image; if Path is set the bar is also saved there.
type SwatchReporter struct {
	Path   string
	Width  int
	Height int
	Logger *zap.SugaredLogger

	Image *image.NRGBA
}

//ReportCalibration implements CalibrationReporter
func (r *SwatchReporter) ReportCalibration(samples []ColorSample) {
	r.Image = ColorBar(samples, r.Width, r.Height)
	if r.Path == "" {
		return
	}
	if err := imaging.Save(r.Image, r.Path); err != nil && r.Logger != nil {
		r.Logger.Errorw("SwatchReporter: could not save color bar", "path", r.Path, "error", err)
	}
}

//ColorBar draws samples left to right on a black width x height image (defaults 400x100)
func ColorBar(samples []ColorSample, width, height int) *image.NRGBA {
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 100
	}

	bar := imaging.New(width, height, color.Black)
	startX := 0
	for _, s := range samples {
		w := int(s.Fraction * float64(width))
		if w <= 0 {
			continue
		}
		block := imaging.New(w, height, s.Color.RGBA())
		bar = imaging.Paste(bar, block, image.Pt(startX, 0))
		startX += w
	}

	return bar
}

//MultiReporter fans a calibration out to several reporters
type MultiReporter []CalibrationReporter

//ReportCalibration implements CalibrationReporter
func (m MultiReporter) ReportCalibration(samples []ColorSample) {
	for _, r := range m {
		r.ReportCalibration(samples)
	}
}
