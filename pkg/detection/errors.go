package detection

import "github.com/pkg/errors"

var (
	//ErrInvalidSliceCount is returned when the spectator trimmer is asked for a non-positive number of slices
	ErrInvalidSliceCount = errors.New("slice count must be positive")

	//ErrNoCalibration is returned when the calibration frame yields no dominant color
	ErrNoCalibration = errors.New("no dominant color found in calibration frame")

	//ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("invalid detection configuration")
)
