package video

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

//ErrNoFrames is returned when not even the first frame of a video can be read
var ErrNoFrames = errors.New("could not read first frame")

//FrameSource reads the frames of a video file one after the other, resized to a fixed size
type FrameSource struct {
	cap  *gocv.VideoCapture
	raw  gocv.Mat
	size image.Point
	read int
}

//OpenFrameSource opens given video. Frames are resized to width x height; zero keeps the original size.
func OpenFrameSource(path string, width, height int) (*FrameSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "OpenFrameSource: opening '%s'", path)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.Errorf("OpenFrameSource: could not open '%s'", path)
	}

	size := image.Pt(width, height)
	if width <= 0 || height <= 0 {
		size = image.Pt(int(cap.Get(gocv.VideoCaptureFrameWidth)), int(cap.Get(gocv.VideoCaptureFrameHeight)))
	}

	return &FrameSource{cap: cap, raw: gocv.NewMat(), size: size}, nil
}

//Next reads the next frame into frame. It returns false at the end of the stream.
func (s *FrameSource) Next(frame *gocv.Mat) bool {
	if !s.cap.Read(&s.raw) || s.raw.Empty() {
		return false
	}

	if s.raw.Cols() == s.size.X && s.raw.Rows() == s.size.Y {
		s.raw.CopyTo(frame)
	} else {
		gocv.Resize(s.raw, frame, s.size, 0, 0, gocv.InterpolationLinear)
	}
	s.read++
	return true
}

//Size returns the size of the frames handed out by Next
func (s *FrameSource) Size() image.Point {
	return s.size
}

//FPS returns the frame rate of the video
func (s *FrameSource) FPS() float64 {
	return s.cap.Get(gocv.VideoCaptureFPS)
}

//Read returns how many frames were handed out so far
func (s *FrameSource) Read() int {
	return s.read
}

//Close releases the capture and the frame buffer
func (s *FrameSource) Close() error {
	return multierr.Combine(s.cap.Close(), s.raw.Close())
}
