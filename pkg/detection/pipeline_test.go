package detection

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"gocv.io/x/gocv"
)

var (
	testField = RGB{G: 128}
	testRed   = RGB{R: 200}
	testBlue  = RGB{B: 200}
)

func testTeams() []Team {
	return []Team{
		{ID: 1, Name: "red", Color: testRed, Tolerance: DefaultUniformTolerance},
		{ID: 2, Name: "blue", Color: testBlue, Tolerance: DefaultUniformTolerance},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, errors.Is(cfg.Validate(), ErrInvalidConfig), test.ShouldBeTrue)

	cfg.Teams = testTeams()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	bad := cfg
	bad.SpectatorSlices = 0
	test.That(t, errors.Is(bad.Validate(), ErrInvalidSliceCount), test.ShouldBeTrue)

	bad = cfg
	bad.Mode = "hough"
	test.That(t, errors.Is(bad.Validate(), ErrInvalidConfig), test.ShouldBeTrue)

	for _, d := range []float64{0, -5} {
		bad = cfg
		bad.MergeDistance = d
		test.That(t, errors.Is(bad.Validate(), ErrInvalidConfig), test.ShouldBeTrue)
	}

	bad = cfg
	bad.Mode = ModeProjection
	test.That(t, bad.Validate(), test.ShouldBeNil)

	bad = cfg
	bad.Teams = []Team{{ID: 1, Color: testRed}}
	test.That(t, errors.Is(bad.Validate(), ErrInvalidConfig), test.ShouldBeTrue)

	_, err := NewPipeline(DefaultConfig(), testField, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPipelineDetect(t *testing.T) {
	frame := newFrame(120, 200, testField)
	defer frame.Close()

	//red crowd along the top edge, two red players on the grass
	fillBox(&frame, BoundingBox{X: 0, Y: 0, Width: 200, Height: 10}, testRed.RGBA())
	players := []BoundingBox{
		{X: 30, Y: 40, Width: 16, Height: 40},
		{X: 140, Y: 50, Width: 16, Height: 40},
	}
	for _, p := range players {
		fillBox(&frame, p, testRed.RGBA())
	}

	field, _, err := Calibrate(frame, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, field, test.ShouldResemble, testField)

	for _, mode := range []Mode{ModeContours, ModeComponents} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Teams = testTeams()
			cfg.Mode = mode

			p, err := NewPipeline(cfg, field, nil)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, p.Field(), test.ShouldResemble, testField)

			detections, err := p.Detect(frame)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, detections.ByTeam(2), test.ShouldBeEmpty)

			red := detections.ByTeam(1)
			test.That(t, red, test.ShouldHaveLength, 2)
			for _, want := range players {
				found := false
				for _, b := range red {
					if want.Center().In(b.Rect()) {
						found = true
					}
					//nothing from the crowd band survives
					test.That(t, b.Y, test.ShouldBeGreaterThanOrEqualTo, 10)
				}
				test.That(t, found, test.ShouldBeTrue)
			}
		})
	}
}

func TestPipelineSplitIgnoresJaggedNoise(t *testing.T) {
	frame := newFrame(120, 160, testField)
	defer frame.Close()

	//two players close enough to merge, a jagged red blob standing between them
	players := []BoundingBox{
		{X: 30, Y: 40, Width: 12, Height: 40},
		{X: 72, Y: 40, Width: 12, Height: 40},
	}
	for _, p := range players {
		fillBox(&frame, p, testRed.RGBA())
	}

	comb := newMask(120, 160)
	defer comb.Close()
	drawComb(&comb, image.Pt(46, 40))
	red := newFrame(120, 160, testRed)
	defer red.Close()
	red.CopyToWithMask(&frame, comb)

	cfg := DefaultConfig()
	cfg.Teams = testTeams()
	cfg.Mode = ModeContours
	cfg.CloseKernel = 0 //keep the gaps between the teeth
	cfg.FieldTolerance = 1

	//a field color absent from the frame makes every pixel foreground
	p, err := NewPipeline(cfg, RGB{B: 255}, nil)
	test.That(t, err, test.ShouldBeNil)

	detections, err := p.Detect(frame)
	test.That(t, err, test.ShouldBeNil)

	boxes := detections.ByTeam(1)
	test.That(t, boxes, test.ShouldHaveLength, 2)
	for i, want := range players {
		test.That(t, want.Center().In(boxes[i].Rect()), test.ShouldBeTrue)
	}
}

func TestPipelineEmptyFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Teams = testTeams()
	p, err := NewPipeline(cfg, testField, nil)
	test.That(t, err, test.ShouldBeNil)

	frame := gocv.NewMat()
	defer frame.Close()

	detections, err := p.Detect(frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, detections.Boxes, test.ShouldBeEmpty)
}

func TestPipelineSuspect(t *testing.T) {
	p := &Pipeline{cfg: DefaultConfig()}
	test.That(t, p.suspect(BoundingBox{Width: 12, Height: 30}), test.ShouldBeFalse)
	test.That(t, p.suspect(BoundingBox{Width: 31, Height: 80}), test.ShouldBeTrue)
	test.That(t, p.suspect(BoundingBox{Width: 20, Height: 20}), test.ShouldBeTrue)
}
