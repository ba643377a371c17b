package video

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/spf13/viper"
	"go.viam.com/test"
	"gocv.io/x/gocv"
)

var (
	fieldGreen = detection.RGB{G: 128}
	teamRed    = detection.RGB{R: 200}
	teamBlue   = detection.RGB{B: 200}
)

func testTeams() []detection.Team {
	return []detection.Team{
		{ID: utils.Team1ID, Name: "red", Color: teamRed, Tolerance: detection.DefaultUniformTolerance},
		{ID: utils.Team2ID, Name: "blue", Color: teamBlue, Tolerance: detection.DefaultUniformTolerance},
	}
}

//setDirs points every data directory into a fresh temporary root
func setDirs(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	for _, d := range []string{"source", "temp", "ready", "json"} {
		viper.Set("directory."+d, filepath.Join(root, d))
		test.That(t, os.MkdirAll(filepath.Join(root, d), 0755), test.ShouldBeNil)
	}
	viper.Set("video.prod_format", "mp4")
	viper.Set("video.codec", "MJPG")
	viper.Set("video.width", 160)
	viper.Set("video.height", 96)
	return root
}

func TestPathsFor(t *testing.T) {
	root := setDirs(t)

	p := PathsFor("/uploads/match.day1.mov")
	test.That(t, p.BaseName, test.ShouldEqual, "match.day1")
	test.That(t, p.Source, test.ShouldEqual, "/uploads/match.day1.mov")
	test.That(t, p.TempAvi, test.ShouldEqual, filepath.Join(root, "temp", "match.day1.avi"))
	test.That(t, p.Output, test.ShouldEqual, filepath.Join(root, "ready", "match.day1.mp4"))
	test.That(t, p.Results, test.ShouldEqual, filepath.Join(root, "json", "match.day1.json"))
	test.That(t, p.Swatch, test.ShouldEqual, "")

	viper.Set("calibration.swatch", true)
	test.That(t, PathsFor("match.mp4").Swatch, test.ShouldEqual, filepath.Join(root, "json", "match_calibration.png"))
}

func TestResultsRecord(t *testing.T) {
	p := filepath.Join(t.TempDir(), "match.json")

	r := NewResults("match.mp4", 640, 360, 25)
	r.FieldColor = fieldGreen
	r.Teams = testTeams()
	r.AddFrame(0, detection.FrameDetections{Boxes: []detection.TeamBox{
		{Team: utils.Team1ID, BoundingBox: detection.BoundingBox{X: 1, Y: 2, Width: 10, Height: 30}},
	}})
	r.AddFrame(1, detection.FrameDetections{Boxes: []detection.TeamBox{}})
	test.That(t, r.ID, test.ShouldNotBeEmpty)

	test.That(t, WriteResults(p, r), test.ShouldBeNil)

	raw, err := os.ReadFile(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(raw), test.ShouldContainSubstring, `"players"`)
	test.That(t, string(raw), test.ShouldContainSubstring, `"width": 10`)

	read, err := ReadResults(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.ID, test.ShouldEqual, r.ID)
	test.That(t, read.Frames, test.ShouldHaveLength, 2)
	test.That(t, read.Frames[0].Players[0].Team, test.ShouldEqual, utils.Team1ID)
	test.That(t, read.Frames[0].Players[0].Height, test.ShouldEqual, 30)
	test.That(t, read.FieldColor, test.ShouldResemble, fieldGreen)

	_, err = ReadResults(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAnnotate(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()

	teams := append(testTeams(), detection.Team{ID: 3, Color: detection.RGB{}, Tolerance: 10})
	Annotate(&frame, detection.FrameDetections{Boxes: []detection.TeamBox{
		{Team: utils.Team1ID, BoundingBox: detection.BoundingBox{X: 20, Y: 30, Width: 12, Height: 30}},
		{Team: 3, BoundingBox: detection.BoundingBox{X: 120, Y: 30, Width: 12, Height: 30}},
	}}, teams)

	//box outline in the team color (BGR)
	test.That(t, frame.GetVecbAt(30, 25), test.ShouldResemble, gocv.Vecb{0, 0, 200})
	//black uniforms are drawn in the fallback color
	test.That(t, frame.GetVecbAt(30, 125), test.ShouldResemble, gocv.Vecb{0, 255, 255})
}

func TestOpenFrameSourceMissing(t *testing.T) {
	_, err := OpenFrameSource(filepath.Join(t.TempDir(), "missing.mp4"), 160, 96)
	test.That(t, err, test.ShouldNotBeNil)
}

//matchGreen quantizes to fieldGreen with room for compression noise
var matchGreen = detection.RGB{G: 144}

//writeMatch writes a short MJPG video of two red players walking on grass
func writeMatch(t *testing.T, path string, frames int) {
	t.Helper()
	w, err := gocv.VideoWriterFile(path, "MJPG", 10, 320, 192, true)
	test.That(t, err, test.ShouldBeNil)
	defer w.Close()

	for i := 0; i < frames; i++ {
		frame := gocv.NewMatWithSizeFromScalar(matchGreen.Scalar(), 192, 320, gocv.MatTypeCV8UC3)
		for _, b := range []detection.BoundingBox{
			{X: 60 + 4*i, Y: 80, Width: 24, Height: 64},
			{X: 220 - 4*i, Y: 90, Width: 24, Height: 64},
		} {
			gocv.Rectangle(&frame, b.Rect(), teamRed.RGBA(), -1)
		}
		test.That(t, w.Write(frame), test.ShouldBeNil)
		frame.Close()
	}
}

func TestTag(t *testing.T) {
	root := setDirs(t)
	src := filepath.Join(root, "source", "match.avi")
	writeMatch(t, src, 5)

	cfg := detection.DefaultConfig()
	cfg.Teams = testTeams()

	results, err := Tag(context.Background(), src, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results.Width, test.ShouldEqual, 160)
	test.That(t, results.Height, test.ShouldEqual, 96)
	test.That(t, results.Frames, test.ShouldHaveLength, 5)
	test.That(t, results.FieldColor, test.ShouldResemble, fieldGreen)

	stored, err := ReadResults(filepath.Join(root, "json", "match.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stored.ID, test.ShouldEqual, results.ID)

	//either converted, or kept as avi when ffmpeg is not available
	_, mp4Err := os.Stat(filepath.Join(root, "ready", "match.mp4"))
	_, aviErr := os.Stat(filepath.Join(root, "temp", "match.avi"))
	test.That(t, mp4Err == nil || aviErr == nil, test.ShouldBeTrue)
}

func TestTagCancelled(t *testing.T) {
	root := setDirs(t)
	src := filepath.Join(root, "source", "match.avi")
	writeMatch(t, src, 3)

	cfg := detection.DefaultConfig()
	cfg.Teams = testTeams()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Tag(ctx, src, cfg, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTagMissingVideo(t *testing.T) {
	root := setDirs(t)
	cfg := detection.DefaultConfig()
	cfg.Teams = testTeams()

	_, err := Tag(context.Background(), filepath.Join(root, "source", "missing.avi"), cfg, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
