package video

import (
	"context"
	"os"
	"path"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

//Paths are the files Tag reads and writes for one video
type Paths struct {
	Source   string
	TempAvi  string
	Output   string
	Results  string
	Swatch   string
	BaseName string
}

//PathsFor returns the configured locations for given source video file (any directory, with extension)
func PathsFor(srcVideoPath string) Paths {
	name := utils.TrimExtension(path.Base(srcVideoPath))
	p := Paths{
		Source:   srcVideoPath,
		TempAvi:  path.Join(viper.GetString("directory.temp"), name+"."+utils.TempVideoExtension),
		Output:   path.Join(viper.GetString("directory.ready"), name+"."+viper.GetString("video.prod_format")),
		Results:  path.Join(viper.GetString("directory.json"), name+utils.ResultsExtension),
		BaseName: name,
	}
	if viper.GetBool("calibration.swatch") {
		p.Swatch = path.Join(viper.GetString("directory.json"), name+"_calibration.png")
	}
	return p
}

//Tag reads a video, calibrates the field color on its first frame, finds the players of every frame and writes
//both the annotated video (converted to the configured format in 'ready' directory) and the detection record
//(in 'json' directory). Frames are processed strictly one after the other; ctx is checked between frames.
func Tag(ctx context.Context, srcVideoPath string, cfg detection.Config, logger *zap.SugaredLogger) (*Results, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	paths := PathsFor(srcVideoPath)
	logger = logger.With("video", paths.BaseName)

	src, err := OpenFrameSource(paths.Source, viper.GetInt("video.width"), viper.GetInt("video.height"))
	if err != nil {
		return nil, errors.Wrap(err, "Tag")
	}
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if !src.Next(&frame) {
		return nil, errors.Wrapf(ErrNoFrames, "Tag: '%s'", paths.Source)
	}

	reporter := detection.MultiReporter{detection.LogReporter{Logger: logger}}
	if paths.Swatch != "" {
		reporter = append(reporter, &detection.SwatchReporter{Path: paths.Swatch, Logger: logger})
	}

	field, palette, err := detection.Calibrate(frame, reporter)
	if err != nil {
		return nil, errors.Wrap(err, "Tag: calibration")
	}

	pipeline, err := detection.NewPipeline(cfg, field, logger)
	if err != nil {
		return nil, errors.Wrap(err, "Tag")
	}

	size := src.Size()
	results := NewResults(path.Base(paths.Source), size.X, size.Y, src.FPS())
	results.FieldColor = field
	results.Palette = palette
	results.Teams = cfg.Teams

	logger.Infow("Tag: started", "id", results.ID, "field", field.Hex(), "size", size)

	if err := writeTaggedVideo(ctx, src, &frame, pipeline, results, paths.TempAvi, cfg.Teams); err != nil {
		return nil, errors.Wrap(err, "Tag")
	}

	if err := WriteResults(paths.Results, results); err != nil {
		return nil, errors.Wrap(err, "Tag")
	}
	logger.Infow("Tag: detections written", "frames", len(results.Frames), "path", paths.Results)

	if err := convert(ctx, paths.TempAvi, paths.Output); err != nil {
		logger.Errorw("Tag: conversion failed, keeping temporary video", "path", paths.TempAvi, "error", err)
		return results, nil
	}
	if err := os.Remove(paths.TempAvi); err != nil {
		logger.Warnw("Tag: could not remove temporary video", "path", paths.TempAvi, "error", err)
	}

	logger.Infow("Tag: finished", "output", paths.Output)
	return results, nil
}

//writeTaggedVideo detects and plots players on frame (already holding the first frame) and every following frame
//of src, recording the detections in results and writing the plotted frames to aviPath
func writeTaggedVideo(ctx context.Context, src *FrameSource, frame *gocv.Mat, pipeline *detection.Pipeline, results *Results, aviPath string, teams []detection.Team) error {
	size := src.Size()
	videoWriter, err := gocv.VideoWriterFile(aviPath, viper.GetString("video.codec"), src.FPS(), size.X, size.Y, true)
	if err != nil {
		return errors.Wrapf(err, "creating '%s'", aviPath)
	}
	defer videoWriter.Close()

	for frameIndex := 0; ; frameIndex++ {
		if frameIndex > 0 && !src.Next(frame) { //finished to read all video's frames
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "stopped at frame %d", frameIndex)
		default:
		}

		detections, err := pipeline.Detect(*frame)
		if err != nil {
			return errors.Wrapf(err, "frame %d", frameIndex)
		}
		results.AddFrame(frameIndex, detections)

		Annotate(frame, detections, teams)
		if err := videoWriter.Write(*frame); err != nil {
			return errors.Wrapf(err, "writing frame %d", frameIndex)
		}
	}
}

//convert re-encodes the temporary avi into the production format. example: ffmpeg -y -i game.avi game.mp4
func convert(ctx context.Context, src, dst string) error {
	stream := ffmpeg.Input(src).Output(dst).OverWriteOutput().Silent(true)
	stream.Context = ctx
	return stream.Run()
}
