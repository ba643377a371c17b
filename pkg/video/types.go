package video

import (
	"encoding/json"
	"os"
	"time"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

//FrameRecord holds the players found in one frame, frame numbers start at 0
type FrameRecord struct {
	Frame   int                 `json:"frame"`
	Players []detection.TeamBox `json:"players"`
}

//Results is the detection record written for every processed video
type Results struct {
	ID         string                  `json:"id"`
	Video      string                  `json:"video"`
	Width      int                     `json:"width"`
	Height     int                     `json:"height"`
	FPS        float64                 `json:"fps"`
	FieldColor detection.RGB           `json:"field_color"`
	Palette    []detection.ColorSample `json:"palette"`
	Teams      []detection.Team        `json:"teams"`
	CreatedAt  time.Time               `json:"created_at"`
	Frames     []FrameRecord           `json:"frames"`
}

//NewResults returns an empty record with a fresh id
func NewResults(videoName string, width, height int, fps float64) *Results {
	return &Results{
		ID:        uuid.New().String(),
		Video:     videoName,
		Width:     width,
		Height:    height,
		FPS:       fps,
		CreatedAt: time.Now().UTC(),
		Frames:    make([]FrameRecord, 0),
	}
}

//AddFrame appends the detections of the next frame
func (r *Results) AddFrame(frame int, d detection.FrameDetections) {
	r.Frames = append(r.Frames, FrameRecord{Frame: frame, Players: d.Boxes})
}

//WriteResults writes r as indented json to path
func WriteResults(path string, r *Results) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "WriteResults: marshal")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "WriteResults: writing '%s'", path)
	}
	return nil
}

//ReadResults reads a record written by WriteResults
func ReadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadResults: reading '%s'", path)
	}
	r := &Results{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errors.Wrapf(err, "ReadResults: parsing '%s'", path)
	}
	return r, nil
}
