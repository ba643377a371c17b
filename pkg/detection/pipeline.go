package detection

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

//Team is one uniform color the pipeline looks for
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     RGB    `json:"color"`
	Tolerance int    `json:"tolerance"`
}

//Config holds every threshold of the pipeline. It is built once per video and never changed afterwards.
type Config struct {
	Teams           []Team
	FieldTolerance  int
	CloseKernel     int
	SpectatorSlices int
	Mode            Mode
	Shape           ShapeFilter
	MergeDistance   float64
	SuspectWidth    int
	Splitter        Splitter
}

//DefaultConfig returns a Config with every default threshold and no teams
func DefaultConfig() Config {
	return Config{
		FieldTolerance:  DefaultFieldTolerance,
		CloseKernel:     DefaultCloseKernel,
		SpectatorSlices: DefaultSpectatorSlices,
		Mode:            ModeContours,
		Shape:           DefaultShapeFilter(),
		MergeDistance:   DefaultMergeDistance,
		SuspectWidth:    DefaultSuspectWidth,
		Splitter:        DefaultSplitter(),
	}
}

//Validate rejects configurations the pipeline can not run with
func (c Config) Validate() error {
	if c.SpectatorSlices <= 0 {
		return errors.Wrapf(ErrInvalidSliceCount, "spectator slices %d", c.SpectatorSlices)
	}
	if len(c.Teams) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no teams configured")
	}
	if !c.Mode.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown shape mode %q", c.Mode)
	}
	if c.MergeDistance <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "merge distance %v must be positive", c.MergeDistance)
	}
	for _, t := range c.Teams {
		if t.Tolerance <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "team %d tolerance must be positive", t.ID)
		}
	}
	return nil
}

//Pipeline finds players in single frames. The calibrated field color is fixed at construction.
type Pipeline struct {
	cfg    Config
	field  RGB
	logger *zap.SugaredLogger
}

//NewPipeline validates cfg and returns a Pipeline using field as the grass color
func NewPipeline(cfg Config, field RGB, logger *zap.SugaredLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{cfg: cfg, field: field, logger: logger}, nil
}

//Field returns the calibrated field color
func (p *Pipeline) Field() RGB {
	return p.field
}

//Detect runs every stage on frame and returns the players of every team.
//frame is only read.
func (p *Pipeline) Detect(frame gocv.Mat) (FrameDetections, error) {
	res := FrameDetections{Boxes: make([]TeamBox, 0)}
	if frame.Empty() {
		return res, nil
	}

	foreground := ForegroundMask(frame, p.field, p.cfg.FieldTolerance)
	defer foreground.Close()

	for _, team := range p.cfg.Teams {
		boxes, err := p.detectTeam(frame, foreground, team)
		if err != nil {
			return res, errors.Wrapf(err, "team %d", team.ID)
		}
		for _, b := range boxes {
			res.Boxes = append(res.Boxes, TeamBox{Team: team.ID, BoundingBox: b})
		}
	}

	return res, nil
}

func (p *Pipeline) detectTeam(frame, foreground gocv.Mat, team Team) ([]BoundingBox, error) {
	uniform := UniformMask(frame, team.Color, team.Tolerance)
	defer uniform.Close()

	combined := CombineMasks(foreground, uniform, p.cfg.CloseKernel)
	defer combined.Close()

	trimmed, cutoffs, err := TrimSpectators(combined, p.cfg.SpectatorSlices)
	if err != nil {
		return nil, err
	}
	defer trimmed.Close()

	candidates, shaped := p.cfg.Shape.Filter(trimmed, p.cfg.Mode)
	defer shaped.Close()

	merged := MergeBoxes(candidates, p.cfg.MergeDistance)

	boxes := make([]BoundingBox, 0, len(merged))
	for _, b := range merged {
		if !p.suspect(b) {
			boxes = append(boxes, b)
			continue
		}

		//split what the shape filter kept, so erased noise can not come back as players
		split := p.cfg.Splitter.SplitRegion(shaped, b)
		if len(split) == 0 {
			boxes = append(boxes, b)
			continue
		}
		p.logger.Debugw("Detect: split merged box", "team", team.ID, "box", b, "parts", len(split))
		boxes = append(boxes, split...)
	}

	p.logger.Debugw("Detect: team done",
		"team", team.ID,
		"cutoffs", cutoffs,
		"candidates", len(candidates),
		"merged", len(merged),
		"players", len(boxes),
	)

	return boxes, nil
}

//suspect reports whether a merged box probably holds more than one player
func (p *Pipeline) suspect(b BoundingBox) bool {
	return b.Width > p.cfg.SuspectWidth || b.Width >= b.Height
}
