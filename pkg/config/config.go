package config

import (
	"strings"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//ErrMissingConfig is returned by Validate when a critical key is empty
var ErrMissingConfig = errors.New("missing critical configuration")

//SetDefaults registers the default value of every key used by the project
func SetDefaults() {
	viper.SetDefault("directory.root", "./data/")
	viper.SetDefault("directory.source", "./data/source/")
	viper.SetDefault("directory.temp", "./data/temp/")
	viper.SetDefault("directory.ready", "./data/ready/")
	viper.SetDefault("directory.json", "./data/json/")

	viper.SetDefault("http.port", "8080")
	viper.SetDefault("frontend.static-files-path", "./client/")

	viper.SetDefault("video.prod_format", "mp4")
	viper.SetDefault("video.width", utils.DefaultFrameWidth)
	viper.SetDefault("video.height", utils.DefaultFrameHeight)
	viper.SetDefault("video.codec", utils.TempVideoCodec)

	viper.SetDefault("log.file", "")
	viper.SetDefault("log.debug", false)

	viper.SetDefault("teams.team1.name", "team1")
	viper.SetDefault("teams.team1.color", "255,255,255")
	viper.SetDefault("teams.team1.tolerance", detection.DefaultUniformTolerance)
	viper.SetDefault("teams.team2.name", "team2")
	viper.SetDefault("teams.team2.color", "0,0,0")
	viper.SetDefault("teams.team2.tolerance", detection.DefaultUniformTolerance)

	viper.SetDefault("detection.field_tolerance", detection.DefaultFieldTolerance)
	viper.SetDefault("detection.close_kernel", detection.DefaultCloseKernel)
	viper.SetDefault("detection.spectator_slices", detection.DefaultSpectatorSlices)
	viper.SetDefault("detection.mode", string(detection.ModeContours))
	viper.SetDefault("detection.min_area", detection.DefaultMinArea)
	viper.SetDefault("detection.min_width", detection.DefaultLimits.MinWidth)
	viper.SetDefault("detection.max_width", detection.DefaultLimits.MaxWidth)
	viper.SetDefault("detection.min_height", detection.DefaultLimits.MinHeight)
	viper.SetDefault("detection.max_height", detection.DefaultLimits.MaxHeight)
	viper.SetDefault("detection.compactness", detection.DefaultCompactness)
	viper.SetDefault("detection.merge_distance", detection.DefaultMergeDistance)
	viper.SetDefault("detection.suspect_width", detection.DefaultSuspectWidth)
	viper.SetDefault("detection.min_connection_width", detection.DefaultMinConnectionWidth)
	viper.SetDefault("detection.split_min_area", detection.DefaultMinArea)

	viper.SetDefault("calibration.swatch", true)
}

//Load reads the yaml config file (path, or "config.yaml" in the working directory when path is empty)
//on top of the defaults. Environment variables prefixed with PITCH_ override file values
//(detection.merge_distance -> PITCH_DETECTION_MERGE_DISTANCE).
func Load(path string) error {
	SetDefaults()

	viper.SetEnvPrefix("pitch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil //defaults only
		}
		return errors.Wrap(err, "Load: could not read config file")
	}

	return nil
}

//Validate checks that the keys nothing can work without are set
func Validate() error {
	for _, key := range []string{"video.prod_format", "directory.source", "directory.ready", "directory.json", "directory.temp"} {
		if viper.GetString(key) == "" {
			return errors.Wrap(ErrMissingConfig, key)
		}
	}
	return nil
}

//Directories returns every data directory from the configuration
func Directories() []string {
	dirs := make([]string, 0)
	for _, key := range []string{"root", "source", "temp", "ready", "json"} {
		dirs = append(dirs, viper.GetString("directory."+key))
	}
	return dirs
}

//Team reads teams.<key> into a detection.Team
func Team(key string, id int) (detection.Team, error) {
	rgb, err := utils.ParseRGB(viper.GetString("teams." + key + ".color"))
	if err != nil {
		return detection.Team{}, errors.Wrapf(err, "teams.%s.color", key)
	}
	return detection.Team{
		ID:        id,
		Name:      viper.GetString("teams." + key + ".name"),
		Color:     detection.RGB{R: rgb[0], G: rgb[1], B: rgb[2]},
		Tolerance: viper.GetInt("teams." + key + ".tolerance"),
	}, nil
}

//Detection builds the pipeline configuration for both teams from the current settings
func Detection() (detection.Config, error) {
	cfg := detection.DefaultConfig()

	team1, err := Team("team1", utils.Team1ID)
	if err != nil {
		return cfg, err
	}
	team2, err := Team("team2", utils.Team2ID)
	if err != nil {
		return cfg, err
	}
	cfg.Teams = []detection.Team{team1, team2}

	cfg.FieldTolerance = viper.GetInt("detection.field_tolerance")
	cfg.CloseKernel = viper.GetInt("detection.close_kernel")
	cfg.SpectatorSlices = viper.GetInt("detection.spectator_slices")
	cfg.Mode = detection.Mode(viper.GetString("detection.mode"))
	cfg.Shape = detection.ShapeFilter{
		MinArea: viper.GetFloat64("detection.min_area"),
		Limits: detection.SizeLimits{
			MinWidth:  viper.GetInt("detection.min_width"),
			MaxWidth:  viper.GetInt("detection.max_width"),
			MinHeight: viper.GetInt("detection.min_height"),
			MaxHeight: viper.GetInt("detection.max_height"),
		},
		Compactness: viper.GetFloat64("detection.compactness"),
	}
	cfg.MergeDistance = viper.GetFloat64("detection.merge_distance")
	cfg.SuspectWidth = viper.GetInt("detection.suspect_width")
	cfg.Splitter.MinConnectionWidth = viper.GetInt("detection.min_connection_width")
	cfg.Splitter.MinArea = viper.GetInt("detection.split_min_area")

	return cfg, cfg.Validate()
}
