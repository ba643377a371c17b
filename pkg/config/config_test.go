package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.viam.com/test"
)

func TestDetectionDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	cfg, err := Detection()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Teams, test.ShouldHaveLength, 2)
	test.That(t, cfg.Teams[0].ID, test.ShouldEqual, utils.Team1ID)
	test.That(t, cfg.Teams[0].Color, test.ShouldResemble, detection.RGB{R: 255, G: 255, B: 255})
	test.That(t, cfg.Teams[1].ID, test.ShouldEqual, utils.Team2ID)
	test.That(t, cfg.Teams[1].Color, test.ShouldResemble, detection.RGB{})

	want := detection.DefaultConfig()
	want.Teams = cfg.Teams
	test.That(t, cfg, test.ShouldResemble, want)
}

func TestTeamBadColor(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("teams.team2.color", "0,0")

	_, err := Detection()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "teams.team2.color")
}

func TestLoad(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	body := []byte("teams:\n  team1:\n    color: \"10,20,30\"\ndetection:\n  mode: components\n  merge_distance: 25\n")
	test.That(t, os.WriteFile(p, body, 0644), test.ShouldBeNil)

	t.Setenv("PITCH_DETECTION_SPECTATOR_SLICES", "4")
	test.That(t, Load(p), test.ShouldBeNil)
	test.That(t, Validate(), test.ShouldBeNil)

	cfg, err := Detection()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Teams[0].Color, test.ShouldResemble, detection.RGB{R: 10, G: 20, B: 30})
	test.That(t, cfg.Mode, test.ShouldEqual, detection.ModeComponents)
	test.That(t, cfg.MergeDistance, test.ShouldEqual, 25.0)
	test.That(t, cfg.SpectatorSlices, test.ShouldEqual, 4)

	test.That(t, Directories(), test.ShouldResemble, []string{"./data/", "./data/source/", "./data/temp/", "./data/ready/", "./data/json/"})
}

func TestLoadMissingFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	test.That(t, Validate(), test.ShouldBeNil)

	viper.Set("directory.json", "")
	test.That(t, errors.Is(Validate(), ErrMissingConfig), test.ShouldBeTrue)
}
