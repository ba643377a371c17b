package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chenBenjamin97/pitch-tracker/pkg/api"
	"github.com/chenBenjamin97/pitch-tracker/pkg/config"
	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/chenBenjamin97/pitch-tracker/pkg/video"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "pitch-tracker",
		Usage: "detect soccer players of two teams in match videos",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "yaml config file (default: ./config.yaml when present)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web server",
				Action: serve,
			},
			{
				Name:      "analyze",
				Usage:     "tag a single video and write its detection record",
				ArgsUsage: "VIDEO",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "team1-color", Usage: "team 1 uniform as R,G,B"},
					&cli.StringFlag{Name: "team2-color", Usage: "team 2 uniform as R,G,B"},
				},
				Action: analyze,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pitch-tracker: %v\n", err)
		os.Exit(1)
	}
}

//setup loads the configuration, creates the data directories and returns the logger
func setup(c *cli.Context) (*zap.SugaredLogger, error) {
	if err := config.Load(c.String("config")); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(viper.GetString("log.file"), viper.GetBool("log.debug"))
	zap.ReplaceGlobals(logger.Desugar())

	if err := utils.EnsureDirs(config.Directories()...); err != nil {
		return logger, err
	}
	return logger, nil
}

func serve(c *cli.Context) error {
	logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !viper.GetBool("log.debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := ":" + viper.GetString("http.port")
	logger.Infow("serve: listening", "addr", addr)
	return api.SetRouter(logger, nil).Run(addr)
}

func analyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("analyze: expected exactly one VIDEO argument")
	}

	logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	for key, flag := range map[string]string{"team1": "team1-color", "team2": "team2-color"} {
		if c.IsSet(flag) {
			viper.Set("teams."+key+".color", c.String(flag))
		}
	}

	cfg, err := config.Detection()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := video.Tag(ctx, c.Args().First(), cfg, logger)
	if err != nil {
		return err
	}

	logger.Infow("analyze: done",
		"frames", len(results.Frames),
		"field", results.FieldColor.Hex(),
		"team1", countPlayers(results, utils.Team1ID),
		"team2", countPlayers(results, utils.Team2ID),
	)
	return nil
}

//countPlayers sums the detections of team over all frames
func countPlayers(results *video.Results, team int) int {
	n := 0
	for _, f := range results.Frames {
		n += len(detection.FrameDetections{Boxes: f.Players}.ByTeam(team))
	}
	return n
}
