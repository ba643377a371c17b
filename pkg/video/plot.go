package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chenBenjamin97/pitch-tracker/pkg/detection"
	"gocv.io/x/gocv"
)

var defaultPlotColor = color.RGBA{255, 255, 0, 0}

//plotPlayersOnFrame draws every box with a sequential "Player N" label above it and its size below it
func plotPlayersOnFrame(frame *gocv.Mat, boxes []detection.BoundingBox, plotColor color.RGBA) {
	for i, box := range boxes {
		boundingBoxRect := box.Rect()
		gocv.Rectangle(frame, boundingBoxRect, plotColor, 2)

		startPointLabel := image.Pt(boundingBoxRect.Min.X, boundingBoxRect.Min.Y-10)
		startPointSize := image.Pt(boundingBoxRect.Min.X, boundingBoxRect.Max.Y+20)

		gocv.PutText(frame, fmt.Sprintf("Player %d", i+1), startPointLabel, gocv.FontHersheySimplex, 0.6, plotColor, 2)
		gocv.PutText(frame, fmt.Sprintf("%dx%d", box.Width, box.Height), startPointSize, gocv.FontHersheySimplex, 0.4, plotColor, 1)
	}
}

//Annotate plots the detections of every team on frame, in the team's uniform color
func Annotate(frame *gocv.Mat, detections detection.FrameDetections, teams []detection.Team) {
	for _, team := range teams {
		plotColor := team.Color.RGBA()
		if plotColor == (color.RGBA{A: 255}) { //black uniforms would vanish on dark stands
			plotColor = defaultPlotColor
		}
		plotPlayersOnFrame(frame, detections.ByTeam(team.ID), plotColor)
	}
}
