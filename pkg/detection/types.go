package detection

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

//RGB is an 8 bit per channel color in red, green, blue order.
//Frames handled by gocv are BGR, so every conversion to a gocv.Scalar goes through Scalar().
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

//Scalar returns the color as a BGR gocv.Scalar
func (c RGB) Scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

//RGBA returns the color for gocv drawing functions (gocv swaps the channels itself)
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

//ColorSample is one quantized color and the fraction of sampled pixels it covers
type ColorSample struct {
	Color    RGB     `json:"color"`
	Fraction float64 `json:"fraction"`
}

//BoundingBox is a detected footprint in frame coordinates
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

//BoxFromRect converts an image.Rectangle (Max exclusive) into a BoundingBox
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

//Rect returns the box as an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

//Center returns the integer center of the box
func (b BoundingBox) Center() image.Point {
	return image.Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

//Offset moves the box by (dx, dy)
func (b BoundingBox) Offset(dx, dy int) BoundingBox {
	b.X += dx
	b.Y += dy
	return b
}

//SizeLimits bounds the width and height (inclusive) a player shaped box may have
type SizeLimits struct {
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
}

//Contains reports whether a w x h box is within the limits
func (l SizeLimits) Contains(w, h int) bool {
	return w >= l.MinWidth && w <= l.MaxWidth && h >= l.MinHeight && h <= l.MaxHeight
}

//TeamBox is a bounding box tagged with the team whose uniform produced it
type TeamBox struct {
	Team int `json:"team"`
	BoundingBox
}

//FrameDetections is everything the pipeline found in a single frame
type FrameDetections struct {
	Boxes []TeamBox `json:"players"`
}

//ByTeam returns the boxes belonging to given team
func (d FrameDetections) ByTeam(team int) []BoundingBox {
	res := make([]BoundingBox, 0)
	for _, b := range d.Boxes {
		if b.Team == team {
			res = append(res, b.BoundingBox)
		}
	}
	return res
}
