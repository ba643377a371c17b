package detection

import "math"

//DefaultMergeDistance is the center distance (pixels) below which two boxes belong to the same player
const DefaultMergeDistance = 50

//MergeBoxes groups boxes whose centers are closer than threshold and returns one enclosing box per group.
//Boxes sharing a center always merge. Closeness chains: if A is close to B and B to C, all three end up in one group even when A and C are far apart.
//Groups are discovered in input order: the first unassigned box seeds a group, the group grows from every member
//it takes in, and an assigned box never seeds or joins another group. Zero or one box is returned as is.
func MergeBoxes(boxes []BoundingBox, threshold float64) []BoundingBox {
	if len(boxes) <= 1 {
		return boxes
	}

	used := make([]bool, len(boxes))
	merged := make([]BoundingBox, 0, len(boxes))

	for i := range boxes {
		if used[i] {
			continue
		}
		used[i] = true

		group := []BoundingBox{boxes[i]}
		for k := 0; k < len(group); k++ {
			member := group[k]
			for j, other := range boxes {
				if used[j] {
					continue
				}
				if d := centerDistance(member, other); d == 0 || d < threshold {
					group = append(group, other)
					used[j] = true
				}
			}
		}

		merged = append(merged, enclosingBox(group))
	}

	return merged
}

func centerDistance(a, b BoundingBox) float64 {
	ca, cb := a.Center(), b.Center()
	return math.Hypot(float64(ca.X-cb.X), float64(ca.Y-cb.Y))
}

func enclosingBox(group []BoundingBox) BoundingBox {
	xMin, yMin := group[0].X, group[0].Y
	xMax, yMax := group[0].X+group[0].Width, group[0].Y+group[0].Height
	for _, b := range group[1:] {
		if b.X < xMin {
			xMin = b.X
		}
		if b.Y < yMin {
			yMin = b.Y
		}
		if b.X+b.Width > xMax {
			xMax = b.X + b.Width
		}
		if b.Y+b.Height > yMax {
			yMax = b.Y + b.Height
		}
	}
	return BoundingBox{X: xMin, Y: yMin, Width: xMax - xMin, Height: yMax - yMin}
}
