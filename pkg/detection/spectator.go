package detection

import (
	"gocv.io/x/gocv"
)

//DefaultSpectatorSlices is the number of vertical slices the spectator trimmer works on
const DefaultSpectatorSlices = 8

//spectatorWhiteRatio is the highest white pixel ratio a row may have to count as field
const spectatorWhiteRatio = 0.3

//TrimSpectators clears the crowd band at the top of a mask.
//The mask is cut into slices equal width columns (the last one absorbs the remainder) and each slice is scanned
//from the top: rows are cleared until the first row whose white ratio is <= 0.3. That row is the slice's cutoff
//(mask height when every row was too white). Perspective makes the stands end at a different row along the
//frame, which is why each slice gets its own cutoff.
//The input mask is not modified; a new mask and the cutoff of every slice are returned.
func TrimSpectators(mask gocv.Mat, slices int) (gocv.Mat, []int, error) {
	if slices <= 0 {
		return gocv.NewMat(), nil, ErrInvalidSliceCount
	}

	out := mask.Clone()
	rows, cols := mask.Rows(), mask.Cols()
	cutoffs := make([]int, slices)
	if rows == 0 || cols == 0 {
		return out, cutoffs, nil
	}

	data := matBytes(mask)

	//more slices than columns would leave some slices empty
	usable := slices
	if usable > cols {
		usable = cols
	}
	sliceWidth := cols / usable

	for s := 0; s < slices; s++ {
		if s >= usable {
			//no columns left for this slice, nothing above row 0 to clear
			cutoffs[s] = 0
			continue
		}

		x0 := s * sliceWidth
		x1 := x0 + sliceWidth
		if s == usable-1 {
			x1 = cols
		}
		width := x1 - x0

		cutoff := rows
		for y := 0; y < rows; y++ {
			white := 0
			for x := x0; x < x1; x++ {
				if data[y*cols+x] != 0 {
					white++
				}
			}
			if float64(white)/float64(width) <= spectatorWhiteRatio {
				cutoff = y
				break
			}
			clearRow(&out, y, x0, x1)
		}
		cutoffs[s] = cutoff

		for y := 0; y < cutoff; y++ {
			clearRow(&out, y, x0, x1)
		}
	}

	return out, cutoffs, nil
}

func clearRow(m *gocv.Mat, y, x0, x1 int) {
	for x := x0; x < x1; x++ {
		m.SetUCharAt(y, x, 0)
	}
}
