package datasets

import (
	"errors"
	"math"
)

// Bounds holds element-wise minimum and maximum values of a feature.
type Bounds struct {
	Min []float64
	Max []float64
}

// Dim returns the feature dimension.
func (b Bounds) Dim() int {
	return len(b.Min)
}

// Array returns the bounds as a flat [2, dim] buffer: minimums then maximums.
func (b Bounds) Array() []float64 {
	out := make([]float64, 0, 2*len(b.Min))
	out = append(out, b.Min...)
	return append(out, b.Max...)
}

// Shape returns [2, dim].
func (b Bounds) Shape() []int {
	return []int{2, b.Dim()}
}

var errNoFrames = errors.New("bounds: no frames to reduce")

// ComputeBounds reduces every frame of every episode, padding included.
// Zero padding therefore pulls the minimum toward 0 (and the maximum up to 0)
// whenever episodes have different lengths and the data does not already
// span zero.
func ComputeBounds(s Stream[float64]) (Bounds, error) {
	return reduceBounds(s, nil)
}

// ComputeMaskedBounds reduces only frames whose mask entry is non-zero.
func ComputeMaskedBounds(s Stream[float64], masks Stream[float32]) (Bounds, error) {
	return reduceBounds(s, masks.Data)
}

func reduceBounds(s Stream[float64], mask []float32) (Bounds, error) {
	dim := s.FeatureSize()
	b := Bounds{
		Min: make([]float64, dim),
		Max: make([]float64, dim),
	}
	for j := range dim {
		b.Min[j] = math.Inf(1)
		b.Max[j] = math.Inf(-1)
	}

	rows := 0
	for r := 0; r*dim < len(s.Data); r++ {
		if mask != nil && mask[r] == 0 {
			continue
		}
		row := s.Data[r*dim : (r+1)*dim]
		for j, v := range row {
			b.Min[j] = math.Min(b.Min[j], v)
			b.Max[j] = math.Max(b.Max[j], v)
		}
		rows++
	}
	if rows == 0 || dim == 0 {
		return Bounds{}, errNoFrames
	}
	return b, nil
}
