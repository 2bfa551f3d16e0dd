package datasets

import (
	"fmt"
	"slices"

	"github.com/Noofbiz/robodata/npy"
)

// Element is the set of element types a Stream can hold.
type Element interface {
	~uint8 | ~float32 | ~float64
}

// Stream stores a padded [episodes, frames, feature...] array in one flat,
// C-ordered buffer.
type Stream[T Element] struct {
	Shape []int
	Data  []T
}

// Episodes returns the leading dimension.
func (s Stream[T]) Episodes() int {
	if len(s.Shape) == 0 {
		return 0
	}
	return s.Shape[0]
}

// FeatureSize is the number of elements in one frame.
func (s Stream[T]) FeatureSize() int {
	if len(s.Shape) < 2 {
		return 1
	}
	return npy.NumElements(s.Shape[2:])
}

func (s Stream[T]) episodeSize() int {
	if len(s.Shape) < 2 {
		return 1
	}
	return s.Shape[1] * s.FeatureSize()
}

// Episode returns the padded data of episode i.
func (s Stream[T]) Episode(i int) []T {
	n := s.episodeSize()
	return s.Data[i*n : (i+1)*n]
}

// Subset gathers the listed episodes, in order, into a new stream.
func (s Stream[T]) Subset(indices []int) Stream[T] {
	n := s.episodeSize()
	out := Stream[T]{
		Shape: slices.Clone(s.Shape),
		Data:  make([]T, 0, len(indices)*n),
	}
	if len(out.Shape) > 0 {
		out.Shape[0] = len(indices)
	}
	for _, i := range indices {
		out.Data = append(out.Data, s.Episode(i)...)
	}
	return out
}

// Batch holds every loaded episode padded to a common length.
type Batch struct {
	Paths     []string
	Lengths   []int
	MaxFrames int

	FrontImages Stream[uint8]
	SideImages  Stream[uint8]
	Wrenches    Stream[float64]
	Joints      Stream[float64]
	// Masks is [episodes, frames]: 1 for recorded frames, 0 for padding.
	Masks Stream[float32]
}

// Len returns the number of episodes.
func (b *Batch) Len() int {
	return len(b.Paths)
}

// Align pads every episode to the longest one. Recorded frames occupy the
// prefix of each row and the remainder is zero.
func Align(episodes []*Episode) (*Batch, error) {
	if len(episodes) == 0 {
		return nil, ErrNoEpisodes
	}

	first := episodes[0]
	maxFrames := 0
	for _, ep := range episodes {
		if err := sameFrameShape(first, ep); err != nil {
			return nil, err
		}
		maxFrames = max(maxFrames, ep.Len())
	}

	n := len(episodes)
	b := &Batch{
		Paths:     make([]string, n),
		Lengths:   make([]int, n),
		MaxFrames: maxFrames,
	}
	front := make([][]uint8, n)
	side := make([][]uint8, n)
	wrenches := make([][]float64, n)
	joints := make([][]float64, n)
	for i, ep := range episodes {
		b.Paths[i] = ep.Path
		b.Lengths[i] = ep.Len()
		front[i] = ep.FrontImages.Pix
		side[i] = ep.SideImages.Pix
		wrenches[i] = ep.Wrenches.Values
		joints[i] = ep.Joints.Values
	}

	fi, si := first.FrontImages, first.SideImages
	b.FrontImages = stack(front, maxFrames, fi.Height, fi.Width, fi.Channels)
	b.SideImages = stack(side, maxFrames, si.Height, si.Width, si.Channels)
	b.Wrenches = stack(wrenches, maxFrames, first.Wrenches.Dim)
	b.Joints = stack(joints, maxFrames, first.Joints.Dim)

	b.Masks = Stream[float32]{
		Shape: []int{n, maxFrames},
		Data:  make([]float32, n*maxFrames),
	}
	for i, l := range b.Lengths {
		row := b.Masks.Episode(i)
		for f := range l {
			row[f] = 1
		}
	}
	return b, nil
}

// Subset returns a batch restricted to the listed episodes. Indices may repeat.
func (b *Batch) Subset(indices []int) *Batch {
	out := &Batch{
		Paths:       make([]string, len(indices)),
		Lengths:     make([]int, len(indices)),
		MaxFrames:   b.MaxFrames,
		FrontImages: b.FrontImages.Subset(indices),
		SideImages:  b.SideImages.Subset(indices),
		Wrenches:    b.Wrenches.Subset(indices),
		Joints:      b.Joints.Subset(indices),
		Masks:       b.Masks.Subset(indices),
	}
	for j, i := range indices {
		out.Paths[j] = b.Paths[i]
		out.Lengths[j] = b.Lengths[i]
	}
	return out
}

func stack[T Element](rows [][]T, maxFrames int, frameShape ...int) Stream[T] {
	shape := append([]int{len(rows), maxFrames}, frameShape...)
	stride := maxFrames * npy.NumElements(frameShape)
	data := make([]T, len(rows)*stride)
	for i, r := range rows {
		copy(data[i*stride:(i+1)*stride], r)
	}
	return Stream[T]{Shape: shape, Data: data}
}

func sameFrameShape(a, b *Episode) error {
	check := func(name string, x, y []int) error {
		if !slices.Equal(x[1:], y[1:]) {
			return fmt.Errorf("%w: %s is %v in %s but %v in %s",
				ErrShapeMismatch, name, x[1:], a.Path, y[1:], b.Path)
		}
		return nil
	}
	if err := check(KeyFrontImage, a.FrontImages.Shape(), b.FrontImages.Shape()); err != nil {
		return err
	}
	if err := check(KeySideImage, a.SideImages.Shape(), b.SideImages.Shape()); err != nil {
		return err
	}
	if err := check(KeyWrench, a.Wrenches.Shape(), b.Wrenches.Shape()); err != nil {
		return err
	}
	return check(KeyJoint, a.Joints.Shape(), b.Joints.Shape())
}
