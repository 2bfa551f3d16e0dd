package datasets

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/Noofbiz/robodata/npy"
)

// SplitArrays is a split directory read back from disk.
type SplitArrays struct {
	Dir         string
	Masks       Stream[float32]
	FrontImages Stream[uint8]
	SideImages  Stream[uint8]
	Wrenches    Stream[float32]
	Joints      Stream[float32]
}

// ReadSplit loads the five arrays written for one split (e.g. out_dir/train)
// and checks that they agree on episode and frame counts.
func ReadSplit(dir string) (*SplitArrays, error) {
	s := &SplitArrays{Dir: dir}
	var err error
	if s.Masks, err = loadFloat32Stream(filepath.Join(dir, MasksFile)); err != nil {
		return nil, err
	}
	if s.FrontImages, err = loadUint8Stream(filepath.Join(dir, FrontImagesFile)); err != nil {
		return nil, err
	}
	if s.SideImages, err = loadUint8Stream(filepath.Join(dir, SideImagesFile)); err != nil {
		return nil, err
	}
	if s.Wrenches, err = loadFloat32Stream(filepath.Join(dir, WrenchesFile)); err != nil {
		return nil, err
	}
	if s.Joints, err = loadFloat32Stream(filepath.Join(dir, JointsFile)); err != nil {
		return nil, err
	}

	if len(s.Masks.Shape) != 2 {
		return nil, fmt.Errorf("%s: masks must be 2-d, got %v", dir, s.Masks.Shape)
	}
	lead := s.Masks.Shape
	for name, shape := range map[string][]int{
		FrontImagesFile: s.FrontImages.Shape,
		SideImagesFile:  s.SideImages.Shape,
		WrenchesFile:    s.Wrenches.Shape,
		JointsFile:      s.Joints.Shape,
	} {
		if len(shape) < 2 || !slices.Equal(shape[:2], lead) {
			return nil, fmt.Errorf("%w: %s %v does not match masks %v in %s", ErrShapeMismatch, name, shape, lead, dir)
		}
	}
	return s, nil
}

// Len returns the number of episodes in the split.
func (s *SplitArrays) Len() int {
	return s.Masks.Episodes()
}

// Lengths returns each episode's recorded frame count, read from the masks.
func (s *SplitArrays) Lengths() []int {
	lengths := make([]int, s.Len())
	for i := range lengths {
		for _, m := range s.Masks.Episode(i) {
			if m != 0 {
				lengths[i]++
			}
		}
	}
	return lengths
}

// SplitTensors holds one gomlx tensor per stream.
type SplitTensors struct {
	Masks       *tensors.Tensor
	FrontImages *tensors.Tensor
	SideImages  *tensors.Tensor
	Wrenches    *tensors.Tensor
	Joints      *tensors.Tensor
}

// Tensors converts the split into gomlx tensors with the on-disk shapes.
func (s *SplitArrays) Tensors() (*SplitTensors, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("split %s is empty", s.Dir)
	}
	return &SplitTensors{
		Masks:       streamTensor(s.Masks),
		FrontImages: streamTensor(s.FrontImages),
		SideImages:  streamTensor(s.SideImages),
		Wrenches:    streamTensor(s.Wrenches),
		Joints:      streamTensor(s.Joints),
	}, nil
}

// ReadBounds loads a [2, dim] bounds file.
func ReadBounds(path string) (Bounds, error) {
	values, shape, err := npy.LoadFloat64s(path)
	if err != nil {
		return Bounds{}, err
	}
	if len(shape) != 2 || shape[0] != 2 {
		return Bounds{}, fmt.Errorf("%s: expected shape [2, dim], got %v", path, shape)
	}
	dim := shape[1]
	return Bounds{
		Min: slices.Clone(values[:dim]),
		Max: slices.Clone(values[dim:]),
	}, nil
}

func loadFloat32Stream(path string) (Stream[float32], error) {
	values, shape, err := npy.LoadFloat64s(path)
	if err != nil {
		return Stream[float32]{}, err
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return Stream[float32]{Shape: shape, Data: out}, nil
}

func loadUint8Stream(path string) (Stream[uint8], error) {
	pix, shape, err := npy.LoadUint8s(path)
	if err != nil {
		return Stream[uint8]{}, err
	}
	return Stream[uint8]{Shape: shape, Data: pix}, nil
}
