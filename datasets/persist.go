package datasets

import (
	"path/filepath"

	"github.com/Noofbiz/robodata/npy"
)

// Output file names, relative to the output directory.
const (
	TrainDir         = "train"
	TestDir          = "test"
	MasksFile        = "masks.npy"
	FrontImagesFile  = "front_images.npy"
	SideImagesFile   = "side_images.npy"
	WrenchesFile     = "wrenches.npy"
	JointsFile       = "joints.npy"
	JointBoundsFile  = "joint_bounds.npy"
	WrenchBoundsFile = "wrench_bounds.npy"
)

// OutputFile describes one written array.
type OutputFile struct {
	Path  string
	Dtype npy.Dtype
	Shape []int
	Size  int64
}

// Persist writes the train and test subsets of batch plus the bounds files
// under outDir. Existing files are replaced.
func Persist(outDir string, batch *Batch, split Split, jointBounds, wrenchBounds Bounds) ([]OutputFile, error) {
	var outputs []OutputFile
	for _, part := range []struct {
		dir     string
		indices []int
	}{
		{TrainDir, split.Train},
		{TestDir, split.Test},
	} {
		files, err := persistSubset(filepath.Join(outDir, part.dir), batch.Subset(part.indices))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, files...)
	}

	for _, bf := range []struct {
		name   string
		bounds Bounds
	}{
		{JointBoundsFile, jointBounds},
		{WrenchBoundsFile, wrenchBounds},
	} {
		out, err := saveArray(filepath.Join(outDir, bf.name), bf.bounds.Shape(), bf.bounds.Array())
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func persistSubset(dir string, b *Batch) ([]OutputFile, error) {
	arrays := []struct {
		name  string
		shape []int
		data  any
	}{
		{MasksFile, b.Masks.Shape, b.Masks.Data},
		{FrontImagesFile, b.FrontImages.Shape, b.FrontImages.Data},
		{SideImagesFile, b.SideImages.Shape, b.SideImages.Data},
		{WrenchesFile, b.Wrenches.Shape, toFloat32(b.Wrenches.Data)},
		{JointsFile, b.Joints.Shape, toFloat32(b.Joints.Data)},
	}
	outputs := make([]OutputFile, 0, len(arrays))
	for _, a := range arrays {
		out, err := saveArray(filepath.Join(dir, a.name), a.shape, a.data)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func saveArray(path string, shape []int, data any) (OutputFile, error) {
	dtype, err := npy.DtypeOf(data)
	if err != nil {
		return OutputFile{}, err
	}
	size, err := npy.Save(path, shape, data)
	if err != nil {
		return OutputFile{}, err
	}
	return OutputFile{Path: path, Dtype: dtype, Shape: shape, Size: size}, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
