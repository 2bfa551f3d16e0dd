package datasets

import "errors"

// This package turns recorded robot demonstrations into training arrays.
//
// Each episode archive (.npz) holds four synchronized sequences:
//   - front_image: frames x H x W x C, uint8
//   - side_image:  frames x H x W x C, uint8
//   - wrench:      frames x 6 force/torque readings
//   - joint:       frames x J joint angles
//
// Layout and intended usage:
//
//	FindEpisodes   -> sorted archive paths under a directory
//	LoadEpisodes   -> parallel decode, stride, crop and resize per file
//	Align          -> zero padded Batch with per-frame masks
//	ResolveSplit   -> keyword driven train/test index lists
//	ComputeBounds  -> element-wise [min, max] for joints and wrenches
//	Persist        -> .npy files under out_dir/{train,test}
//
// Build runs the whole pipeline. ReadSplit loads a written split back and
// converts it into gomlx tensors for training code.

// Archive keys every episode must provide.
const (
	KeyFrontImage = "front_image"
	KeySideImage  = "side_image"
	KeyWrench     = "wrench"
	KeyJoint      = "joint"
)

// DefaultExtension is the archive suffix searched for under the input directory.
const DefaultExtension = ".npz"

var (
	// ErrNoEpisodes is returned when no archives are found under the input directory.
	ErrNoEpisodes = errors.New("no episode files found")
	// ErrMissingKey is returned when an archive lacks one of the required arrays.
	ErrMissingKey = errors.New("missing array key")
	// ErrLengthMismatch is returned when an episode's sequences disagree in frame count.
	ErrLengthMismatch = errors.New("sequence length mismatch")
	// ErrShapeMismatch is returned when episodes cannot be stacked together.
	ErrShapeMismatch = errors.New("per-frame shape mismatch")
	// ErrCropTooLarge is returned when the crop size exceeds an image dimension.
	ErrCropTooLarge = errors.New("crop size exceeds image size")
	// ErrOutputLocked is returned when another build holds the output directory.
	ErrOutputLocked = errors.New("output directory is locked by another build")
)
