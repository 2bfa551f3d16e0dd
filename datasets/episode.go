package datasets

import (
	"errors"
	"fmt"

	"github.com/Noofbiz/robodata/npy"
)

// Images is a frame-major sequence of HWC uint8 frames.
type Images struct {
	Frames   int
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// Shape returns [frames, height, width, channels].
func (im Images) Shape() []int {
	return []int{im.Frames, im.Height, im.Width, im.Channels}
}

func (im Images) frameSize() int {
	return im.Height * im.Width * im.Channels
}

// Frame returns the pixels of frame i.
func (im Images) Frame(i int) []uint8 {
	n := im.frameSize()
	return im.Pix[i*n : (i+1)*n]
}

// Signal is a frame-major sequence of feature vectors.
type Signal struct {
	Frames int
	Dim    int
	Values []float64
}

// Shape returns [frames, dim].
func (s Signal) Shape() []int {
	return []int{s.Frames, s.Dim}
}

// Row returns the feature vector of frame i.
func (s Signal) Row(i int) []float64 {
	return s.Values[i*s.Dim : (i+1)*s.Dim]
}

// Episode is one recorded demonstration after loading and transforms.
type Episode struct {
	Path        string
	FrontImages Images
	SideImages  Images
	Wrenches    Signal
	Joints      Signal
}

// Len returns the number of frames in the episode.
func (e *Episode) Len() int {
	return e.Joints.Frames
}

// LoadOptions controls per-episode preprocessing.
type LoadOptions struct {
	// Skip keeps every Skip-th frame, starting with the first.
	Skip int
	// CropSize center-crops both image streams to CropSize x CropSize when > 0.
	CropSize int
	// ResizeSize resizes both image streams to ResizeSize x ResizeSize when > 0.
	// Resizing happens after cropping.
	ResizeSize int
}

// LoadEpisode reads one episode archive and applies stride, crop and resize.
func LoadEpisode(path string, opts LoadOptions) (*Episode, error) {
	if opts.Skip < 1 {
		return nil, fmt.Errorf("skip must be >= 1, got %d", opts.Skip)
	}

	a, err := npy.OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	front, err := readImages(a, KeyFrontImage, opts)
	if err != nil {
		return nil, err
	}
	side, err := readImages(a, KeySideImage, opts)
	if err != nil {
		return nil, err
	}
	wrenches, err := readSignal(a, KeyWrench, opts.Skip)
	if err != nil {
		return nil, err
	}
	joints, err := readSignal(a, KeyJoint, opts.Skip)
	if err != nil {
		return nil, err
	}

	n := front.Frames
	if side.Frames != n || wrenches.Frames != n || joints.Frames != n {
		return nil, fmt.Errorf("%w in %s: front_image=%d side_image=%d wrench=%d joint=%d",
			ErrLengthMismatch, path, front.Frames, side.Frames, wrenches.Frames, joints.Frames)
	}

	return &Episode{
		Path:        path,
		FrontImages: front,
		SideImages:  side,
		Wrenches:    wrenches,
		Joints:      joints,
	}, nil
}

func readImages(a *npy.Archive, key string, opts LoadOptions) (Images, error) {
	pix, shape, err := a.Uint8s(key)
	if err != nil {
		return Images{}, keyError(a, key, err)
	}
	if len(shape) != 4 {
		return Images{}, fmt.Errorf("%s in %s: expected 4-d image array, got shape %v", key, a.Path, shape)
	}
	im := Images{
		Frames:   shape[0],
		Height:   shape[1],
		Width:    shape[2],
		Channels: shape[3],
		Pix:      pix,
	}

	im = strideImages(im, opts.Skip)
	if opts.CropSize > 0 {
		im, err = CenterCrop(im, opts.CropSize)
		if err != nil {
			return Images{}, fmt.Errorf("%s in %s: %w", key, a.Path, err)
		}
	}
	if opts.ResizeSize > 0 {
		im, err = Resize(im, opts.ResizeSize)
		if err != nil {
			return Images{}, fmt.Errorf("%s in %s: %w", key, a.Path, err)
		}
	}
	return im, nil
}

func readSignal(a *npy.Archive, key string, skip int) (Signal, error) {
	values, shape, err := a.Float64s(key)
	if err != nil {
		return Signal{}, keyError(a, key, err)
	}

	var s Signal
	switch len(shape) {
	case 1:
		s = Signal{Frames: shape[0], Dim: 1, Values: values}
	case 2:
		s = Signal{Frames: shape[0], Dim: shape[1], Values: values}
	default:
		return Signal{}, fmt.Errorf("%s in %s: expected 2-d signal array, got shape %v", key, a.Path, shape)
	}
	rows, frames := strideRows(s.Values, s.Dim, s.Frames, skip)
	s.Values = rows
	s.Frames = frames
	return s, nil
}

func keyError(a *npy.Archive, key string, err error) error {
	if errors.Is(err, npy.ErrNotFound) {
		return fmt.Errorf("%w: %q not found in %s", ErrMissingKey, key, a.Path)
	}
	return err
}
