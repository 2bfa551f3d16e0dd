package datasets

import (
	"path/filepath"
	"testing"

	"github.com/Noofbiz/robodata/npy"
)

// fixture describes a synthetic episode archive.
type fixture struct {
	frames    int
	height    int
	width     int
	jointDim  int
	sideFrame int // overrides the side image frame count when > 0
	omit      string
	// seed offsets every value so episodes are distinguishable.
	seed float64
}

// pixel values encode (frame, y, x, channel) so crops and strides are checkable.
func pixelValue(f, y, x, c int) uint8 {
	return uint8((f*7 + y*3 + x*5 + c) % 251)
}

func jointValue(seed float64, f, j int) float64 {
	return seed + float64(f)*0.5 + float64(j)
}

func wrenchValue(seed float64, f, j int) float64 {
	return -seed - float64(f) - float64(j)*0.25
}

func makeImages(frames, h, w int) []uint8 {
	pix := make([]uint8, 0, frames*h*w*3)
	for f := range frames {
		for y := range h {
			for x := range w {
				for c := range 3 {
					pix = append(pix, pixelValue(f, y, x, c))
				}
			}
		}
	}
	return pix
}

// writeEpisode writes an .npz archive for fx at dir/name and returns its path.
func writeEpisode(t *testing.T, dir, name string, fx fixture) string {
	t.Helper()
	if fx.height == 0 {
		fx.height = 4
	}
	if fx.width == 0 {
		fx.width = 4
	}
	if fx.jointDim == 0 {
		fx.jointDim = 2
	}
	sideFrames := fx.frames
	if fx.sideFrame > 0 {
		sideFrames = fx.sideFrame
	}

	joints := make([]float64, 0, fx.frames*fx.jointDim)
	wrenches := make([]float64, 0, fx.frames*6)
	for f := range fx.frames {
		for j := range fx.jointDim {
			joints = append(joints, jointValue(fx.seed, f, j))
		}
		for j := range 6 {
			wrenches = append(wrenches, wrenchValue(fx.seed, f, j))
		}
	}

	entries := []npy.Entry{
		{Name: KeyFrontImage, Shape: []int{fx.frames, fx.height, fx.width, 3}, Data: makeImages(fx.frames, fx.height, fx.width)},
		{Name: KeySideImage, Shape: []int{sideFrames, fx.height, fx.width, 3}, Data: makeImages(sideFrames, fx.height, fx.width)},
		{Name: KeyWrench, Shape: []int{fx.frames, 6}, Data: wrenches},
		{Name: KeyJoint, Shape: []int{fx.frames, fx.jointDim}, Data: joints},
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Name != fx.omit {
			kept = append(kept, e)
		}
	}

	path := filepath.Join(dir, name)
	if _, err := npy.WriteArchive(path, kept); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}
