package rollout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Noofbiz/robodata/datasets"
	"github.com/Noofbiz/robodata/npy"
)

// Camera names mapped onto the episode archive image keys.
const (
	CameraFront = "front"
	CameraSide  = "side"
)

// Recorder wraps an Environment and keeps every observation it returns so the
// rollout can be saved as an episode archive.
type Recorder struct {
	Env Environment
	// ImageSize is used for blank frames when a camera is missing.
	ImageSize int

	frames []Observation
}

// NewRecorder wraps env.
func NewRecorder(env Environment, imageSize int) (*Recorder, error) {
	if env == nil {
		return nil, errors.New("environment cannot be nil")
	}
	if imageSize < 1 {
		return nil, fmt.Errorf("image size must be >= 1, got %d", imageSize)
	}
	return &Recorder{Env: env, ImageSize: imageSize}, nil
}

func (r *Recorder) Name() string { return r.Env.Name() }

// Reset clears the recording and records the initial observation.
func (r *Recorder) Reset(ctx context.Context) (Observation, error) {
	obs, err := r.Env.Reset(ctx)
	if err != nil {
		return obs, err
	}
	r.frames = r.frames[:0]
	r.frames = append(r.frames, obs)
	return obs, nil
}

func (r *Recorder) Step(ctx context.Context, act Action) (Observation, bool, error) {
	obs, terminated, err := r.Env.Step(ctx, act)
	if err != nil {
		return obs, terminated, err
	}
	r.frames = append(r.frames, obs)
	return obs, terminated, nil
}

func (r *Recorder) Close() error { return r.Env.Close() }

// Len returns the number of recorded frames.
func (r *Recorder) Len() int { return len(r.frames) }

// Save writes the recording to path as an episode archive with the same keys
// LoadEpisode expects.
func (r *Recorder) Save(path string) (int64, error) {
	n := len(r.frames)
	if n == 0 {
		return 0, errors.New("nothing recorded")
	}
	jointDim := len(r.frames[0].JointPos)

	joints := make([]float64, 0, n*jointDim)
	wrenches := make([]float64, 0, n*6)
	for i, obs := range r.frames {
		if len(obs.JointPos) != jointDim {
			return 0, fmt.Errorf("frame %d has %d joints, want %d", i, len(obs.JointPos), jointDim)
		}
		joints = append(joints, obs.JointPos...)
		w := obs.Wrench
		if len(w) != 6 {
			w = make([]float64, 6)
		}
		wrenches = append(wrenches, w...)
	}

	front, frontShape, err := r.stack(CameraFront)
	if err != nil {
		return 0, err
	}
	side, sideShape, err := r.stack(CameraSide)
	if err != nil {
		return 0, err
	}

	return npy.WriteArchive(path, []npy.Entry{
		{Name: datasets.KeyFrontImage, Shape: frontShape, Data: front},
		{Name: datasets.KeySideImage, Shape: sideShape, Data: side},
		{Name: datasets.KeyWrench, Shape: []int{n, 6}, Data: wrenches},
		{Name: datasets.KeyJoint, Shape: []int{n, jointDim}, Data: joints},
	})
}

func (r *Recorder) stack(camera string) ([]uint8, []int, error) {
	first := r.frame(r.frames[0], camera)
	size := len(first.Pix)
	pix := make([]uint8, 0, len(r.frames)*size)
	for i, obs := range r.frames {
		im := r.frame(obs, camera)
		if im.Height != first.Height || im.Width != first.Width || im.Channels != first.Channels || len(im.Pix) != size {
			return nil, nil, fmt.Errorf("camera %s frame %d is %dx%dx%d, want %dx%dx%d",
				camera, i, im.Height, im.Width, im.Channels, first.Height, first.Width, first.Channels)
		}
		pix = append(pix, im.Pix...)
	}
	return pix, []int{len(r.frames), first.Height, first.Width, first.Channels}, nil
}

func (r *Recorder) frame(obs Observation, camera string) Image {
	if im, ok := obs.Images[camera]; ok {
		return im
	}
	return blankImage(r.ImageSize)
}
