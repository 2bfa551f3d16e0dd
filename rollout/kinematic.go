package rollout

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultTimestep is the physics timestep in seconds.
	DefaultTimestep = 0.004
	// DefaultFrameSkip is the number of physics steps per environment step.
	DefaultFrameSkip = 8
)

// KinematicEnv is a joint-space arm without dynamics. Each step moves the
// joints toward the commanded target, limited by MaxJointVelocity.
type KinematicEnv struct {
	Timestep  float64
	FrameSkip int
	// MaxJointVelocity in rad/s; 0 means targets are reached in one step.
	MaxJointVelocity float64
	// Horizon terminates the episode after that many steps when > 0.
	Horizon int
	// Cameras lists the camera names whose (blank) frames are reported.
	Cameras   []string
	ImageSize int

	init  []float64
	pos   []float64
	vel   []float64
	time  float64
	steps int
}

// NewKinematicEnv returns an environment starting at initPos with default
// timing.
func NewKinematicEnv(initPos []float64) (*KinematicEnv, error) {
	if len(initPos) == 0 {
		return nil, errors.New("initial joint position cannot be empty")
	}
	return &KinematicEnv{
		Timestep:  DefaultTimestep,
		FrameSkip: DefaultFrameSkip,
		init:      cloneFloats(initPos),
	}, nil
}

func (e *KinematicEnv) Name() string { return "kinematic" }

// StepDuration returns the simulated seconds covered by one Step.
func (e *KinematicEnv) StepDuration() float64 {
	return e.Timestep * float64(e.FrameSkip)
}

func (e *KinematicEnv) Reset(context.Context) (Observation, error) {
	if e.Timestep <= 0 || e.FrameSkip < 1 {
		return Observation{}, fmt.Errorf("invalid timing: timestep=%v frame_skip=%d", e.Timestep, e.FrameSkip)
	}
	e.pos = cloneFloats(e.init)
	e.vel = make([]float64, len(e.init))
	e.time = 0
	e.steps = 0
	return e.observe(), nil
}

func (e *KinematicEnv) Step(ctx context.Context, act Action) (Observation, bool, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, false, err
	}
	if e.pos == nil {
		return Observation{}, false, errors.New("step before reset")
	}
	if len(act.Joint) != len(e.pos) {
		return Observation{}, false, fmt.Errorf("action has %d joints, environment has %d", len(act.Joint), len(e.pos))
	}

	dt := e.StepDuration()
	maxDelta := math.Inf(1)
	if e.MaxJointVelocity > 0 {
		maxDelta = e.MaxJointVelocity * dt
	}
	for i, target := range act.Joint {
		delta := target - e.pos[i]
		if math.Abs(delta) > maxDelta {
			delta = math.Copysign(maxDelta, delta)
		}
		e.pos[i] += delta
		e.vel[i] = delta / dt
	}
	e.time += dt
	e.steps++

	terminated := e.Horizon > 0 && e.steps >= e.Horizon
	return e.observe(), terminated, nil
}

func (e *KinematicEnv) Close() error { return nil }

func (e *KinematicEnv) observe() Observation {
	obs := Observation{
		Time:     e.time,
		JointPos: cloneFloats(e.pos),
		JointVel: cloneFloats(e.vel),
		Wrench:   make([]float64, 6),
	}
	if len(e.Cameras) > 0 && e.ImageSize > 0 {
		obs.Images = make(map[string]Image, len(e.Cameras))
		for _, name := range e.Cameras {
			obs.Images[name] = blankImage(e.ImageSize)
		}
	}
	return obs
}

func blankImage(size int) Image {
	return Image{Height: size, Width: size, Channels: 3, Pix: make([]uint8, size*size*3)}
}
