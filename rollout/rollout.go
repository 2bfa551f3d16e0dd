// Package rollout runs a control policy against an environment.
//
// A rollout is a composition of two independent capabilities: a Policy that
// maps observations to actions and an Environment that applies actions and
// reports what happened. Driver owns the loop; neither side knows about the
// other, so any policy can be paired with any environment at run time.
package rollout

import (
	"context"
	"errors"
)

// ErrPolicyDone is returned by Policy.Act when the policy has nothing more to
// do. The driver treats it as a clean end of the rollout.
var ErrPolicyDone = errors.New("policy finished")

// Observation is what an environment reports after reset and after each step.
type Observation struct {
	// Time is the simulation time in seconds.
	Time float64
	// JointPos and JointVel are joint positions [rad] and velocities [rad/s].
	JointPos []float64
	JointVel []float64
	// Wrench is the end-effector force/torque (fx, fy, fz, nx, ny, nz).
	Wrench []float64
	// Images holds HWC uint8 camera frames keyed by camera name.
	Images map[string]Image
}

// Image is a single HWC uint8 camera frame.
type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// Action is a joint-space position target.
type Action struct {
	Joint []float64
}

// Policy decides the next action from the latest observation.
type Policy interface {
	Name() string
	Reset(ctx context.Context) error
	Act(ctx context.Context, obs Observation) (Action, error)
}

// Environment applies actions to a robot or simulation.
type Environment interface {
	Name() string
	Reset(ctx context.Context) (Observation, error)
	// Step applies the action and reports whether the environment terminated.
	Step(ctx context.Context, act Action) (Observation, bool, error)
	Close() error
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
