package rollout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Noofbiz/robodata/datasets"
)

// ReplayPolicy plays back a recorded joint trajectory one frame per step.
type ReplayPolicy struct {
	name   string
	joints datasets.Signal
	next   int
}

// NewReplayPolicy builds a policy from an episode's joint sequence.
func NewReplayPolicy(ep *datasets.Episode) (*ReplayPolicy, error) {
	if ep == nil {
		return nil, errors.New("episode cannot be nil")
	}
	if ep.Joints.Frames == 0 {
		return nil, fmt.Errorf("episode %s has no joint frames", ep.Path)
	}
	return &ReplayPolicy{name: "replay:" + datasets.Stem(ep.Path), joints: ep.Joints}, nil
}

// LoadReplayPolicy reads an episode archive and replays its joints.
func LoadReplayPolicy(path string, skip int) (*ReplayPolicy, error) {
	ep, err := datasets.LoadEpisode(path, datasets.LoadOptions{Skip: skip})
	if err != nil {
		return nil, err
	}
	return NewReplayPolicy(ep)
}

func (p *ReplayPolicy) Name() string { return p.name }

// Dim returns the number of joints in the replayed trajectory.
func (p *ReplayPolicy) Dim() int { return p.joints.Dim }

// Len returns the number of frames in the replayed trajectory.
func (p *ReplayPolicy) Len() int { return p.joints.Frames }

// Start returns the first recorded joint position.
func (p *ReplayPolicy) Start() []float64 {
	return cloneFloats(p.joints.Row(0))
}

func (p *ReplayPolicy) Reset(context.Context) error {
	p.next = 0
	return nil
}

// Act returns the next recorded frame, or ErrPolicyDone once all frames have
// been played.
func (p *ReplayPolicy) Act(context.Context, Observation) (Action, error) {
	if p.next >= p.joints.Frames {
		return Action{}, ErrPolicyDone
	}
	row := p.joints.Row(p.next)
	p.next++
	return Action{Joint: cloneFloats(row)}, nil
}
