package rollout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Reason explains why a rollout stopped.
type Reason string

const (
	ReasonPolicyDone Reason = "policy_done"
	ReasonTerminated Reason = "terminated"
	ReasonMaxSteps   Reason = "max_steps"
	ReasonCanceled   Reason = "canceled"
)

// Result summarizes a finished rollout.
type Result struct {
	Policy      string
	Environment string
	Steps       int
	SimTime     float64
	Reason      Reason
	Final       Observation
}

// Driver pairs a policy with an environment and runs the control loop.
type Driver struct {
	Policy Policy
	Env    Environment
	// MaxSteps stops the rollout after that many environment steps when > 0.
	MaxSteps int
	Logger   *slog.Logger
	// OnStep is called after every environment step when set.
	OnStep func(step int, obs Observation)
}

// NewDriver returns a Driver for the given policy and environment.
func NewDriver(p Policy, env Environment) (*Driver, error) {
	if p == nil {
		return nil, errors.New("policy cannot be nil")
	}
	if env == nil {
		return nil, errors.New("environment cannot be nil")
	}
	return &Driver{Policy: p, Env: env}, nil
}

// Run resets both sides and steps until the policy finishes, the environment
// terminates, MaxSteps is reached or ctx is canceled. Cancellation returns the
// partial result together with ctx.Err().
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if d.Policy == nil || d.Env == nil {
		return nil, errors.New("driver needs both a policy and an environment")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("policy", d.Policy.Name(), "env", d.Env.Name())

	if err := d.Policy.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset policy %s: %w", d.Policy.Name(), err)
	}
	obs, err := d.Env.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset environment %s: %w", d.Env.Name(), err)
	}

	res := &Result{Policy: d.Policy.Name(), Environment: d.Env.Name(), Final: obs, SimTime: obs.Time}
	logger.Info("rollout started", "max_steps", d.MaxSteps)

	for {
		if err := ctx.Err(); err != nil {
			res.Reason = ReasonCanceled
			return res, err
		}
		if d.MaxSteps > 0 && res.Steps >= d.MaxSteps {
			res.Reason = ReasonMaxSteps
			break
		}

		act, err := d.Policy.Act(ctx, obs)
		if errors.Is(err, ErrPolicyDone) {
			res.Reason = ReasonPolicyDone
			break
		}
		if err != nil {
			return res, fmt.Errorf("policy %s at step %d: %w", d.Policy.Name(), res.Steps, err)
		}

		var terminated bool
		obs, terminated, err = d.Env.Step(ctx, act)
		if err != nil {
			return res, fmt.Errorf("environment %s at step %d: %w", d.Env.Name(), res.Steps, err)
		}
		res.Steps++
		res.Final = obs
		res.SimTime = obs.Time
		if d.OnStep != nil {
			d.OnStep(res.Steps, obs)
		}
		logger.Debug("step", "step", res.Steps, "time", obs.Time)
		if terminated {
			res.Reason = ReasonTerminated
			break
		}
	}

	logger.Info("rollout finished", "steps", res.Steps, "sim_time", res.SimTime, "reason", string(res.Reason))
	return res, nil
}
