package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/robodata/config"
	"github.com/Noofbiz/robodata/rollout"
)

const (
	policyReplay = "replay"
	envKinematic = "kinematic"
)

func newRolloutCommand(ctx *commandContext) *cobra.Command {
	var (
		episode  string
		record   string
		policy   string
		env      string
		maxSteps int
		skip     int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Run a policy against an environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, quiet)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-steps") {
				cfg.Rollout.MaxSteps = maxSteps
			}
			if skip < 1 {
				return fmt.Errorf("skip must be >= 1, got %d", skip)
			}

			var rec *rollout.Recorder
			registry := newRolloutRegistry(cfg.Rollout, episode, skip, func(r *rollout.Recorder) { rec = r }, record != "")
			driver, err := registry.Compose(policy, env)
			if err != nil {
				return err
			}
			driver.MaxSteps = cfg.Rollout.MaxSteps
			driver.Logger = logger
			defer driver.Env.Close()

			res, err := driver.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if record != "" {
				size, err := rec.Save(record)
				if err != nil {
					return fmt.Errorf("save recording: %w", err)
				}
				if !quiet {
					fmt.Fprintf(out, "recorded %d frames to %s (%s)\n", rec.Len(), record, humanize.Bytes(uint64(size)))
				}
			}
			if !quiet {
				rows := [][]string{
					{"policy", res.Policy},
					{"environment", res.Environment},
					{"steps", fmt.Sprint(res.Steps)},
					{"sim time", fmt.Sprintf("%.3fs", res.SimTime)},
					{"reason", string(res.Reason)},
					{"final joints", fmt.Sprintf("%.4f", res.Final.JointPos)},
				}
				fmt.Fprintln(out, renderTable([]string{"Rollout", ""}, rows))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&episode, "episode", "", "Episode archive replayed by the replay policy")
	f.StringVar(&record, "record", "", "Write the rollout to this episode archive")
	f.StringVar(&policy, "policy", policyReplay, "Policy name")
	f.StringVar(&env, "env", envKinematic, "Environment name")
	f.IntVar(&maxSteps, "max-steps", 0, "Stop after this many steps (0 runs until the policy finishes)")
	f.IntVar(&skip, "skip", 1, "Replay every n-th recorded frame")
	f.BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	return cmd
}

// newRolloutRegistry registers the built-in policies and environments. When
// recording, the environment is wrapped in a Recorder handed to onRecorder.
func newRolloutRegistry(cfg config.Rollout, episode string, skip int, onRecorder func(*rollout.Recorder), recording bool) *rollout.Registry {
	r := rollout.NewRegistry()

	_ = r.RegisterPolicy(policyReplay, func() (rollout.Policy, error) {
		if strings.TrimSpace(episode) == "" {
			return nil, errors.New("--episode is required for the replay policy")
		}
		return rollout.LoadReplayPolicy(episode, skip)
	})

	_ = r.RegisterEnv(envKinematic, func(p rollout.Policy) (rollout.Environment, error) {
		start, err := startPosition(p)
		if err != nil {
			return nil, err
		}
		env, err := rollout.NewKinematicEnv(start)
		if err != nil {
			return nil, err
		}
		env.Timestep = cfg.Timestep
		env.FrameSkip = cfg.FrameSkip
		env.MaxJointVelocity = cfg.MaxJointVelocity
		env.ImageSize = cfg.ImageSize
		env.Cameras = []string{rollout.CameraFront, rollout.CameraSide}
		if !recording {
			return env, nil
		}
		rec, err := rollout.NewRecorder(env, cfg.ImageSize)
		if err != nil {
			return nil, err
		}
		onRecorder(rec)
		return rec, nil
	})

	return r
}

func startPosition(p rollout.Policy) ([]float64, error) {
	s, ok := p.(interface{ Start() []float64 })
	if !ok {
		return nil, fmt.Errorf("policy %s does not provide a start position", p.Name())
	}
	return s.Start(), nil
}
