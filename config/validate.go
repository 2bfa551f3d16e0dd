package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateRollout(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	d := c.Dataset
	if d.InDir == "" {
		return errors.New("dataset.in_dir must be set")
	}
	if d.OutDir == "" {
		return errors.New("dataset.out_dir must be set")
	}
	if d.Skip < 1 {
		return fmt.Errorf("dataset.skip must be >= 1, got %d", d.Skip)
	}
	if d.Workers < 1 {
		return fmt.Errorf("dataset.nproc must be >= 1, got %d", d.Workers)
	}
	if d.CroppedImgSize < 0 {
		return fmt.Errorf("dataset.cropped_img_size must be positive, got %d", d.CroppedImgSize)
	}
	if d.ResizedImgSize < 0 {
		return fmt.Errorf("dataset.resized_img_size must be positive, got %d", d.ResizedImgSize)
	}
	return nil
}

func (c *Config) validateRollout() error {
	r := c.Rollout
	if r.Timestep <= 0 {
		return errors.New("rollout.timestep must be positive")
	}
	if r.FrameSkip < 1 {
		return errors.New("rollout.frame_skip must be >= 1")
	}
	if r.MaxSteps < 0 {
		return errors.New("rollout.max_steps must not be negative")
	}
	if r.MaxJointVelocity < 0 {
		return errors.New("rollout.max_joint_velocity must not be negative")
	}
	if r.ImageSize < 1 {
		return errors.New("rollout.image_size must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
