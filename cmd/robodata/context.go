package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/Noofbiz/robodata/config"
	"github.com/Noofbiz/robodata/logging"
)

type commandContext struct {
	configFlag string
	logLevel   string
	logFormat  string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != "" {
			cfg.Logging.Level = c.logLevel
		}
		if c.logFormat != "" {
			cfg.Logging.Format = c.logFormat
		}
		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. quiet raises the level to warn.
func (c *commandContext) logger(cfg *config.Config, quiet bool) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if quiet && logging.ParseLevel(level) < slog.LevelWarn {
		level = "warn"
	}
	return logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
}
