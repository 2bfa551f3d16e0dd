package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDataset() error {
	var err error
	if c.Dataset.InDir, err = ExpandPath(strings.TrimSpace(c.Dataset.InDir)); err != nil {
		return fmt.Errorf("dataset.in_dir: %w", err)
	}
	if c.Dataset.OutDir, err = ExpandPath(strings.TrimSpace(c.Dataset.OutDir)); err != nil {
		return fmt.Errorf("dataset.out_dir: %w", err)
	}
	ext := strings.TrimSpace(c.Dataset.Extension)
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Dataset.Extension = ext
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

// Normalize re-applies normalization after callers override fields.
func (c *Config) Normalize() error {
	return c.normalize()
}
