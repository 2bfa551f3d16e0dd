package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ProjectFile is the config file picked up from the working directory.
const ProjectFile = "robodata.toml"

// Dataset contains the make-dataset settings.
type Dataset struct {
	InDir          string `toml:"in_dir"`
	OutDir         string `toml:"out_dir"`
	Extension      string `toml:"extension"`
	Skip           int    `toml:"skip"`
	CroppedImgSize int    `toml:"cropped_img_size"` // 0 disables cropping
	ResizedImgSize int    `toml:"resized_img_size"` // 0 disables resizing
	Workers        int    `toml:"nproc"`
	MaskedBounds   bool   `toml:"masked_bounds"`
	Preview        bool   `toml:"preview"`
	// nil means derive from file names; an empty list selects nothing.
	TrainKeywords []string `toml:"train_keywords"`
	TestKeywords  []string `toml:"test_keywords"`
}

// Rollout contains settings for the kinematic rollout environment.
type Rollout struct {
	Timestep         float64 `toml:"timestep"`
	FrameSkip        int     `toml:"frame_skip"`
	MaxSteps         int     `toml:"max_steps"` // 0 runs until the policy finishes
	MaxJointVelocity float64 `toml:"max_joint_velocity"`
	ImageSize        int     `toml:"image_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for robodata.
type Config struct {
	Dataset Dataset `toml:"dataset"`
	Rollout Rollout `toml:"rollout"`
	Logging Logging `toml:"logging"`
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether that file existed. With an empty path
// ./robodata.toml is used when present, otherwise defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if path != "" && !exists {
		return nil, "", false, fmt.Errorf("config file %s does not exist", resolvedPath)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = ProjectFile
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// ExpandPath replaces a leading ~ with the user's home directory. Relative
// paths stay relative so keyword matching sees the path as typed.
func ExpandPath(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	if pathValue[1] == '/' || pathValue[1] == '\\' {
		return filepath.Join(home, pathValue[2:]), nil
	}
	return pathValue, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
