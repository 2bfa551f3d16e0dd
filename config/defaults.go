package config

const (
	defaultInDir            = "./data/"
	defaultOutDir           = "./data/"
	defaultExtension        = ".npz"
	defaultSkip             = 1
	defaultWorkers          = 1
	defaultTimestep         = 0.004
	defaultFrameSkip        = 8
	defaultMaxJointVelocity = 3.14
	defaultImageSize        = 64
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			InDir:     defaultInDir,
			OutDir:    defaultOutDir,
			Extension: defaultExtension,
			Skip:      defaultSkip,
			Workers:   defaultWorkers,
		},
		Rollout: Rollout{
			Timestep:         defaultTimestep,
			FrameSkip:        defaultFrameSkip,
			MaxJointVelocity: defaultMaxJointVelocity,
			ImageSize:        defaultImageSize,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
