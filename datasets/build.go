package datasets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/Noofbiz/robodata/preview"
)

const (
	lockFile   = ".robodata.lock"
	previewDir = "preview"
)

// BuildOptions configures a dataset build.
type BuildOptions struct {
	InDir     string
	OutDir    string
	Extension string
	Load      LoadOptions
	Workers   int

	// TrainKeywords and TestKeywords select episodes by substring. A nil list
	// is derived from the input file names; see ResolveSplit.
	TrainKeywords []string
	TestKeywords  []string

	// MaskedBounds excludes padded frames from the bounds reduction.
	MaskedBounds bool
	// Preview writes a joint trajectory PNG per episode under out_dir/preview.
	Preview bool

	Logger *slog.Logger
	// OnFilesFound is called once with the number of discovered inputs.
	OnFilesFound func(n int)
	// OnLoaded is called after each episode loads, possibly concurrently.
	OnLoaded func(*Episode)
}

// Report summarizes a finished build.
type Report struct {
	RunID        string
	Files        []string
	Lengths      []int
	MaxFrames    int
	Split        Split
	JointBounds  Bounds
	WrenchBounds Bounds
	Outputs      []OutputFile
	Manifest     string
	Previews     []string
}

// Build discovers, loads, aligns, splits and persists a dataset.
func Build(ctx context.Context, opts BuildOptions) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	files, err := FindEpisodes(opts.InDir, opts.Extension)
	if err != nil {
		return nil, err
	}
	logger.Info("episode files found", "in_dir", opts.InDir, "count", len(files))
	if opts.OnFilesFound != nil {
		opts.OnFilesFound(len(files))
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", opts.OutDir, err)
	}
	lock := flock.New(filepath.Join(opts.OutDir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, opts.OutDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	episodes, err := LoadEpisodes(ctx, files, opts.Load, opts.Workers, func(ep *Episode) {
		logger.Debug("episode loaded", "path", ep.Path, "frames", ep.Len())
		if opts.OnLoaded != nil {
			opts.OnLoaded(ep)
		}
	})
	if err != nil {
		return nil, err
	}

	batch, err := Align(episodes)
	if err != nil {
		return nil, err
	}
	logger.Info("episodes aligned",
		"episodes", batch.Len(),
		"max_frames", batch.MaxFrames,
		"front_image_shape", batch.FrontImages.Shape,
		"side_image_shape", batch.SideImages.Shape,
	)

	split := ResolveSplit(files, opts.TrainKeywords, opts.TestKeywords)
	logger.Info("split resolved",
		"train_keywords", split.TrainKeywords,
		"test_keywords", split.TestKeywords,
		"train", len(split.Train),
		"test", len(split.Test),
	)
	for _, i := range split.Train {
		logger.Debug("train file", "path", files[i])
	}
	for _, i := range split.Test {
		logger.Debug("test file", "path", files[i])
	}

	jointBounds, wrenchBounds, err := batchBounds(batch, opts.MaskedBounds)
	if err != nil {
		return nil, err
	}

	outputs, err := Persist(opts.OutDir, batch, split, jointBounds, wrenchBounds)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		logger.Debug("array written", "path", out.Path, "dtype", string(out.Dtype), "shape", out.Shape)
	}

	manifest, err := WriteManifest(opts.OutDir, newManifest(opts, batch, split, jointBounds, wrenchBounds))
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        runID,
		Files:        files,
		Lengths:      batch.Lengths,
		MaxFrames:    batch.MaxFrames,
		Split:        split,
		JointBounds:  jointBounds,
		WrenchBounds: wrenchBounds,
		Outputs:      outputs,
		Manifest:     manifest,
	}

	if opts.Preview {
		report.Previews, err = writePreviews(filepath.Join(opts.OutDir, previewDir), episodes)
		if err != nil {
			return nil, err
		}
		logger.Info("previews written", "count", len(report.Previews))
	}

	logger.Info("dataset written", "out_dir", opts.OutDir, "files", len(outputs))
	return report, nil
}

func batchBounds(batch *Batch, masked bool) (Bounds, Bounds, error) {
	reduce := func(s Stream[float64]) (Bounds, error) {
		if masked {
			return ComputeMaskedBounds(s, batch.Masks)
		}
		return ComputeBounds(s)
	}
	jb, err := reduce(batch.Joints)
	if err != nil {
		return Bounds{}, Bounds{}, fmt.Errorf("joint bounds: %w", err)
	}
	wb, err := reduce(batch.Wrenches)
	if err != nil {
		return Bounds{}, Bounds{}, fmt.Errorf("wrench bounds: %w", err)
	}
	return jb, wb, nil
}

// previewName prefixes the episode index so archives sharing a stem in
// different subdirectories get distinct files.
func previewName(i int, path string) string {
	return fmt.Sprintf("%03d_%s.png", i, Stem(path))
}

func writePreviews(dir string, episodes []*Episode) ([]string, error) {
	paths := make([]string, 0, len(episodes))
	var errs []error
	for i, ep := range episodes {
		if ep.Len() == 0 {
			continue
		}
		out := filepath.Join(dir, previewName(i, ep.Path))
		s := preview.Series{Frames: ep.Joints.Frames, Dim: ep.Joints.Dim, Values: ep.Joints.Values}
		if err := preview.JointTrajectories(out, Stem(ep.Path), s); err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, out)
	}
	return paths, errors.Join(errs...)
}
