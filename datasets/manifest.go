package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is written next to the arrays and records how they were built.
const ManifestFile = "manifest.toml"

// Manifest is the TOML record of a build. It contains nothing run specific so
// identical inputs give an identical manifest.
type Manifest struct {
	InDir          string            `toml:"in_dir"`
	Extension      string            `toml:"extension"`
	Skip           int               `toml:"skip"`
	CroppedImgSize int               `toml:"cropped_img_size"`
	ResizedImgSize int               `toml:"resized_img_size"`
	MaskedBounds   bool              `toml:"masked_bounds"`
	MaxFrames      int               `toml:"max_frames"`
	TrainKeywords  []string          `toml:"train_keywords"`
	TestKeywords   []string          `toml:"test_keywords"`
	JointBounds    [][]float64       `toml:"joint_bounds"`
	WrenchBounds   [][]float64       `toml:"wrench_bounds"`
	Episodes       []ManifestEpisode `toml:"episodes"`
}

// ManifestEpisode describes one input archive.
type ManifestEpisode struct {
	Path   string `toml:"path"`
	Frames int    `toml:"frames"`
	Train  bool   `toml:"train"`
	Test   bool   `toml:"test"`
}

func newManifest(opts BuildOptions, batch *Batch, split Split, jb, wb Bounds) Manifest {
	m := Manifest{
		InDir:          opts.InDir,
		Extension:      opts.Extension,
		Skip:           opts.Load.Skip,
		CroppedImgSize: opts.Load.CropSize,
		ResizedImgSize: opts.Load.ResizeSize,
		MaskedBounds:   opts.MaskedBounds,
		MaxFrames:      batch.MaxFrames,
		TrainKeywords:  split.TrainKeywords,
		TestKeywords:   split.TestKeywords,
		JointBounds:    [][]float64{jb.Min, jb.Max},
		WrenchBounds:   [][]float64{wb.Min, wb.Max},
		Episodes:       make([]ManifestEpisode, batch.Len()),
	}
	for i, p := range batch.Paths {
		m.Episodes[i] = ManifestEpisode{
			Path:   p,
			Frames: batch.Lengths[i],
			Train:  slices.Contains(split.Train, i),
			Test:   slices.Contains(split.Test, i),
		}
	}
	return m
}

// WriteManifest encodes m as TOML into outDir.
func WriteManifest(outDir string, m Manifest) (string, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(outDir, ManifestFile)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadManifest decodes the manifest stored in outDir.
func ReadManifest(outDir string) (*Manifest, error) {
	path := filepath.Join(outDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
