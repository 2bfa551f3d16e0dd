package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Noofbiz/robodata/config"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %s", path)
	}
	if cfg.Dataset.InDir != "./data/" || cfg.Dataset.Skip != 1 || cfg.Dataset.Extension != ".npz" {
		t.Fatalf("unexpected defaults %+v", cfg.Dataset)
	}
	if cfg.Dataset.TrainKeywords != nil || cfg.Dataset.TestKeywords != nil {
		t.Fatal("default keywords should be nil so they are derived")
	}
	if cfg.Rollout.Timestep != 0.004 || cfg.Rollout.FrameSkip != 8 {
		t.Fatalf("unexpected rollout defaults %+v", cfg.Rollout)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
[dataset]
in_dir = "episodes"
extension = "npz"
skip = 3
cropped_img_size = 280
resized_img_size = 64
train_keywords = ["a", "b"]
test_keywords = []

[logging]
level = " DEBUG "
format = "json"
`
	if err := os.WriteFile(config.ProjectFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || path != config.ProjectFile {
		t.Fatalf("expected project file to be used, got %s exists=%v", path, exists)
	}
	if cfg.Dataset.InDir != "episodes" || cfg.Dataset.OutDir != "./data/" {
		t.Fatalf("unexpected dirs %q %q", cfg.Dataset.InDir, cfg.Dataset.OutDir)
	}
	if cfg.Dataset.Extension != ".npz" {
		t.Fatalf("extension not normalized: %q", cfg.Dataset.Extension)
	}
	if cfg.Dataset.Skip != 3 || cfg.Dataset.CroppedImgSize != 280 || cfg.Dataset.ResizedImgSize != 64 {
		t.Fatalf("unexpected image settings %+v", cfg.Dataset)
	}
	if !reflect.DeepEqual(cfg.Dataset.TrainKeywords, []string{"a", "b"}) {
		t.Fatalf("train keywords %v", cfg.Dataset.TrainKeywords)
	}
	if cfg.Dataset.TestKeywords == nil || len(cfg.Dataset.TestKeywords) != 0 {
		t.Fatalf("explicit empty test keywords should stay empty, got %#v", cfg.Dataset.TestKeywords)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[dataset]\nnot_a_key = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"skip", func(c *config.Config) { c.Dataset.Skip = 0 }, "dataset.skip"},
		{"nproc", func(c *config.Config) { c.Dataset.Workers = 0 }, "dataset.nproc"},
		{"crop", func(c *config.Config) { c.Dataset.CroppedImgSize = -1 }, "cropped_img_size"},
		{"timestep", func(c *config.Config) { c.Rollout.Timestep = 0 }, "rollout.timestep"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := config.ExpandPath("~/data")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("got %s", got)
	}
	if got, _ := config.ExpandPath("./data/"); got != "./data/" {
		t.Fatalf("relative path should be untouched, got %s", got)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "robodata.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || cfg.Rollout.FrameSkip != 8 {
		t.Fatalf("unexpected sample config %+v", cfg.Rollout)
	}
}
