package datasets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Noofbiz/robodata/npy"
)

func writeEpisodeDir(t *testing.T, lengths ...int) string {
	t.Helper()
	dir := t.TempDir()
	for i, n := range lengths {
		writeEpisode(t, dir, fmt.Sprintf("sub/episode_%02d.npz", i), fixture{frames: n, height: 6, width: 8, seed: float64(i + 1)})
	}
	return dir
}

func TestBuildWritesLayout(t *testing.T) {
	in := writeEpisodeDir(t, 3, 5, 4, 2, 5)
	out := filepath.Join(t.TempDir(), "out")

	var found int
	report, err := Build(context.Background(), BuildOptions{
		InDir:        in,
		OutDir:       out,
		Load:         LoadOptions{Skip: 1, CropSize: 4},
		Workers:      2,
		OnFilesFound: func(n int) { found = n },
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if found != 5 || len(report.Files) != 5 {
		t.Fatalf("expected 5 files, found=%d report=%d", found, len(report.Files))
	}
	if report.MaxFrames != 5 {
		t.Fatalf("MaxFrames=%d want 5", report.MaxFrames)
	}
	if !reflect.DeepEqual(report.Split.Train, []int{0, 1, 3, 4}) || !reflect.DeepEqual(report.Split.Test, []int{2}) {
		t.Fatalf("unexpected split train=%v test=%v", report.Split.Train, report.Split.Test)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}

	wantFiles := []string{
		"train/masks.npy", "train/front_images.npy", "train/side_images.npy", "train/wrenches.npy", "train/joints.npy",
		"test/masks.npy", "test/front_images.npy", "test/side_images.npy", "test/wrenches.npy", "test/joints.npy",
		"joint_bounds.npy", "wrench_bounds.npy",
	}
	if len(report.Outputs) != len(wantFiles) {
		t.Fatalf("expected %d outputs, got %d", len(wantFiles), len(report.Outputs))
	}
	for i, rel := range wantFiles {
		if report.Outputs[i].Path != filepath.Join(out, rel) {
			t.Fatalf("output %d is %s, want %s", i, report.Outputs[i].Path, rel)
		}
		if _, err := os.Stat(report.Outputs[i].Path); err != nil {
			t.Fatalf("missing output %s: %v", rel, err)
		}
	}

	dtypes := map[string]npy.Dtype{
		"train/masks.npy":        npy.Float32,
		"train/front_images.npy": npy.Uint8,
		"train/joints.npy":       npy.Float32,
		"test/wrenches.npy":      npy.Float32,
		"joint_bounds.npy":       npy.Float64,
	}
	for rel, want := range dtypes {
		got, _, err := npy.LoadDtype(filepath.Join(out, rel))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s dtype %q want %q", rel, got, want)
		}
	}

	train, err := ReadSplit(filepath.Join(out, TrainDir))
	if err != nil {
		t.Fatalf("ReadSplit failed: %v", err)
	}
	if !reflect.DeepEqual(train.Lengths(), []int{3, 5, 2, 5}) {
		t.Fatalf("train lengths %v", train.Lengths())
	}
	if !reflect.DeepEqual(train.FrontImages.Shape, []int{4, 5, 4, 4, 3}) {
		t.Fatalf("train image shape %v", train.FrontImages.Shape)
	}

	tensors, err := train.Tensors()
	if err != nil {
		t.Fatalf("Tensors failed: %v", err)
	}
	if dims := tensors.Joints.Shape().Dimensions; !reflect.DeepEqual(dims, []int{4, 5, 2}) {
		t.Fatalf("joint tensor dims %v", dims)
	}

	jb, err := ReadBounds(filepath.Join(out, JointBoundsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(jb, report.JointBounds) {
		t.Fatalf("bounds on disk %v differ from report %v", jb, report.JointBounds)
	}

	m, err := ReadManifest(out)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(m.Episodes) != 5 || !m.Episodes[2].Test || m.Episodes[2].Train || m.Episodes[1].Frames != 5 {
		t.Fatalf("unexpected manifest episodes %+v", m.Episodes)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	in := writeEpisodeDir(t, 4, 2, 3)
	out := t.TempDir()
	opts := BuildOptions{InDir: in, OutDir: out, Load: LoadOptions{Skip: 2, ResizeSize: 3}, Workers: 3}

	if _, err := Build(context.Background(), opts); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	first := snapshot(t, out)
	if _, err := Build(context.Background(), opts); err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	second := snapshot(t, out)

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("file sets differ: %d vs %d", len(first), len(second))
	}
	for name, data := range first {
		if !bytes.Equal(data, second[name]) {
			t.Fatalf("%s changed between identical runs", name)
		}
	}
}

func snapshot(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	files := map[string][]byte{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[path] = data
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestBuildNoInputs(t *testing.T) {
	in := t.TempDir()
	_, err := Build(context.Background(), BuildOptions{InDir: in, OutDir: t.TempDir(), Load: LoadOptions{Skip: 1}})
	if !errors.Is(err, ErrNoEpisodes) {
		t.Fatalf("expected ErrNoEpisodes, got %v", err)
	}
	if !strings.Contains(err.Error(), in) {
		t.Fatalf("error should name the directory: %v", err)
	}
}

func TestBuildExplicitKeywordsAndPreview(t *testing.T) {
	in := writeEpisodeDir(t, 2, 3)
	out := t.TempDir()

	report, err := Build(context.Background(), BuildOptions{
		InDir:         in,
		OutDir:        out,
		Load:          LoadOptions{Skip: 1},
		TrainKeywords: []string{"episode_"},
		TestKeywords:  []string{"episode_01"},
		MaskedBounds:  true,
		Preview:       true,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(report.Split.Train, []int{0, 1}) || !reflect.DeepEqual(report.Split.Test, []int{1}) {
		t.Fatalf("unexpected split %+v", report.Split)
	}
	// masked: joint 0 of episode_00 starts at seed 1
	if report.JointBounds.Min[0] != jointValue(1, 0, 0) {
		t.Fatalf("masked joint min %v", report.JointBounds.Min)
	}
	if len(report.Previews) != 2 {
		t.Fatalf("expected 2 previews, got %v", report.Previews)
	}
	for _, p := range report.Previews {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("preview missing: %v", err)
		}
	}
}

func TestBuildPropagatesLoadErrors(t *testing.T) {
	in := t.TempDir()
	writeEpisode(t, in, "good.npz", fixture{frames: 2})
	writeEpisode(t, in, "bad.npz", fixture{frames: 3, sideFrame: 2})

	_, err := Build(context.Background(), BuildOptions{InDir: in, OutDir: t.TempDir(), Load: LoadOptions{Skip: 1}, Workers: 2})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestBuildPreviewsKeepSameStemApart(t *testing.T) {
	in := t.TempDir()
	writeEpisode(t, in, "day1/ep.npz", fixture{frames: 2, seed: 1})
	writeEpisode(t, in, "day2/ep.npz", fixture{frames: 3, seed: 2})
	out := t.TempDir()

	report, err := Build(context.Background(), BuildOptions{
		InDir:   in,
		OutDir:  out,
		Load:    LoadOptions{Skip: 1},
		Preview: true,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(report.Previews) != 2 || report.Previews[0] == report.Previews[1] {
		t.Fatalf("previews should be distinct, got %v", report.Previews)
	}
	entries, err := os.ReadDir(filepath.Join(out, previewDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 preview files on disk, got %d", len(entries))
	}
	if filepath.Base(report.Previews[0]) != "000_ep.png" || filepath.Base(report.Previews[1]) != "001_ep.png" {
		t.Fatalf("unexpected preview names %v", report.Previews)
	}
}
