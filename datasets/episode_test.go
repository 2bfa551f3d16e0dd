package datasets

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLoadEpisodeReadsAllStreams(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "ep.npz", fixture{frames: 5, jointDim: 3, seed: 1})

	ep, err := LoadEpisode(p, LoadOptions{Skip: 1})
	if err != nil {
		t.Fatalf("LoadEpisode failed: %v", err)
	}
	if ep.Len() != 5 {
		t.Fatalf("expected 5 frames, got %d", ep.Len())
	}
	if ep.Joints.Dim != 3 || ep.Wrenches.Dim != 6 {
		t.Fatalf("unexpected dims: joint=%d wrench=%d", ep.Joints.Dim, ep.Wrenches.Dim)
	}
	if got := ep.Joints.Row(2)[1]; got != jointValue(1, 2, 1) {
		t.Fatalf("joint[2][1]=%v want %v", got, jointValue(1, 2, 1))
	}
	if got := ep.FrontImages.Shape(); got[1] != 4 || got[2] != 4 || got[3] != 3 {
		t.Fatalf("unexpected image shape %v", got)
	}
}

func TestLoadEpisodeAppliesStride(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "ep.npz", fixture{frames: 7, seed: 2})

	ep, err := LoadEpisode(p, LoadOptions{Skip: 3})
	if err != nil {
		t.Fatalf("LoadEpisode failed: %v", err)
	}
	// frames 0, 3, 6
	if ep.Len() != 3 {
		t.Fatalf("expected 3 frames after stride, got %d", ep.Len())
	}
	for i, src := range []int{0, 3, 6} {
		if got := ep.Joints.Row(i)[0]; got != jointValue(2, src, 0) {
			t.Fatalf("row %d: got %v want frame %d value %v", i, got, src, jointValue(2, src, 0))
		}
		if got := ep.SideImages.Frame(i)[0]; got != pixelValue(src, 0, 0, 0) {
			t.Fatalf("image row %d: got %v want %v", i, got, pixelValue(src, 0, 0, 0))
		}
	}
}

func TestLoadEpisodeRejectsZeroSkip(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "ep.npz", fixture{frames: 2})
	if _, err := LoadEpisode(p, LoadOptions{Skip: 0}); err == nil {
		t.Fatal("expected error for skip 0")
	}
}

func TestLoadEpisodeMissingKeyNamesFile(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "broken.npz", fixture{frames: 2, omit: KeyWrench})

	_, err := LoadEpisode(p, LoadOptions{Skip: 1})
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken.npz") || !strings.Contains(err.Error(), KeyWrench) {
		t.Fatalf("error should name file and key: %v", err)
	}
}

func TestLoadEpisodeLengthMismatch(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "short.npz", fixture{frames: 4, sideFrame: 3})

	_, err := LoadEpisode(p, LoadOptions{Skip: 1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "short.npz") {
		t.Fatalf("error should name file: %v", err)
	}
}

func TestCenterCropOffsets(t *testing.T) {
	im := Images{Frames: 1, Height: 5, Width: 6, Channels: 3, Pix: makeImages(1, 5, 6)}

	out, err := CenterCrop(im, 2)
	if err != nil {
		t.Fatalf("CenterCrop failed: %v", err)
	}
	// top = (5-2)/2 = 1, left = (6-2)/2 = 2
	for y := range 2 {
		for x := range 2 {
			for c := range 3 {
				got := out.Pix[(y*2+x)*3+c]
				want := pixelValue(0, y+1, x+2, c)
				if got != want {
					t.Fatalf("pixel (%d,%d,%d)=%d want %d", y, x, c, got, want)
				}
			}
		}
	}

	if _, err := CenterCrop(im, 6); !errors.Is(err, ErrCropTooLarge) {
		t.Fatalf("expected ErrCropTooLarge, got %v", err)
	}
}

func TestResizeShapeAndUniformImage(t *testing.T) {
	pix := bytes.Repeat([]byte{10, 20, 30}, 2*8*8)
	im := Images{Frames: 2, Height: 8, Width: 8, Channels: 3, Pix: pix}

	out, err := Resize(im, 3)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Frames != 2 || out.Height != 3 || out.Width != 3 || len(out.Pix) != 2*3*3*3 {
		t.Fatalf("unexpected resized shape %v (len %d)", out.Shape(), len(out.Pix))
	}
	for i := 0; i < len(out.Pix); i += 3 {
		if out.Pix[i] != 10 || out.Pix[i+1] != 20 || out.Pix[i+2] != 30 {
			t.Fatalf("uniform color changed at %d: %v", i, out.Pix[i:i+3])
		}
	}

	if _, err := Resize(Images{Channels: 2}, 3); err == nil {
		t.Fatal("expected error for unsupported channel count")
	}
}

func TestCropThenResizeDiffersFromResize(t *testing.T) {
	p := writeEpisode(t, t.TempDir(), "ep.npz", fixture{frames: 2, height: 120, width: 160})

	cropped, err := LoadEpisode(p, LoadOptions{Skip: 1, CropSize: 100, ResizeSize: 64})
	if err != nil {
		t.Fatalf("crop+resize load failed: %v", err)
	}
	direct, err := LoadEpisode(p, LoadOptions{Skip: 1, ResizeSize: 64})
	if err != nil {
		t.Fatalf("resize load failed: %v", err)
	}
	for _, ep := range []*Episode{cropped, direct} {
		if ep.FrontImages.Height != 64 || ep.FrontImages.Width != 64 {
			t.Fatalf("expected 64x64 frames, got %v", ep.FrontImages.Shape())
		}
	}
	if bytes.Equal(cropped.FrontImages.Pix, direct.FrontImages.Pix) {
		t.Fatal("crop-then-resize produced the same pixels as resize alone")
	}
}
