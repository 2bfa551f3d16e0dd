package datasets

import (
	"errors"
	"io"
	"reflect"
	"slices"
	"testing"
)

// splitOf builds an in-memory split whose joint value for episode i is i.
func splitOf(episodes, frames int) *SplitArrays {
	s := &SplitArrays{
		Dir:         "out/train",
		Masks:       Stream[float32]{Shape: []int{episodes, frames}},
		FrontImages: Stream[uint8]{Shape: []int{episodes, frames, 2, 2, 3}},
		SideImages:  Stream[uint8]{Shape: []int{episodes, frames, 2, 2, 3}},
		Wrenches:    Stream[float32]{Shape: []int{episodes, frames, 6}},
		Joints:      Stream[float32]{Shape: []int{episodes, frames, 1}},
	}
	for i := range episodes {
		for range frames {
			s.Masks.Data = append(s.Masks.Data, 1)
			s.Joints.Data = append(s.Joints.Data, float32(i))
		}
	}
	s.FrontImages.Data = make([]uint8, episodes*frames*12)
	s.SideImages.Data = make([]uint8, episodes*frames*12)
	s.Wrenches.Data = make([]float32, episodes*frames*6)
	return s
}

func drain(t *testing.T, d *SplitDataset) []int {
	var sizes []int
	t.Helper()
	for {
		_, inputs, labels, err := d.Yield()
		if errors.Is(err, io.EOF) {
			return sizes
		}
		if err != nil {
			t.Fatalf("Yield failed: %v", err)
		}
		if len(inputs) != 4 || len(labels) != 1 {
			t.Fatalf("got %d inputs %d labels", len(inputs), len(labels))
		}
		dims := inputs[3].Shape().Dimensions
		sizes = append(sizes, dims[0])
		if !reflect.DeepEqual(dims[1:], []int{3, 1}) {
			t.Fatalf("joint batch dims %v", dims)
		}
		if got := labels[0].Shape().Dimensions; got[0] != dims[0] || got[1] != 3 {
			t.Fatalf("mask batch dims %v", got)
		}
	}
}

func TestSplitDatasetBatches(t *testing.T) {
	d, err := NewSplitDataset(splitOf(5, 3), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name() != "train" {
		t.Fatalf("name %q", d.Name())
	}
	sizes := drain(t, d)
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Fatalf("batch sizes %v", sizes)
	}
	// exhausted until reset
	if _, _, _, err := d.Yield(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	d.Reset()
	if sizes := drain(t, d); len(sizes) != 3 {
		t.Fatalf("second epoch sizes %v", sizes)
	}
}

func TestSplitDatasetShuffleIsSeeded(t *testing.T) {
	order := func(seed int64) []int {
		d, err := NewSplitDataset(splitOf(6, 2), 6, seed)
		if err != nil {
			t.Fatal(err)
		}
		d.Shuffle = true
		d.Reset()
		return slices.Clone(d.order)
	}
	a, b := order(7), order(7)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
	sorted := slices.Sorted(slices.Values(a))
	if !reflect.DeepEqual(sorted, []int{0, 1, 2, 3, 4, 5}) {
		t.Fatalf("shuffle lost episodes: %v", a)
	}
}

func TestNewSplitDatasetValidates(t *testing.T) {
	if _, err := NewSplitDataset(nil, 1, 0); err == nil {
		t.Fatal("expected error for nil split")
	}
	if _, err := NewSplitDataset(splitOf(1, 1), 0, 0); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}
