package datasets

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// SplitDataset serves a written split to a gomlx training loop in batches of
// whole episodes. It follows the gomlx train.Dataset shape: Yield returns
// io.EOF at the end of each epoch and Reset starts the next one.
//
// Yield returns inputs [front_images, side_images, wrenches, joints] and the
// masks as the single label so losses can drop padded frames.
type SplitDataset struct {
	Split     *SplitArrays
	BatchSize int
	// Shuffle reorders episodes on every Reset using the seeded generator.
	Shuffle bool

	order []int
	next  int
	rng   *rand.Rand
}

// NewSplitDataset returns a dataset over s. seed drives shuffling.
func NewSplitDataset(s *SplitArrays, batchSize int, seed int64) (*SplitDataset, error) {
	if s == nil {
		return nil, errors.New("split cannot be nil")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", batchSize)
	}
	d := &SplitDataset{
		Split:     s,
		BatchSize: batchSize,
		rng:       rand.New(rand.NewSource(seed)),
	}
	d.Reset()
	return d, nil
}

// Name returns the split directory name, e.g. "train".
func (d *SplitDataset) Name() string {
	return filepath.Base(d.Split.Dir)
}

// Reset restarts the epoch.
func (d *SplitDataset) Reset() {
	n := d.Split.Len()
	if cap(d.order) < n {
		d.order = make([]int, n)
	}
	d.order = d.order[:n]
	for i := range d.order {
		d.order[i] = i
	}
	if d.Shuffle {
		d.rng.Shuffle(n, func(i, j int) { d.order[i], d.order[j] = d.order[j], d.order[i] })
	}
	d.next = 0
}

// Yield returns the next batch. The last batch of an epoch may be short.
func (d *SplitDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.next >= len(d.order) {
		return nil, nil, nil, io.EOF
	}
	end := min(d.next+d.BatchSize, len(d.order))
	indices := d.order[d.next:end]
	d.next = end

	s := d.Split
	inputs = []*tensors.Tensor{
		streamTensor(s.FrontImages.Subset(indices)),
		streamTensor(s.SideImages.Subset(indices)),
		streamTensor(s.Wrenches.Subset(indices)),
		streamTensor(s.Joints.Subset(indices)),
	}
	labels = []*tensors.Tensor{streamTensor(s.Masks.Subset(indices))}
	return d, inputs, labels, nil
}

func streamTensor[T uint8 | float32](s Stream[T]) *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(s.Data, s.Shape...)
}
