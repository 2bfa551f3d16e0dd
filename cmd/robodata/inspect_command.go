package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/robodata/datasets"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showLengths bool
	var batchSize int

	cmd := &cobra.Command{
		Use:   "inspect <split_dir>",
		Short: "Show the arrays of a written train or test split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, false)
			if err != nil {
				return err
			}

			split, err := datasets.ReadSplit(args[0])
			if err != nil {
				return err
			}
			logger.Debug("split loaded", "dir", split.Dir, "episodes", split.Len())

			rows := [][]string{
				{datasets.MasksFile, formatShape(split.Masks.Shape)},
				{datasets.FrontImagesFile, formatShape(split.FrontImages.Shape)},
				{datasets.SideImagesFile, formatShape(split.SideImages.Shape)},
				{datasets.WrenchesFile, formatShape(split.Wrenches.Shape)},
				{datasets.JointsFile, formatShape(split.Joints.Shape)},
			}
			headers := []string{"Array", "Shape"}
			// an empty split has nothing to put on a device
			if split.Len() > 0 {
				t, err := split.Tensors()
				if err != nil {
					return err
				}
				headers = append(headers, "Tensor")
				for i, tensor := range []*tensors.Tensor{t.Masks, t.FrontImages, t.SideImages, t.Wrenches, t.Joints} {
					rows[i] = append(rows[i], tensor.Shape().String())
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows))

			lengths := split.Lengths()
			fmt.Fprintf(out, "%d episodes, %d valid frames\n", len(lengths), sum(lengths))
			if showLengths {
				fmt.Fprintf(out, "lengths: %v\n", lengths)
			}

			if batchSize > 0 {
				batches, err := countBatches(split, batchSize)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d batches of up to %d episodes\n", batches, batchSize)
			}

			// bounds live next to the split directories
			parent := filepath.Dir(filepath.Clean(args[0]))
			for _, name := range []string{datasets.JointBoundsFile, datasets.WrenchBoundsFile} {
				b, err := datasets.ReadBounds(filepath.Join(parent, name))
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s min=%v max=%v\n", name, b.Min, b.Max)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLengths, "lengths", false, "Print the valid frame count of every episode")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Report how many training batches of this size the split yields")
	return cmd
}

func countBatches(split *datasets.SplitArrays, batchSize int) (int, error) {
	ds, err := datasets.NewSplitDataset(split, batchSize, 0)
	if err != nil {
		return 0, err
	}
	n := 0
	for {
		_, _, _, err := ds.Yield()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
