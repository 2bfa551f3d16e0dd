package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/robodata/config"
	"github.com/Noofbiz/robodata/datasets"
)

type makeDatasetFlags struct {
	inDir          string
	outDir         string
	extension      string
	trainKeywords  []string
	testKeywords   []string
	skip           int
	croppedImgSize int
	resizedImgSize int
	workers        int
	quiet          bool
	maskedBounds   bool
	preview        bool
}

func newMakeDatasetCommand(ctx *commandContext) *cobra.Command {
	var flags makeDatasetFlags

	cmd := &cobra.Command{
		Use:   "make-dataset",
		Short: "Convert episode archives into padded train/test arrays",
		Args:  keywordArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ds, err := applyDatasetFlags(cmd, cfg.Dataset, flags)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, flags.quiet)
			if err != nil {
				return err
			}

			opts := datasets.BuildOptions{
				InDir:     ds.InDir,
				OutDir:    ds.OutDir,
				Extension: ds.Extension,
				Load: datasets.LoadOptions{
					Skip:       ds.Skip,
					CropSize:   ds.CroppedImgSize,
					ResizeSize: ds.ResizedImgSize,
				},
				Workers:       ds.Workers,
				TrainKeywords: ds.TrainKeywords,
				TestKeywords:  ds.TestKeywords,
				MaskedBounds:  ds.MaskedBounds,
				Preview:       ds.Preview,
				Logger:        logger,
			}

			var bar *progressbar.ProgressBar
			if !flags.quiet && isTerminal(os.Stderr) {
				opts.OnFilesFound = func(n int) {
					bar = progressbar.NewOptions(n,
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionSetDescription("loading episodes"),
						progressbar.OptionShowCount(),
						progressbar.OptionSetWidth(30),
						progressbar.OptionClearOnFinish(),
					)
				}
				opts.OnLoaded = func(*datasets.Episode) {
					_ = bar.Add(1)
				}
			}

			report, err := datasets.Build(cmd.Context(), opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}
			if !flags.quiet {
				printReport(cmd.OutOrStdout(), ds, report)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.inDir, "in_dir", "./data/", "Directory searched recursively for episode archives")
	f.StringVar(&flags.outDir, "out_dir", "./data/", "Directory the train/test arrays are written to")
	f.StringVar(&flags.extension, "ext", datasets.DefaultExtension, "Episode archive extension")
	f.StringArrayVar(&flags.trainKeywords, "train_keywords", nil, "Substring selecting training episodes; repeat as --train_keywords=A --train_keywords=B, bare flag for none")
	f.StringArrayVar(&flags.testKeywords, "test_keywords", nil, "Substring selecting test episodes; repeat as --test_keywords=A --test_keywords=B, bare flag for none")
	f.Lookup("train_keywords").NoOptDefVal = noKeywords
	f.Lookup("test_keywords").NoOptDefVal = noKeywords
	f.IntVar(&flags.skip, "skip", 1, "Keep every n-th frame")
	f.IntVar(&flags.croppedImgSize, "cropped_img_size", 0, "Center crop images to this square size")
	f.IntVar(&flags.resizedImgSize, "resized_img_size", 0, "Resize images to this square size after cropping")
	f.IntVarP(&flags.workers, "nproc", "j", 1, "Number of episodes loaded in parallel")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log warnings and errors")
	f.BoolVar(&flags.maskedBounds, "masked_bounds", false, "Exclude padded frames from the bounds")
	f.BoolVar(&flags.preview, "preview", false, "Write a joint trajectory PNG per episode")
	return cmd
}

// noKeywords is the value a bare --train_keywords/--test_keywords takes.
const noKeywords = "<none>"

// keywordArgs rejects positional arguments. Keyword flags do not consume the
// next argument, so a stray value most likely belongs to one of them.
func keywordArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf("unexpected argument %q: pass keywords as --train_keywords=%s", args[0], args[0])
}

// applyDatasetFlags layers explicitly set flags over the configured values.
// A bare keyword flag yields an explicit empty list.
func applyDatasetFlags(cmd *cobra.Command, ds config.Dataset, flags makeDatasetFlags) (config.Dataset, error) {
	changed := cmd.Flags().Changed
	if changed("in_dir") {
		ds.InDir = flags.inDir
	}
	if changed("out_dir") {
		ds.OutDir = flags.outDir
	}
	if changed("ext") {
		ds.Extension = flags.extension
	}
	if changed("train_keywords") {
		ds.TrainKeywords = keywordList(flags.trainKeywords)
	}
	if changed("test_keywords") {
		ds.TestKeywords = keywordList(flags.testKeywords)
	}
	if changed("skip") {
		ds.Skip = flags.skip
	}
	if changed("cropped_img_size") {
		ds.CroppedImgSize = flags.croppedImgSize
	}
	if changed("resized_img_size") {
		ds.ResizedImgSize = flags.resizedImgSize
	}
	if changed("nproc") {
		ds.Workers = flags.workers
	}
	if changed("masked_bounds") {
		ds.MaskedBounds = flags.maskedBounds
	}
	if changed("preview") {
		ds.Preview = flags.preview
	}

	cfg := config.Default()
	cfg.Dataset = ds
	if err := cfg.Normalize(); err != nil {
		return ds, err
	}
	if err := cfg.Validate(); err != nil {
		return ds, err
	}
	return cfg.Dataset, nil
}

// keywordList returns the given keywords verbatim, minus bare-flag markers.
// The result is never nil so it is not replaced by derived defaults.
func keywordList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != noKeywords {
			out = append(out, v)
		}
	}
	return out
}

func printReport(w io.Writer, ds config.Dataset, r *datasets.Report) {
	fmt.Fprintln(w, "arguments:")
	fmt.Fprintln(w, renderTable([]string{"Option", "Value"}, [][]string{
		{"in_dir", ds.InDir},
		{"out_dir", ds.OutDir},
		{"extension", ds.Extension},
		{"skip", fmt.Sprint(ds.Skip)},
		{"cropped_img_size", optionalSize(ds.CroppedImgSize)},
		{"resized_img_size", optionalSize(ds.ResizedImgSize)},
		{"nproc", fmt.Sprint(ds.Workers)},
		{"masked_bounds", fmt.Sprint(ds.MaskedBounds)},
	}))

	printFiles(w, "input files:", r.Files)
	fmt.Fprintf(w, "train keywords: %q\n", r.Split.TrainKeywords)
	fmt.Fprintf(w, "test keywords:  %q\n", r.Split.TestKeywords)
	printFiles(w, "train files:", pick(r.Files, r.Split.Train))
	printFiles(w, "test files:", pick(r.Files, r.Split.Test))

	rows := make([][]string, 0, len(r.Outputs))
	for _, o := range r.Outputs {
		rel, err := filepath.Rel(ds.OutDir, o.Path)
		if err != nil {
			rel = o.Path
		}
		rows = append(rows, []string{rel, string(o.Dtype), formatShape(o.Shape), humanize.Bytes(uint64(o.Size))})
	}
	fmt.Fprintln(w, "output files:")
	fmt.Fprintln(w, renderTable([]string{"File", "Dtype", "Shape", "Size"}, rows))
	fmt.Fprintf(w, "run %s: %d episodes, %d train, %d test, max %d frames\n",
		r.RunID, len(r.Files), len(r.Split.Train), len(r.Split.Test), r.MaxFrames)
}

func printFiles(w io.Writer, title string, files []string) {
	fmt.Fprintln(w, title)
	for _, f := range files {
		fmt.Fprintln(w, "    "+f)
	}
}

func pick(files []string, indices []int) []string {
	out := make([]string, len(indices))
	for k, i := range indices {
		out[k] = files[i]
	}
	return out
}

func optionalSize(n int) string {
	if n <= 0 {
		return "none"
	}
	return fmt.Sprint(n)
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
