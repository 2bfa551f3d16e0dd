// Package preview renders quick-look PNG plots of recorded episodes.
package preview

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is a frame-major [frames, dim] signal.
type Series struct {
	Frames int
	Dim    int
	Values []float64
}

// JointTrajectories writes a PNG at path with one line per joint over frames.
func JointTrajectories(path, title string, s Series) error {
	if s.Frames == 0 || s.Dim == 0 {
		return fmt.Errorf("preview %s: empty series", path)
	}
	if len(s.Values) < s.Frames*s.Dim {
		return fmt.Errorf("preview %s: need %d values, got %d", path, s.Frames*s.Dim, len(s.Values))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "joint position"

	ymin, ymax := math.Inf(1), math.Inf(-1)
	for j := range s.Dim {
		xys := make(plotter.XYs, s.Frames)
		for f := range s.Frames {
			v := s.Values[f*s.Dim+j]
			xys[f] = plotter.XY{X: float64(f), Y: v}
			ymin = math.Min(ymin, v)
			ymax = math.Max(ymax, v)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(j)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("joint %d", j), line)
	}

	p.Add(plotter.NewGrid())
	pad := (ymax - ymin) * 0.06
	if pad == 0 {
		pad = 1.0
	}
	p.Y.Min = ymin - pad
	p.Y.Max = ymax + pad
	p.X.Min = 0
	p.X.Max = math.Max(float64(s.Frames-1), 1)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
