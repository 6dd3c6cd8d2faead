// Package plot renders stored waveforms to image files.
package plot

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/jj-spice/pkg/circuit"
)

var ErrNoResults = errors.New("no results to plot")

type Options struct {
	Title  string
	YLabel string
	// Nodes are 1-based unknown indices to draw. Empty means every node.
	Nodes  []int
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults(numNodes int) Options {
	if o.Title == "" {
		o.Title = "Transient"
	}
	if o.YLabel == "" {
		o.YLabel = "V"
	}
	if len(o.Nodes) == 0 {
		for n := 1; n <= numNodes; n++ {
			o.Nodes = append(o.Nodes, n)
		}
	}
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 4 * vg.Inch
	}
	return o
}

// SavePNG draws one line per selected node against time. The image format
// follows the file extension, so .svg and .pdf work too.
func SavePNG(results []circuit.Result, numNodes int, path string, opts Options) error {
	if len(results) == 0 {
		return ErrNoResults
	}
	opts = opts.withDefaults(numNodes)

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	width := len(results[0].Solution)
	for i, node := range opts.Nodes {
		if node < 1 || node > width {
			return fmt.Errorf("node %d outside solution of size %d", node, width)
		}

		pts := make(plotter.XYs, len(results))
		for k, r := range results {
			pts[k].X = r.Time
			pts[k].Y = r.Solution[node-1]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("node %d: %w", node, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("V(%d)", node), line)
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
