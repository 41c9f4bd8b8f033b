// Package render draws simulated shot paths and training curves.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/okian/railshot/internal/domain/geometry"
	"github.com/okian/railshot/internal/domain/model"
	"github.com/okian/railshot/internal/domain/neural"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

var (
	tableColor   = color.RGBA{R: 20, G: 110, B: 50, A: 255}
	pathColor    = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	startColor   = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	targetColor  = color.RGBA{R: 200, G: 30, B: 30, A: 220}
	cushionColor = color.RGBA{R: 230, G: 160, B: 20, A: 220}
)

// Renderer writes plots in a single format.
type Renderer struct {
	width  vg.Length
	height vg.Length
	format string
}

// New creates a Renderer. The default is an 8x4 inch PNG, matching the
// table's aspect ratio.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{width: 8 * vg.Inch, height: 4 * vg.Inch, format: FormatPNG}
	for _, opt := range opts {
		opt(r)
	}
	switch r.format {
	case FormatPNG, FormatSVG, FormatPDF:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, r.format)
	}
	return r, nil
}

// Format reports the output format.
func (r *Renderer) Format() string { return r.format }

// Path draws the table outline, the traced path, the start and target points
// and every cushion contact.
func (r *Renderer) Path(w io.Writer, table geometry.Table, res model.GeometryResult) error { //nolint:gocritic // hugeParam
	if len(res.Path) == 0 {
		return fmt.Errorf("render.path: %w", ErrEmptyPath)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d-cushion path, difficulty %.1f", len(res.Cushions), res.Difficulty)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, table.Width
	p.Y.Min, p.Y.Max = 0, table.Height

	outline, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: 0}, {X: table.Width, Y: 0}, {X: table.Width, Y: table.Height}, {X: 0, Y: table.Height}, {X: 0, Y: 0},
	})
	if err != nil {
		return err
	}
	outline.Color = tableColor
	outline.Width = vg.Points(2)
	p.Add(outline)

	line, err := plotter.NewLine(xys(res.Path))
	if err != nil {
		return err
	}
	line.Color = pathColor
	line.Width = vg.Points(1.2)
	p.Add(line)
	p.Legend.Add("path", line)

	if len(res.Cushions) > 0 {
		pts := make([]model.Point, len(res.Cushions))
		for i, c := range res.Cushions {
			pts[i] = c.Point
		}
		sc, err := plotter.NewScatter(xys(pts))
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = cushionColor
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("cushions", sc)

		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys(pts), Labels: numbers(len(pts))})
		if err != nil {
			return err
		}
		p.Add(labels)
	}

	for _, marker := range []struct {
		name string
		at   model.Point
		col  color.Color
	}{
		{"start", res.Start, startColor},
		{"target", res.Target, targetColor},
	} {
		sc, err := plotter.NewScatter(plotter.XYs{{X: marker.at.X, Y: marker.at.Y}})
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = marker.col
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(marker.name, sc)
	}

	return r.write(w, p)
}

// Loss draws the per-epoch training loss of a report.
func (r *Renderer) Loss(w io.Writer, rep neural.Report) error { //nolint:gocritic // hugeParam
	if len(rep.Losses) == 0 {
		return fmt.Errorf("render.loss: %w", ErrEmptyPath)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Training loss over %d samples", rep.Samples)
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "mse"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rep.Losses))
	for i, l := range rep.Losses {
		pts[i] = plotter.XY{X: float64(i + 1), Y: l}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = pathColor
	line.Width = vg.Points(1)
	p.Add(line)

	return r.write(w, p)
}

func (r *Renderer) write(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(r.width, r.height, r.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func xys(points []model.Point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, pt := range points {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return out
}

func numbers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}
