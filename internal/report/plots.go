package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tspthomas/BDS/internal/dataset"
	"github.com/tspthomas/BDS/internal/evaluate"
	"github.com/tspthomas/BDS/internal/lasso"
)

// Plotter writes plot artifacts into an output directory.
type Plotter struct {
	OutDir string
}

// NewPlotter creates the output directory if needed.
func NewPlotter(outDir string) (*Plotter, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create %s: %w", outDir, err)
	}
	return &Plotter{OutDir: outDir}, nil
}

func (pl *Plotter) save(p *plot.Plot, name string) error {
	path := filepath.Join(pl.OutDir, name)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
}

// RegularizationPath draws every coefficient against log(lambda).
func (pl *Plotter) RegularizationPath(path *lasso.Path) error {
	p := plot.New()
	p.Title.Text = "Regularization path"
	p.X.Label.Text = "log(lambda)"
	p.Y.Label.Text = "coefficient"

	nCoefs := len(path.Coefs[0].Weights)
	for j := 0; j < nCoefs; j++ {
		pts := make(plotter.XYs, len(path.Lambdas))
		for i, lam := range path.Lambdas {
			pts[i].X = math.Log(lam)
			pts[i].Y = path.Coefs[i].Weights[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: path line: %w", err)
		}
		line.Color = palette[j%len(palette)]
		line.Width = vg.Points(0.5)
		p.Add(line)
	}
	return pl.save(p, "path.png")
}

// CVCurve draws mean held-out deviance with one-standard-error bands and
// marks the min and one-SE selections.
func (pl *Plotter) CVCurve(cv *lasso.CVResult) error {
	p := plot.New()
	p.Title.Text = "Cross-validated deviance"
	p.X.Label.Text = "log(lambda)"
	p.Y.Label.Text = "mean deviance"

	mean := make(plotter.XYs, len(cv.Lambdas))
	upper := make(plotter.XYs, len(cv.Lambdas))
	lower := make(plotter.XYs, len(cv.Lambdas))
	for i, lam := range cv.Lambdas {
		x := math.Log(lam)
		mean[i] = plotter.XY{X: x, Y: cv.Mean[i]}
		upper[i] = plotter.XY{X: x, Y: cv.Mean[i] + cv.SE[i]}
		lower[i] = plotter.XY{X: x, Y: cv.Mean[i] - cv.SE[i]}
	}

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("report: cv line: %w", err)
	}
	meanLine.Color = palette[1]
	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)

	for _, band := range []plotter.XYs{upper, lower} {
		line, err := plotter.NewLine(band)
		if err != nil {
			return fmt.Errorf("report: cv band: %w", err)
		}
		line.Color = palette[0]
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
	}

	for i, idx := range []int{cv.MinIndex, cv.OneSEIndex} {
		marker, err := plotter.NewScatter(plotter.XYs{{X: math.Log(cv.Lambdas[idx]), Y: cv.Mean[idx]}})
		if err != nil {
			return fmt.Errorf("report: cv marker: %w", err)
		}
		marker.Color = palette[2+i%2]
		p.Add(marker)
	}
	return pl.save(p, "cv.png")
}

// NamedCurve pairs an ROC curve with its legend label.
type NamedCurve struct {
	Name  string
	Curve evaluate.ROCCurve
}

// ROCPlot draws one or more ROC curves plus the chance diagonal.
func (pl *Plotter) ROCPlot(name string, curves []NamedCurve) error {
	p := plot.New()
	p.Title.Text = "ROC"
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return fmt.Errorf("report: roc diagonal: %w", err)
	}
	diag.Color = color.Gray{Y: 0xaa}
	diag.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(diag)

	for ci, nc := range curves {
		pts := make(plotter.XYs, len(nc.Curve.FPR))
		for i := range nc.Curve.FPR {
			pts[i] = plotter.XY{X: nc.Curve.FPR[i], Y: nc.Curve.TPR[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: roc %s: %w", nc.Name, err)
		}
		line.Color = palette[ci%len(palette)]
		p.Add(line)
		p.Legend.Add(nc.Name, line)
	}
	p.Legend.Top = false
	return pl.save(p, name)
}

// ProbabilityBoxPlot draws fitted probabilities grouped by actual class.
func (pl *Plotter) ProbabilityBoxPlot(probs, labels []float64, positive float64) error {
	p := plot.New()
	p.Title.Text = "Fitted probability by outcome"
	p.Y.Label.Text = "fitted P(default)"

	var neg, pos plotter.Values
	for i, v := range probs {
		if labels[i] == positive {
			pos = append(pos, v)
		} else {
			neg = append(neg, v)
		}
	}
	for i, vals := range []plotter.Values{neg, pos} {
		if len(vals) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), vals)
		if err != nil {
			return fmt.Errorf("report: boxplot: %w", err)
		}
		p.Add(box)
	}
	p.NominalX("no default", "default")
	return pl.save(p, "probabilities.png")
}

// Mosaic draws a mosaic plot of a categorical field against the binary
// outcome: column widths follow the level frequencies, the shaded share of
// each column is the default rate within the level.
func (pl *Plotter) Mosaic(t *dataset.Table, field, outcome string, positive float64) error {
	levels, err := t.Levels(field)
	if err != nil {
		return fmt.Errorf("report: mosaic: %w", err)
	}
	vals, err := t.Categorical(field)
	if err != nil {
		return fmt.Errorf("report: mosaic: %w", err)
	}
	y, err := t.Numeric(outcome)
	if err != nil {
		return fmt.Errorf("report: mosaic: %w", err)
	}

	total := float64(len(vals))
	counts := make(map[string]float64)
	positives := make(map[string]float64)
	for i, v := range vals {
		counts[v]++
		if y[i] == positive {
			positives[v]++
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", field, outcome)
	p.Y.Label.Text = fmt.Sprintf("share with %s=%g", outcome, positive)
	p.X.Label.Text = field

	const gap = 0.01
	x := 0.0
	ticks := make([]plot.Tick, 0, len(levels))
	for _, lv := range levels {
		width := counts[lv] / total
		rate := positives[lv] / counts[lv]

		bottom, err := rect(x, 0, x+width-gap, rate, palette[1])
		if err != nil {
			return fmt.Errorf("report: mosaic: %w", err)
		}
		top, err := rect(x, rate, x+width-gap, 1, color.Gray{Y: 0xdd})
		if err != nil {
			return fmt.Errorf("report: mosaic: %w", err)
		}
		p.Add(bottom, top)
		ticks = append(ticks, plot.Tick{Value: x + width/2, Label: lv})
		x += width
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	return pl.save(p, fmt.Sprintf("mosaic_%s.png", field))
}

func rect(x0, y0, x1, y1 float64, c color.Color) (*plotter.Polygon, error) {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		return nil, err
	}
	poly.Color = c
	return poly, nil
}
