package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspthomas/BDS/internal/dataset"
	"github.com/tspthomas/BDS/internal/evaluate"
	"github.com/tspthomas/BDS/internal/lasso"
)

func TestWriteSelectionTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSelectionTable(&buf, []SelectionRow{
		{Criterion: "cv.min", Lambda: 0.0123, NonZero: 21},
		{Criterion: "bic", Lambda: 0.2, NonZero: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "cv.min")
	assert.Contains(t, out, "21")
	assert.Contains(t, out, "bic")
}

func TestWriteMisclassTable(t *testing.T) {
	var buf bytes.Buffer
	WriteMisclassTable(&buf, []MisclassRow{
		{Scope: "in-sample", Cutoff: 0.2, Sensitivity: 0.61, Specificity: 0.72, Misclass: 0.31},
	})
	out := buf.String()
	assert.Contains(t, out, "in-sample")
	assert.Contains(t, out, "0.310")
}

func TestPlotterWritesFiles(t *testing.T) {
	dir := t.TempDir()
	pl, err := NewPlotter(dir)
	require.NoError(t, err)

	path := &lasso.Path{
		Family:  lasso.FamilyBinomial,
		Lambdas: []float64{0.5, 0.25, 0.125},
		Coefs: []lasso.Coefficients{
			{Lambda: 0.5, Weights: []float64{0, 0}},
			{Lambda: 0.25, Weights: []float64{0.4, 0}},
			{Lambda: 0.125, Weights: []float64{0.8, -0.2}},
		},
		Deviance: []float64{130, 110, 100},
		NObs:     100,
	}
	require.NoError(t, pl.RegularizationPath(path))

	cv := &lasso.CVResult{
		Lambdas:    []float64{0.5, 0.25, 0.125},
		Mean:       []float64{1.35, 1.1, 1.15},
		SE:         []float64{0.05, 0.04, 0.06},
		MinIndex:   1,
		OneSEIndex: 1,
	}
	require.NoError(t, pl.CVCurve(cv))

	curve := evaluate.ROCCurve{
		FPR: []float64{0, 0.25, 0.5, 1},
		TPR: []float64{0, 0.6, 0.9, 1},
	}
	require.NoError(t, pl.ROCPlot("roc.png", []NamedCurve{
		{Name: "in-sample", Curve: curve},
		{Name: "out-of-sample", Curve: curve},
	}))

	probs := []float64{0.1, 0.7, 0.4, 0.8, 0.2, 0.9}
	labels := []float64{0, 1, 0, 1, 0, 1}
	require.NoError(t, pl.ProbabilityBoxPlot(probs, labels, 1))

	tbl := dataset.NewTable()
	require.NoError(t, tbl.AddNumeric("Default", []float64{1, 0, 0, 1, 0, 1}))
	require.NoError(t, tbl.AddCategorical("history", []string{"good", "good", "poor", "poor", "terrible", "terrible"}))
	require.NoError(t, pl.Mosaic(tbl, "history", "Default", 1))

	for _, name := range []string{"path.png", "cv.png", "roc.png", "probabilities.png", "mosaic_history.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected %s", name)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestNewPlotterBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := NewPlotter(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
