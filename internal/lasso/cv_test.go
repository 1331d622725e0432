package lasso

import (
	"math/rand"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAssignFoldsBalanced(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	folds := assignFolds(10, 3, rng)
	if len(folds) != 10 {
		t.Fatalf("got %d assignments, want 10", len(folds))
	}
	counts := make(map[int]int)
	for _, f := range folds {
		if f < 0 || f >= 3 {
			t.Fatalf("fold %d out of range", f)
		}
		counts[f]++
	}
	for f := 0; f < 3; f++ {
		if counts[f] < 3 || counts[f] > 4 {
			t.Errorf("fold %d has %d rows, want 3 or 4", f, counts[f])
		}
	}
}

func TestCrossValidateGaussian(t *testing.T) {
	n := 80
	X := mat.NewDense(n, 3, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := float64((i * 17) % 23)
		x1 := float64((i * 5) % 11)
		x2 := float64((i * 3) % 7)
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		X.Set(i, 2, x2)
		y[i] = 3*x0 - 2*x1 + float64(i%5)
	}

	cfg := DefaultConfig()
	cfg.NLambda = 30
	rng := rand.New(rand.NewSource(7))
	cv, err := CrossValidate(X, y, FamilyGaussian, cfg, 4, rng)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}

	if len(cv.Lambdas) != cfg.NLambda || len(cv.Mean) != cfg.NLambda || len(cv.SE) != cfg.NLambda {
		t.Fatalf("curve lengths %d/%d/%d, want %d", len(cv.Lambdas), len(cv.Mean), len(cv.SE), cfg.NLambda)
	}
	for i, se := range cv.SE {
		if se < 0 {
			t.Fatalf("SE[%d] = %g negative", i, se)
		}
	}
	if cv.MinIndex < 0 || cv.MinIndex >= cfg.NLambda {
		t.Fatalf("MinIndex %d out of range", cv.MinIndex)
	}
	// One-SE picks a larger (earlier) lambda whose error stays in band.
	if cv.OneSEIndex > cv.MinIndex {
		t.Errorf("OneSEIndex %d after MinIndex %d", cv.OneSEIndex, cv.MinIndex)
	}
	if cv.Mean[cv.OneSEIndex] > cv.Mean[cv.MinIndex]+cv.SE[cv.MinIndex]+1e-12 {
		t.Errorf("one-SE mean %.6f outside band", cv.Mean[cv.OneSEIndex])
	}

	// With a strong signal the selected penalty should beat the heaviest one.
	if cv.Mean[cv.MinIndex] >= cv.Mean[0] {
		t.Errorf("minimum CV error %.4f not below lambda_max error %.4f", cv.Mean[cv.MinIndex], cv.Mean[0])
	}
}

func TestCrossValidateReproducible(t *testing.T) {
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64((i*13)%17))
		y[i] = float64(i) + 0.5*X.At(i, 1)
	}
	cfg := DefaultConfig()
	cfg.NLambda = 10

	a, err := CrossValidate(X, y, FamilyGaussian, cfg, 5, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	b, err := CrossValidate(X, y, FamilyGaussian, cfg, 5, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	for i := range a.Mean {
		if a.Mean[i] != b.Mean[i] {
			t.Fatalf("same seed, different CV curve at %d: %g vs %g", i, a.Mean[i], b.Mean[i])
		}
	}
	if a.MinIndex != b.MinIndex || a.OneSEIndex != b.OneSEIndex {
		t.Fatal("same seed, different selections")
	}
}

func TestCrossValidateDegenerateFold(t *testing.T) {
	// One positive among ten rows: whichever half excludes it leaves a
	// single-class training set.
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
	}
	y[0] = 1

	_, err := CrossValidate(X, y, FamilyBinomial, DefaultConfig(), 2, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected degenerate fold error")
	}
	if !strings.Contains(err.Error(), "single outcome class") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCrossValidateRejectsBadFoldCount(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []float64{1, 2, 3, 4}
	if _, err := CrossValidate(X, y, FamilyGaussian, DefaultConfig(), 1, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error for k=1")
	}
	if _, err := CrossValidate(X, y, FamilyGaussian, DefaultConfig(), 5, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error for k > n")
	}
}

func TestSubsetRows(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	sub := SubsetRows(X, []int{2, 0})
	want := mat.NewDense(2, 2, []float64{5, 6, 1, 2})
	if !mat.Equal(sub, want) {
		t.Fatalf("subset = %v, want %v", mat.Formatted(sub), mat.Formatted(want))
	}
}
