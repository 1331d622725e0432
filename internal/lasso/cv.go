package lasso

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// CVResult holds the cross-validated deviance curve over a lambda grid.
type CVResult struct {
	Lambdas []float64
	Mean    []float64 // mean per-observation held-out deviance per lambda
	SE      []float64 // standard error of the fold means

	MinIndex   int // lambda with minimum mean deviance
	OneSEIndex int // largest lambda within one SE of the minimum
}

// CrossValidate estimates out-of-fold deviance for every lambda on the grid
// that Fit would use on the full data. Folds are assigned from a seeded
// permutation so results are reproducible; fold fits run on cfg.NJobs
// workers.
func CrossValidate(X *mat.Dense, y []float64, family Family, cfg Config, k int, rng *rand.Rand) (*CVResult, error) {
	n, _ := X.Dims()
	if k < 2 {
		return nil, fmt.Errorf("lasso: need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("lasso: %d rows cannot form %d folds", n, k)
	}

	lambdas, err := lambdaGrid(X, y, family, cfg)
	if err != nil {
		return nil, err
	}

	folds := assignFolds(n, k, rng)
	foldDev := make([][]float64, k) // per fold, per lambda

	nJobs := cfg.NJobs
	if nJobs < 1 {
		nJobs = 1
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	work := make(chan int)
	for w := 0; w < nJobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range work {
				dev, err := heldOutDeviance(X, y, family, cfg, lambdas, folds, f)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				foldDev[f] = dev
				mu.Unlock()
			}
		}()
	}
	for f := 0; f < k; f++ {
		work <- f
	}
	close(work)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	cv := &CVResult{
		Lambdas: lambdas,
		Mean:    make([]float64, len(lambdas)),
		SE:      make([]float64, len(lambdas)),
	}
	for i := range lambdas {
		mean := 0.0
		for f := 0; f < k; f++ {
			mean += foldDev[f][i]
		}
		mean /= float64(k)
		varSum := 0.0
		for f := 0; f < k; f++ {
			d := foldDev[f][i] - mean
			varSum += d * d
		}
		cv.Mean[i] = mean
		cv.SE[i] = math.Sqrt(varSum/float64(k-1)) / math.Sqrt(float64(k))
	}

	cv.MinIndex = 0
	for i := range cv.Mean {
		if cv.Mean[i] < cv.Mean[cv.MinIndex] {
			cv.MinIndex = i
		}
	}
	// Lambdas are decreasing, so the first index within one SE is the
	// largest qualifying penalty.
	cv.OneSEIndex = cv.MinIndex
	limit := cv.Mean[cv.MinIndex] + cv.SE[cv.MinIndex]
	for i := 0; i <= cv.MinIndex; i++ {
		if cv.Mean[i] <= limit {
			cv.OneSEIndex = i
			break
		}
	}
	return cv, nil
}

// heldOutDeviance fits the path on every row outside fold f and scores the
// fold rows, returning per-observation deviance per lambda.
func heldOutDeviance(X *mat.Dense, y []float64, family Family, cfg Config, lambdas []float64, folds []int, f int) ([]float64, error) {
	var trainIdx, testIdx []int
	for i, fi := range folds {
		if fi == f {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}
	if len(testIdx) == 0 {
		return nil, fmt.Errorf("lasso: fold %d is empty", f)
	}

	yTrain := subsetVec(y, trainIdx)
	if family == FamilyBinomial && degenerate(yTrain) {
		return nil, fmt.Errorf("lasso: fold %d leaves a training set with a single outcome class", f)
	}

	XTrain := SubsetRows(X, trainIdx)
	XTest := SubsetRows(X, testIdx)
	yTest := subsetVec(y, testIdx)

	quiet := cfg
	quiet.Verbose = false
	path, err := fitPath(XTrain, yTrain, family, quiet, lambdas)
	if err != nil {
		return nil, fmt.Errorf("lasso: fold %d: %w", f, err)
	}

	dev := make([]float64, len(lambdas))
	for i, coefs := range path.Coefs {
		switch family {
		case FamilyGaussian:
			pred, err := coefs.LinearPredictor(XTest)
			if err != nil {
				return nil, err
			}
			rss := 0.0
			for r, p := range pred {
				d := yTest[r] - p
				rss += d * d
			}
			dev[i] = rss / float64(len(yTest))
		case FamilyBinomial:
			prob, err := coefs.Probabilities(XTest)
			if err != nil {
				return nil, err
			}
			dev[i] = binomialDeviance(yTest, prob) / float64(len(yTest))
		}
	}
	return dev, nil
}

// assignFolds deals rows into k folds from a shuffled order.
func assignFolds(n, k int, rng *rand.Rand) []int {
	folds := make([]int, n)
	for i, idx := range rng.Perm(n) {
		folds[idx] = i % k
	}
	return folds
}

func degenerate(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

// SubsetRows copies the given rows of X into a new matrix, in order.
func SubsetRows(X *mat.Dense, idx []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for r, i := range idx {
		for j := 0; j < cols; j++ {
			out.Set(r, j, X.At(i, j))
		}
	}
	return out
}

func subsetVec(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}
