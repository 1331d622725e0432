package lasso

import (
	"fmt"
	"math"
)

// Criterion names a rule for picking one point on a regularization path.
type Criterion int

const (
	// CriterionCVMin picks the lambda with the smallest cross-validated error.
	CriterionCVMin Criterion = iota
	// CriterionCV1SE picks the largest lambda whose cross-validated error is
	// within one standard error of the minimum.
	CriterionCV1SE
	// CriterionAICc minimizes the corrected Akaike information criterion.
	CriterionAICc
	// CriterionAIC minimizes the Akaike information criterion.
	CriterionAIC
	// CriterionBIC minimizes the Bayesian information criterion.
	CriterionBIC
)

func (c Criterion) String() string {
	switch c {
	case CriterionCVMin:
		return "cv.min"
	case CriterionCV1SE:
		return "cv.1se"
	case CriterionAICc:
		return "aicc"
	case CriterionAIC:
		return "aic"
	case CriterionBIC:
		return "bic"
	default:
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
}

// Criteria lists every selection rule in report order.
func Criteria() []Criterion {
	return []Criterion{CriterionCVMin, CriterionCV1SE, CriterionAICc, CriterionAIC, CriterionBIC}
}

// AIC returns deviance + 2k at path index i, where k counts nonzero weights
// plus the intercept.
func (p *Path) AIC(i int) float64 {
	return p.Deviance[i] + 2*float64(p.Df(i))
}

// AICc returns the small-sample corrected AIC. When the correction is
// undefined (n <= k+1) it returns +Inf so the point is never selected.
func (p *Path) AICc(i int) float64 {
	k := float64(p.Df(i))
	n := float64(p.NObs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return p.AIC(i) + 2*k*(k+1)/(n-k-1)
}

// BIC returns deviance + k*log(n) at path index i.
func (p *Path) BIC(i int) float64 {
	return p.Deviance[i] + float64(p.Df(i))*math.Log(float64(p.NObs))
}

// Select picks coefficients from the path by the given criterion. The two
// cross-validation criteria require a CVResult computed over the same lambda
// sequence; the information criteria ignore cv.
func (p *Path) Select(c Criterion, cv *CVResult) (Coefficients, error) {
	switch c {
	case CriterionCVMin, CriterionCV1SE:
		if cv == nil {
			return Coefficients{}, fmt.Errorf("lasso: %s selection requires cross-validation results", c)
		}
		if len(cv.Lambdas) != len(p.Lambdas) {
			return Coefficients{}, fmt.Errorf("lasso: cross-validation grid has %d lambdas, path has %d", len(cv.Lambdas), len(p.Lambdas))
		}
		if c == CriterionCVMin {
			return p.Coefs[cv.MinIndex], nil
		}
		return p.Coefs[cv.OneSEIndex], nil
	case CriterionAICc, CriterionAIC, CriterionBIC:
		return p.selectIC(c)
	default:
		return Coefficients{}, fmt.Errorf("lasso: unknown criterion %v", c)
	}
}

func (p *Path) selectIC(c Criterion) (Coefficients, error) {
	if len(p.Coefs) == 0 {
		return Coefficients{}, fmt.Errorf("lasso: empty path")
	}
	score := func(i int) float64 {
		switch c {
		case CriterionAICc:
			return p.AICc(i)
		case CriterionAIC:
			return p.AIC(i)
		default:
			return p.BIC(i)
		}
	}
	best := 0
	bestScore := score(0)
	for i := 1; i < len(p.Coefs); i++ {
		if s := score(i); s < bestScore {
			best, bestScore = i, s
		}
	}
	if math.IsInf(bestScore, 1) {
		return Coefficients{}, fmt.Errorf("lasso: %s is undefined everywhere on the path", c)
	}
	return p.Coefs[best], nil
}
