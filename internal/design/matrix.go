// Package design builds interaction-expanded design matrices from typed
// tables. The builder one-hot encodes every categorical level (no dropped
// baseline), appends every pairwise product of predictor columns including
// self-products, and prunes zero-variance columns. The surviving column
// schema is frozen so held-out data is transformed through exactly the same
// columns in exactly the same order.
package design

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tspthomas/BDS/internal/dataset"
)

// baseTerm is one main-effect column before interaction expansion: either a
// numeric field or a single indicator level of a categorical field.
type baseTerm struct {
	Field   string
	Level   string // indicator level; empty for numeric fields
	Numeric bool
	Name    string
}

// term is one column of the final matrix. Right is -1 for a main effect;
// otherwise the column is the rowwise product of the two base terms.
type term struct {
	Left, Right int
	Name        string
}

// Schema is the frozen column layout of a built design matrix. The column
// set is determined entirely by the data seen at Build time and is applied
// unchanged to any other table.
type Schema struct {
	Outcome string

	base   []baseTerm
	terms  []term
	levels map[string][]string // observed levels per categorical field

	// Candidate counts before zero-variance pruning.
	CandidateMains        int
	CandidateInteractions int
}

// NumColumns returns the number of surviving columns.
func (s *Schema) NumColumns() int { return len(s.terms) }

// ColumnNames returns the surviving column names in matrix order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.terms))
	for i, tm := range s.terms {
		names[i] = tm.Name
	}
	return names
}

// Build derives the schema from t, treating every column except outcome as
// a predictor, and returns the schema, the design matrix, and the outcome
// vector. The outcome column must be numeric.
func Build(t *dataset.Table, outcome string) (*Schema, *mat.Dense, []float64, error) {
	y, err := t.Numeric(outcome)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("design: outcome: %w", err)
	}

	s := &Schema{Outcome: outcome, levels: make(map[string][]string)}
	for _, name := range t.Names() {
		if name == outcome {
			continue
		}
		kind, err := t.Kind(name)
		if err != nil {
			return nil, nil, nil, err
		}
		switch kind {
		case dataset.Numeric:
			s.base = append(s.base, baseTerm{Field: name, Numeric: true, Name: name})
		case dataset.Categorical:
			levels, err := t.Levels(name)
			if err != nil {
				return nil, nil, nil, err
			}
			s.levels[name] = levels
			for _, lv := range levels {
				s.base = append(s.base, baseTerm{
					Field: name,
					Level: lv,
					Name:  name + "=" + lv,
				})
			}
		}
	}
	if len(s.base) == 0 {
		return nil, nil, nil, fmt.Errorf("design: no predictor columns besides outcome %q", outcome)
	}

	cols, err := s.baseColumns(t)
	if err != nil {
		return nil, nil, nil, err
	}

	// Candidate terms: mains in base order, then unordered pairs including
	// self-products, in (left, right) order.
	b := len(s.base)
	var candidates []term
	for i := 0; i < b; i++ {
		candidates = append(candidates, term{Left: i, Right: -1, Name: s.base[i].Name})
	}
	s.CandidateMains = b
	for i := 0; i < b; i++ {
		for j := i; j < b; j++ {
			candidates = append(candidates, term{
				Left:  i,
				Right: j,
				Name:  s.base[i].Name + ":" + s.base[j].Name,
			})
		}
	}
	s.CandidateInteractions = len(candidates) - b

	n := t.NumRows()
	var kept [][]float64
	for _, tm := range candidates {
		col := termColumn(tm, cols, n)
		if constant(col) {
			continue
		}
		s.terms = append(s.terms, tm)
		kept = append(kept, col)
	}
	if len(kept) == 0 {
		return nil, nil, nil, fmt.Errorf("design: every candidate column is constant")
	}

	return s, columnsToDense(kept, n), y, nil
}

// Apply transforms another table through the frozen schema and returns its
// design matrix and outcome vector. A missing field, a non-numeric outcome,
// or a categorical level not observed at Build time is an error; no new
// columns are ever introduced.
func (s *Schema) Apply(t *dataset.Table) (*mat.Dense, []float64, error) {
	y, err := t.Numeric(s.Outcome)
	if err != nil {
		return nil, nil, fmt.Errorf("design: outcome: %w", err)
	}
	cols, err := s.baseColumns(t)
	if err != nil {
		return nil, nil, err
	}
	n := t.NumRows()
	out := make([][]float64, len(s.terms))
	for i, tm := range s.terms {
		out[i] = termColumn(tm, cols, n)
	}
	return columnsToDense(out, n), y, nil
}

// baseColumns materializes every base term from t, validating that the
// table carries the schema's fields with the expected kinds and levels.
func (s *Schema) baseColumns(t *dataset.Table) ([][]float64, error) {
	// Validate categorical levels once per field rather than per term.
	for field, known := range s.levels {
		vals, err := t.Categorical(field)
		if err != nil {
			return nil, fmt.Errorf("design: %w", err)
		}
		allowed := make(map[string]struct{}, len(known))
		for _, lv := range known {
			allowed[lv] = struct{}{}
		}
		for i, v := range vals {
			if _, ok := allowed[v]; !ok {
				return nil, fmt.Errorf("design: column %q row %d: level %q not present when the schema was built", field, i+1, v)
			}
		}
	}

	n := t.NumRows()
	cols := make([][]float64, len(s.base))
	for bi, bt := range s.base {
		if bt.Numeric {
			vals, err := t.Numeric(bt.Field)
			if err != nil {
				return nil, fmt.Errorf("design: %w", err)
			}
			cols[bi] = vals
			continue
		}
		vals, err := t.Categorical(bt.Field)
		if err != nil {
			return nil, fmt.Errorf("design: %w", err)
		}
		ind := make([]float64, n)
		for i, v := range vals {
			if v == bt.Level {
				ind[i] = 1
			}
		}
		cols[bi] = ind
	}
	return cols, nil
}

// termColumn computes one matrix column from materialized base columns.
func termColumn(tm term, cols [][]float64, n int) []float64 {
	if tm.Right == -1 {
		out := make([]float64, n)
		copy(out, cols[tm.Left])
		return out
	}
	out := make([]float64, n)
	l, r := cols[tm.Left], cols[tm.Right]
	for i := 0; i < n; i++ {
		out[i] = l[i] * r[i]
	}
	return out
}

func constant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

func columnsToDense(cols [][]float64, n int) *mat.Dense {
	X := mat.NewDense(n, len(cols), nil)
	for j, col := range cols {
		X.SetCol(j, col)
	}
	return X
}
