// Package dataset provides the typed in-memory table the analysis pipeline
// passes between stages, CSV ingestion, and categorical recoding.
package dataset

import (
	"fmt"
	"sort"
)

// Kind is the type of a table column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string levels.
	Categorical
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a single named column of one kind.
type Column struct {
	Name string
	Kind Kind
	Nums []float64 // set when Kind == Numeric
	Cats []string  // set when Kind == Categorical
}

func (c Column) len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Cats)
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.nrows }

// Names returns column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("dataset: no column %q", name)
	}
	return t.cols[i].Kind, nil
}

func (t *Table) addColumn(c Column) error {
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("dataset: duplicate column %q", c.Name)
	}
	if len(t.cols) == 0 {
		t.nrows = c.len()
	} else if c.len() != t.nrows {
		return fmt.Errorf("dataset: column %q has %d rows, table has %d", c.Name, c.len(), t.nrows)
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// AddNumeric appends a numeric column.
func (t *Table) AddNumeric(name string, vals []float64) error {
	return t.addColumn(Column{Name: name, Kind: Numeric, Nums: vals})
}

// AddCategorical appends a categorical column.
func (t *Table) AddCategorical(name string, vals []string) error {
	return t.addColumn(Column{Name: name, Kind: Categorical, Cats: vals})
}

// Numeric returns the values of a numeric column.
func (t *Table) Numeric(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	if t.cols[i].Kind != Numeric {
		return nil, fmt.Errorf("dataset: column %q is %s, want numeric", name, t.cols[i].Kind)
	}
	return t.cols[i].Nums, nil
}

// Categorical returns the values of a categorical column.
func (t *Table) Categorical(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	if t.cols[i].Kind != Categorical {
		return nil, fmt.Errorf("dataset: column %q is %s, want categorical", name, t.cols[i].Kind)
	}
	return t.cols[i].Cats, nil
}

// Levels returns the sorted distinct values of a categorical column.
func (t *Table) Levels(name string) ([]string, error) {
	vals, err := t.Categorical(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var levels []string
	for _, v := range vals {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			levels = append(levels, v)
		}
	}
	sort.Strings(levels)
	return levels, nil
}

// Select returns a new table holding the named columns in the given order.
// Column data is shared, not copied.
func (t *Table) Select(names ...string) (*Table, error) {
	out := NewTable()
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("dataset: no column %q", name)
		}
		if err := out.addColumn(t.cols[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SubsetRows returns a new table with the given rows, in order.
func (t *Table) SubsetRows(idx []int) (*Table, error) {
	for _, i := range idx {
		if i < 0 || i >= t.nrows {
			return nil, fmt.Errorf("dataset: row index %d out of range [0,%d)", i, t.nrows)
		}
	}
	out := NewTable()
	for _, c := range t.cols {
		nc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Numeric {
			nc.Nums = make([]float64, len(idx))
			for r, i := range idx {
				nc.Nums[r] = c.Nums[i]
			}
		} else {
			nc.Cats = make([]string, len(idx))
			for r, i := range idx {
				nc.Cats[r] = c.Cats[i]
			}
		}
		if err := out.addColumn(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// replace swaps the named column for a new one, keeping its position.
func (t *Table) replace(name string, c Column) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("dataset: no column %q", name)
	}
	if c.len() != t.nrows {
		return fmt.Errorf("dataset: column %q has %d rows, table has %d", c.Name, c.len(), t.nrows)
	}
	if c.Name != name {
		if _, exists := t.index[c.Name]; exists {
			return fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		delete(t.index, name)
		t.index[c.Name] = i
	}
	t.cols[i] = c
	return nil
}
