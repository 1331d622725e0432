package dataset

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ColumnSpec declares how to interpret one CSV column.
type ColumnSpec struct {
	Name string
	Kind Kind
}

// LoadCSV reads a headered CSV into a Table, keeping only the columns named
// in specs, in spec order. A missing column or a non-numeric value in a
// numeric column is an error.
func LoadCSV(path string, specs []ColumnSpec) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	// Everything is read as strings; the specs decide what must parse as a
	// number, so type sniffing cannot reinterpret a categorical code.
	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, df.Error())
	}

	present := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		present[name] = true
	}

	t := NewTable()
	for _, spec := range specs {
		if !present[spec.Name] {
			return nil, fmt.Errorf("dataset: %s has no column %q", path, spec.Name)
		}
		col := df.Col(spec.Name)
		if col.Err != nil {
			return nil, fmt.Errorf("dataset: column %q: %w", spec.Name, col.Err)
		}
		switch spec.Kind {
		case Numeric:
			vals := col.Float()
			for i, v := range vals {
				if math.IsNaN(v) {
					return nil, fmt.Errorf("dataset: column %q row %d: value %q is not numeric", spec.Name, i+1, col.Elem(i).String())
				}
			}
			if err := t.AddNumeric(spec.Name, vals); err != nil {
				return nil, err
			}
		case Categorical:
			if err := t.AddCategorical(spec.Name, col.Records()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("dataset: column %q: unknown kind %d", spec.Name, spec.Kind)
		}
	}
	return t, nil
}
