package dataset

import "fmt"

// Recoder collapses the levels of one categorical column into new labels.
// Several input levels may map to the same output label; an input level
// absent from the mapping is an error, so a recode is total over the levels
// it claims to cover.
type Recoder struct {
	Field   string
	As      string // output column name; empty keeps Field
	Mapping map[string]string
}

// Apply rewrites the column in place (renaming it when As is set) and
// leaves every other column untouched. It is deterministic and keeps no
// state between calls.
func (r Recoder) Apply(t *Table) error {
	vals, err := t.Categorical(r.Field)
	if err != nil {
		return fmt.Errorf("dataset: recode %q: %w", r.Field, err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		mapped, ok := r.Mapping[v]
		if !ok {
			return fmt.Errorf("dataset: recode %q: unmapped level %q at row %d", r.Field, v, i+1)
		}
		out[i] = mapped
	}
	name := r.As
	if name == "" {
		name = r.Field
	}
	return t.replace(r.Field, Column{Name: name, Kind: Categorical, Cats: out})
}
