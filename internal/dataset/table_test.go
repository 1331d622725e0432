package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAddAndAccess(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric("x", []float64{1, 2, 3}))
	require.NoError(t, tbl.AddCategorical("c", []string{"a", "b", "a"}))

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"x", "c"}, tbl.Names())

	x, err := tbl.Numeric("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, x)

	_, err = tbl.Numeric("c")
	assert.Error(t, err, "kind mismatch must error")
	_, err = tbl.Categorical("missing")
	assert.Error(t, err)
}

func TestTableRejectsRaggedAndDuplicateColumns(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric("x", []float64{1, 2, 3}))
	assert.Error(t, tbl.AddNumeric("y", []float64{1, 2}))
	assert.Error(t, tbl.AddNumeric("x", []float64{4, 5, 6}))
}

func TestTableLevelsSorted(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddCategorical("c", []string{"b", "a", "c", "a"}))
	levels, err := tbl.Levels("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, levels)
}

func TestTableSelectAndSubset(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric("x", []float64{1, 2, 3, 4}))
	require.NoError(t, tbl.AddCategorical("c", []string{"a", "b", "a", "b"}))

	sel, err := tbl.Select("c", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "x"}, sel.Names())

	_, err = tbl.Select("nope")
	assert.Error(t, err)

	sub, err := tbl.SubsetRows([]int{3, 1})
	require.NoError(t, err)
	x, err := sub.Numeric("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2}, x)
	c, err := sub.Categorical("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "b"}, c)

	_, err = tbl.SubsetRows([]int{4})
	assert.Error(t, err)
}

func TestRecoderCollapsesManyToOne(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddCategorical("history", []string{"A30", "A31", "A32", "A34"}))

	r := Recoder{
		Field: "history",
		Mapping: map[string]string{
			"A30": "good", "A31": "good", "A32": "poor", "A33": "poor", "A34": "terrible",
		},
	}
	require.NoError(t, r.Apply(tbl))

	vals, err := tbl.Categorical("history")
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "good", "poor", "terrible"}, vals)
}

func TestRecoderUnmappedLevelFails(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddCategorical("history", []string{"A30", "A99"}))

	r := Recoder{Field: "history", Mapping: map[string]string{"A30": "good"}}
	err := r.Apply(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped level")
	assert.Contains(t, err.Error(), "A99")
}

func TestRecoderRenamesColumn(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric("before", []float64{0, 0}))
	require.NoError(t, tbl.AddCategorical("housing", []string{"A151", "A153"}))
	require.NoError(t, tbl.AddNumeric("after", []float64{1, 1}))

	r := Recoder{
		Field:   "housing",
		As:      "rent",
		Mapping: map[string]string{"A151": "yes", "A152": "no", "A153": "no"},
	}
	require.NoError(t, r.Apply(tbl))

	// Renamed in place, order preserved.
	assert.Equal(t, []string{"before", "rent", "after"}, tbl.Names())
	vals, err := tbl.Categorical("rent")
	require.NoError(t, err)
	assert.Equal(t, []string{"yes", "no"}, vals)
	assert.False(t, tbl.Has("housing"))
}

func TestGermanRecodersAreTotal(t *testing.T) {
	inputs := map[string][]string{
		"history": {"A30", "A31", "A32", "A33", "A34"},
		"purpose": {"A40", "A41", "A42", "A43", "A44", "A45", "A46", "A47", "A48", "A49", "A410"},
		"foreign": {"A201", "A202"},
		"housing": {"A151", "A152", "A153"},
	}
	outputs := map[string][]string{
		"history": {"good", "poor", "terrible"},
		"purpose": {"biz", "edu", "goods/repair", "newcar", "usedcar"},
		"foreign": {"foreign", "german"},
		"rent":    {"no", "yes"},
	}

	tbl := NewTable()
	n := len(inputs["purpose"])
	for field, codes := range inputs {
		vals := make([]string, n)
		for i := range vals {
			vals[i] = codes[i%len(codes)]
		}
		require.NoError(t, tbl.AddCategorical(field, vals))
	}

	for _, r := range GermanRecoders() {
		require.NoError(t, r.Apply(tbl), "every documented code must map")
	}

	for field, want := range outputs {
		levels, err := tbl.Levels(field)
		require.NoError(t, err)
		assert.Equal(t, want, levels, "collapsed level set for %s", field)
	}
}
