package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "Default,duration,history\n1,6,A30\n0,48,A34\n0,12,A32\n")

	tbl, err := LoadCSV(path, []ColumnSpec{
		{Name: "Default", Kind: Numeric},
		{Name: "duration", Kind: Numeric},
		{Name: "history", Kind: Categorical},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	def, err := tbl.Numeric("Default")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, def)
	hist, err := tbl.Categorical("history")
	require.NoError(t, err)
	assert.Equal(t, []string{"A30", "A34", "A32"}, hist)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), GermanColumns())
	assert.Error(t, err)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "Default,duration\n1,6\n")
	_, err := LoadCSV(path, []ColumnSpec{
		{Name: "Default", Kind: Numeric},
		{Name: "history", Kind: Categorical},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
}

func TestLoadCSVNonNumericValue(t *testing.T) {
	path := writeTempCSV(t, "Default,duration\n1,six\n")
	_, err := LoadCSV(path, []ColumnSpec{
		{Name: "Default", Kind: Numeric},
		{Name: "duration", Kind: Numeric},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestLoadGermanCredit(t *testing.T) {
	path := writeTempCSV(t,
		"Default,duration,amount,installment,age,history,purpose,foreign,housing,unused\n"+
			"1,6,1169,4,67,A34,A43,A201,A152,x\n"+
			"0,48,5951,2,22,A32,A40,A201,A151,x\n"+
			"0,12,2096,2,49,A30,A46,A202,A153,x\n")

	tbl, err := LoadGermanCredit(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Default", "duration", "amount", "installment", "age",
		"history", "purpose", "foreign", "rent"}, tbl.Names())

	hist, err := tbl.Categorical("history")
	require.NoError(t, err)
	assert.Equal(t, []string{"terrible", "poor", "good"}, hist)

	purpose, err := tbl.Categorical("purpose")
	require.NoError(t, err)
	assert.Equal(t, []string{"goods/repair", "newcar", "edu"}, purpose)

	rent, err := tbl.Categorical("rent")
	require.NoError(t, err)
	assert.Equal(t, []string{"no", "yes", "no"}, rent)
}

func TestLoadGermanCreditUnknownCode(t *testing.T) {
	path := writeTempCSV(t,
		"Default,duration,amount,installment,age,history,purpose,foreign,housing\n"+
			"1,6,1169,4,67,A99,A43,A201,A152\n")
	_, err := LoadGermanCredit(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped level")
}
