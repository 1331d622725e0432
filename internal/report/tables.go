// Package report renders the analysis artifacts: summary tables to a
// writer and plots to PNG files. It only consumes computed values, so the
// computational packages stay free of any presentation dependency.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// SelectionRow summarizes one model-selection rule.
type SelectionRow struct {
	Criterion string
	Lambda    float64
	NonZero   int
}

// WriteSelectionTable renders the variable-selection-count summary.
func WriteSelectionTable(w io.Writer, rows []SelectionRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"criterion", "lambda", "nonzero coefficients"})
	for _, r := range rows {
		table.Append([]string{
			r.Criterion,
			fmt.Sprintf("%.6f", r.Lambda),
			fmt.Sprintf("%d", r.NonZero),
		})
	}
	table.Render()
}

// MisclassRow summarizes classification quality at one cutoff.
type MisclassRow struct {
	Scope       string
	Cutoff      float64
	Sensitivity float64
	Specificity float64
	Misclass    float64
}

// WriteMisclassTable renders the misclassification-rate summary.
func WriteMisclassTable(w io.Writer, rows []MisclassRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"scope", "cutoff", "sensitivity", "specificity", "misclass rate"})
	for _, r := range rows {
		table.Append([]string{
			r.Scope,
			fmt.Sprintf("%.2f", r.Cutoff),
			fmt.Sprintf("%.3f", r.Sensitivity),
			fmt.Sprintf("%.3f", r.Specificity),
			fmt.Sprintf("%.3f", r.Misclass),
		})
	}
	table.Render()
}
