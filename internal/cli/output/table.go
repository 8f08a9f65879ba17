// Package output renders cohortdb-cli command results for a terminal.
package output

import (
	"io"
	"text/tabwriter"
)

// Table is a simple ASCII table, rendered with aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w with a tab-aligned writer.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(t.Headers) > 0 {
		if err := writeRow(tw, t.Headers); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := writeRow(tw, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if _, err := w.Write([]byte("\t")); err != nil {
				return err
			}
		}
		if _, err := w.Write([]byte(cell)); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("\n"))
	return err
}
