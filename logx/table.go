package logx

import (
	"io"
	"text/tabwriter"
)

// NewTableWriter creates a tabwriter for aligned summary output
func NewTableWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
