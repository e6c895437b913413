// Package output provides tab-delimited writers for derived DBASS records.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LabelColumns are the columns written by the splice event classifier.
var LabelColumns = []string{
	"Gene",
	"Alteration",
	"NucleotideSequence",
	"Label",
	"SpliceSiteType",
}

// TabWriter writes rows in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer with the given header columns.
func NewTabWriter(w io.Writer, columns []string) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// Columns returns the header columns.
func (tw *TabWriter) Columns() []string {
	return tw.columns
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single row.
func (tw *TabWriter) Write(values []string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\t\n") {
			return fmt.Errorf("value %q contains a tab or newline", v)
		}
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
