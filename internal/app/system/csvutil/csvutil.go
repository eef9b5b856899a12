// Package csvutil writes CSV downloads that open cleanly in Excel.
package csvutil

import (
	"encoding/csv"
	"io"
)

// BOM is the UTF-8 byte order mark Excel uses to detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer is a csv.Writer with CRLF line endings that has already emitted
// the BOM.
type Writer struct {
	*csv.Writer
}

// NewWriter writes the BOM to w and returns a CRLF writer over it.
func NewWriter(w io.Writer) (*Writer, error) {
	if _, err := w.Write(BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &Writer{Writer: cw}, nil
}

// WriteTable writes header followed by rows and flushes.
func (w *Writer) WriteTable(header []string, rows [][]string) error {
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// SanitizeField neutralizes spreadsheet formula injection by prefixing
// values that start with =, +, - or @ with a quote.
func SanitizeField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
