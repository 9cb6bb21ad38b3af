// Package fmtout renders docmd's terminal output: status lines, aligned
// tables, and JSON, all through an error-latching writer so command code
// can print freely and check once at the end.
package fmtout

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrWriter wraps a writer, latching its first error and dropping all
// writes after it.
type ErrWriter struct {
	io.Writer
	Err error
}

func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// Printer writes status-glyph lines to a terminal.
type Printer struct {
	Out *ErrWriter
}

func NewPrinter(w io.Writer) *Printer {
	if ew, ok := w.(*ErrWriter); ok {
		return &Printer{Out: ew}
	}
	return &Printer{Out: &ErrWriter{Writer: w}}
}

func (p *Printer) Successf(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "✓ "+format+"\n", args...)
}

func (p *Printer) Failuref(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "✗ "+format+"\n", args...)
}

func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "ℹ "+format+"\n", args...)
}

// Date reshapes an RFC 3339 service timestamp into the short local form
// shown in listings; anything unparseable passes through untouched.
func Date(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Table writes rows under a header, columns padded to the widest cell.
func Table(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := utf8.RuneCountInString(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	ew := &ErrWriter{Writer: w}
	writeRow := func(cells []string) {
		var sb strings.Builder
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			// no padding after the final column
			if i < len(cells)-1 {
				if pad := widths[i] - utf8.RuneCountInString(cell); pad > 0 {
					sb.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		sb.WriteByte('\n')
		io.WriteString(ew, sb.String())
	}

	writeRow(header)
	underline := make([]string, len(header))
	for i, n := range widths {
		underline[i] = strings.Repeat("-", n)
	}
	writeRow(underline)
	for _, row := range rows {
		writeRow(row)
	}
	return ew.Err
}

// JSON writes v indented, for --format json.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
