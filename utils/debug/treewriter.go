// Package debug has helpers producing human readable dumps for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines. Nesting is tracked by the writer,
// callers open a level with Enter and close it with the returned function.
type TreeWriter struct {
	b     strings.Builder
	depth int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

// Depth returns current nesting level.
func (tw *TreeWriter) Depth() int {
	return tw.depth
}

func (tw *TreeWriter) Line(format string, args ...any) {
	tw.b.WriteString(strings.Repeat(indent, tw.depth))
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Enter writes a line and nests everything written until returned function
// is called.
func (tw *TreeWriter) Enter(format string, args ...any) func() {
	tw.Line(format, args...)
	tw.depth++
	return func() {
		if tw.depth > 0 {
			tw.depth--
		}
	}
}

// Field writes "label: value", text values are quoted so that leading or
// trailing spaces and control characters extracted from documents are
// visible.
func (tw *TreeWriter) Field(label string, value any) {
	tw.Line("%s: %s", label, formatValue(value))
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return `""`
		}
		return strconv.Quote(v)
	case []string:
		q := make([]string, len(v))
		for i, s := range v {
			q[i] = formatValue(s)
		}
		return "[" + strings.Join(q, " ") + "]"
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
