package layout

import (
	"slices"
	"testing"
)

func TestWrap(t *testing.T) {
	m := monoMeasurer{}
	f := Font{Family: "Courier", Size: 10} // 5pt per rune

	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "hello world", 100, []string{"hello world"}},
		{"wraps", "hello wide world", 45, []string{"hello", "wide", "world"}},
		{"greedy", "a b c d e f", 15, []string{"a b", "c d", "e f"}},
		{"long word", "abcdefghij", 20, []string{"abcd", "efgh", "ij"}},
		{"long word in text", "xy abcdefghij z", 20, []string{"xy", "abcd", "efgh", "ij z"}},
		{"collapses spaces", "  one   two  ", 100, []string{"one two"}},
		{"empty", "   ", 100, nil},
		{"no room", "ab", 0, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(m, f, tt.text, tt.width)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Wrap(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
			for _, line := range got {
				if w := m.StringWidth(f, line); w > tt.width && len([]rune(line)) > 1 {
					t.Errorf("line %q is %v wide, limit %v", line, w, tt.width)
				}
			}
		})
	}
}

func TestCursor(t *testing.T) {
	f := frame{top: 10, firstTop: 30, bottom: 100, columns: 2}

	c := startCursor(f)
	if c.y != 30 || c.page != 0 || c.column != 0 {
		t.Fatalf("startCursor() = %+v", c)
	}

	at, next := c.place(50, f)
	if at != c || next.y != 80 {
		t.Errorf("place() = %+v, %+v", at, next)
	}

	// does not fit, moves to the second column below the title
	at, next = next.place(30, f)
	if at.column != 1 || at.page != 0 || at.y != 30 || next.y != 60 {
		t.Errorf("column break: at %+v, next %+v", at, next)
	}

	// second column overflows, new page starts at the regular top
	at, next = next.place(50, f)
	if at.column != 0 || at.page != 1 || at.y != 10 || next.y != 60 {
		t.Errorf("page break: at %+v, next %+v", at, next)
	}

	// block taller than column stays at column top
	tall := cursor{y: f.top, page: 2}
	at, _ = tall.place(500, f)
	if at != tall {
		t.Errorf("tall block moved: %+v", at)
	}
}
