package layout

import (
	"strings"
)

// Wrap breaks text into lines not wider than width using greedy word
// accumulation. Words which do not fit on a line by themselves are broken
// between runes. Empty text produces no lines.
func Wrap(m Measurer, f Font, text string, width float64) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		candidate := word
		if len(line) > 0 {
			candidate = line + " " + word
		}
		if m.StringWidth(f, candidate) <= width {
			line = candidate
			continue
		}
		if len(line) > 0 {
			lines = append(lines, line)
			line = ""
		}
		if m.StringWidth(f, word) <= width {
			line = word
			continue
		}
		pieces := breakWord(m, f, word, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// breakWord splits single word into pieces fitting the width, every piece
// holds at least one rune.
func breakWord(m Measurer, f Font, word string, width float64) []string {
	var (
		pieces []string
		piece  []rune
	)
	for _, r := range word {
		if len(piece) > 0 && m.StringWidth(f, string(append(piece, r))) > width {
			pieces = append(pieces, string(piece))
			piece = piece[:0:0]
		}
		piece = append(piece, r)
	}
	if len(piece) > 0 {
		pieces = append(pieces, string(piece))
	}
	return pieces
}
