package config

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// most file systems limit name to 255 bytes, leave room for extension
const maxFileNameBytes = 200

// CleanFileName removes characters not allowed in file names and keeps the
// name within reasonable length. Leading dots are dropped so result is never
// hidden or relative.
func CleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) && !unicode.IsSpace(sym) || strings.ContainsRune(forbiddenInName, sym) {
			return -1
		}
		return sym
	}, in), ".")
	if out = limitName(out); len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// limitName collapses white space and cuts name on rune boundary.
func limitName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if len(name) <= maxFileNameBytes {
		return name
	}
	cut := maxFileNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return strings.TrimSpace(name[:cut])
}
