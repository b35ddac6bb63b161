package consolidate

import (
	"unicode"
	"unicode/utf8"
)

type tally struct {
	form  string
	count int
	first int
}

// Vote picks display form among spelling variants of the same term. Most
// frequent form wins, on equal counts form starting with upper case letter is
// preferred, then the one seen first.
func Vote(variants []string) string {
	var tallies []*tally
	byForm := make(map[string]*tally, len(variants))
	for i, v := range variants {
		t, ok := byForm[v]
		if !ok {
			t = &tally{form: v, first: i}
			byForm[v] = t
			tallies = append(tallies, t)
		}
		t.count++
	}

	var best *tally
	for _, t := range tallies {
		if best == nil || better(t, best) {
			best = t
		}
	}
	if best == nil {
		return ""
	}
	return best.form
}

func better(a, b *tally) bool {
	if a.count != b.count {
		return a.count > b.count
	}
	if ua, ub := upperFirst(a.form), upperFirst(b.form); ua != ub {
		return ua
	}
	return a.first < b.first
}

func upperFirst(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
