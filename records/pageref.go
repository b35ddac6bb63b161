package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// PageRef is a page reference as reported by extraction: a plain number or a
// free form text ("xii", "Page 5", "A-3"). It is never rewritten, only
// reinterpreted when mapped onto output pages.
type PageRef string

// Number returns value of the first run of decimal digits in the reference.
func (r PageRef) Number() (int, bool) {
	s := string(r)
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		// out of range, digits are still digits
		return math.MaxInt, true
	}
	return n, true
}

func (r PageRef) String() string {
	return string(r)
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (r *PageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = PageRef(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("page reference must be number or string: %w", err)
		}
		*r = PageRef(n.String())
	}
	return nil
}

// ComparePageRefs orders references: numeric ones by their number, then all
// non-numeric ones by text. Equal numbers fall back to natural and then byte
// order so the result is total.
func ComparePageRefs(a, b PageRef) int {
	na, oka := a.Number()
	nb, okb := b.Number()
	switch {
	case oka && okb:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		if a == b {
			return 0
		}
		if natural.Less(string(a), string(b)) {
			return -1
		}
		if natural.Less(string(b), string(a)) {
			return 1
		}
		return strings.Compare(string(a), string(b))
	case oka:
		return -1
	case okb:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
