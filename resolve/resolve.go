// Package resolve maps extracted page references onto pages of the composed
// document.
//
// Mapping assumes extracted numbers are 1-based and contiguous relative to
// the body. Documents with restarting or repeating printed numbers (roman
// front matter, renumbered appendices) resolve on the best effort basis only.
package resolve

import (
	"math"
	"strconv"

	"tocidx/common"
	"tocidx/records"
)

// ResolvePhysicalPage returns 0-based physical page for the reference. Refs
// without digits point to the first body page, anything else is clamped to
// the body range. frontMatterPages is accepted for symmetry with display
// computation, body position already accounts for it.
func ResolvePhysicalPage(ref records.PageRef, frontMatterPages, bodyStart, bodyPages int) int {
	_ = frontMatterPages

	n, ok := ref.Number()
	if !ok || bodyPages <= 0 {
		return bodyStart
	}
	last := bodyStart + bodyPages - 1
	// guard against overflow for absurd references
	if n-1 > last-bodyStart {
		return last
	}
	return max(bodyStart, bodyStart+n-1)
}

// Resolver carries everything needed to turn page references into link
// targets and displayed numbers for a single composition run.
type Resolver struct {
	Mode             common.NumberingMode
	FrontMatterPages int
	BodyStart        int
	BodyPages        int
}

// Physical returns 0-based page index in the composed document.
func (r Resolver) Physical(ref records.PageRef) int {
	return ResolvePhysicalPage(ref, r.FrontMatterPages, r.BodyStart, r.BodyPages)
}

// Display returns page number text to show for the reference.
func (r Resolver) Display(ref records.PageRef) string {
	if text, ok := r.FixedDisplay(ref); ok {
		return text
	}
	n, _ := ref.Number()
	return strconv.Itoa(n + r.FrontMatterPages)
}

// FixedDisplay returns displayed text when it does not depend on the number of
// front matter pages: printed mode, refs without digits and numbers too large
// to be shifted are shown as extracted.
func (r Resolver) FixedDisplay(ref records.PageRef) (string, bool) {
	if r.Mode == common.NumberingModePrinted {
		return string(ref), true
	}
	n, ok := ref.Number()
	if !ok || n > math.MaxInt-max(r.FrontMatterPages, 0) {
		return string(ref), true
	}
	return "", false
}
