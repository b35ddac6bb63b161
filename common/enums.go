// Package common keeps enums shared by configuration and the engines, so
// that layout and resolve do not have to import config.
package common

// How page numbers of the body are presented in generated sections.
// ENUM(sequential, printed)
type NumberingMode int

// Outline deduplication policy.
// ENUM(auto, title, titlePage)
type OutlineDedup int

// Resolve picks concrete policy for auto mode: title only when sub-levels are
// not possible.
func (d OutlineDedup) Resolve(subLevels bool) OutlineDedup {
	if d != OutlineDedupAuto {
		return d
	}
	if subLevels {
		return OutlineDedupTitlePage
	}
	return OutlineDedupTitle
}

// Kind of page in the composed document.
// ENUM(contents, body, index)
type PageKind int
