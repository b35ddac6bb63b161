// Package records defines records produced by page extraction and the
// canonical dataset built from them.
package records

import (
	"encoding/json"
	"slices"
	"strings"
)

// OutlineEntry is a heading found on a page.
type OutlineEntry struct {
	Title   string  `json:"title"`
	Level   int     `json:"level"`
	PageRef PageRef `json:"pageRef"`
}

// IndexEntry is an index term with all pages it appears on.
type IndexEntry struct {
	Term     string    `json:"term"`
	PageRefs []PageRef `json:"pageRefs"`
	Context  string    `json:"context,omitempty"`
}

// UnmarshalJSON understands both single "pageRef" (as extraction reports it)
// and "pageRefs" lists, as well as "contextSnippet" naming.
func (e *IndexEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Term     string    `json:"term"`
		PageRef  *PageRef  `json:"pageRef"`
		Page     *PageRef  `json:"page"`
		PageRefs []PageRef `json:"pageRefs"`
		Context  string    `json:"context"`
		Snippet  string    `json:"contextSnippet"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Term = raw.Term
	e.PageRefs = slices.Clone(raw.PageRefs)
	for _, r := range []*PageRef{raw.PageRef, raw.Page} {
		if r != nil && len(*r) > 0 {
			e.PageRefs = append(e.PageRefs, *r)
		}
	}
	e.Context = raw.Context
	if len(strings.TrimSpace(e.Context)) == 0 {
		e.Context = raw.Snippet
	}
	return nil
}

// Batch is a single extraction result for some pages of the body.
type Batch struct {
	Outline []OutlineEntry `json:"outline"`
	Index   []IndexEntry   `json:"index"`
}

// Empty reports whether batch carries no records at all.
func (b Batch) Empty() bool {
	return len(b.Outline) == 0 && len(b.Index) == 0
}

// Dataset is consolidated, deduplicated and ordered set of records.
type Dataset struct {
	Outline []OutlineEntry `json:"outline"`
	Index   []IndexEntry   `json:"index"`
}

// AsBatch presents dataset as a single batch, consolidating it again must
// produce the same dataset.
func (d Dataset) AsBatch() Batch {
	return Batch{Outline: d.Outline, Index: d.Index}
}

// MaxLevel returns deepest outline level present.
func (d Dataset) MaxLevel() int {
	level := 0
	for _, e := range d.Outline {
		level = max(level, e.Level)
	}
	return level
}
