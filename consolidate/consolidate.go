// Package consolidate merges independently extracted record batches into
// single canonical dataset. Everything here is pure and deterministic, the
// same batches in the same order always produce the same dataset.
package consolidate

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"tocidx/common"
	"tocidx/records"
)

// Options controls consolidation.
type Options struct {
	// Policy used to drop duplicate headings.
	Policy common.OutlineDedup
	// MaxDepth of headings to keep, 0 means no limit.
	MaxDepth int
	// Language used for index collation.
	Language language.Tag
}

// Consolidate flattens batches in order and produces canonical dataset. It
// never fails, failed extraction is expected to arrive as an empty batch.
func Consolidate(batches []records.Batch, opts Options) records.Dataset {
	return records.Dataset{
		Outline: consolidateOutline(batches, opts),
		Index:   consolidateIndex(batches, opts.Language),
	}
}

type outlineKey struct {
	level int
	title string
	page  string
}

func consolidateOutline(batches []records.Batch, opts Options) []records.OutlineEntry {
	var (
		entries   []records.OutlineEntry
		subLevels bool
	)
	for _, b := range batches {
		for _, e := range b.Outline {
			e.Title = collapseSpace(e.Title)
			if len(e.Title) == 0 {
				continue
			}
			e.Level = max(e.Level, 1)
			if opts.MaxDepth > 0 && e.Level > opts.MaxDepth {
				continue
			}
			e.PageRef = records.PageRef(strings.TrimSpace(string(e.PageRef)))
			subLevels = subLevels || e.Level > 1
			entries = append(entries, e)
		}
	}

	policy := opts.Policy.Resolve(subLevels)

	seen := make(map[outlineKey]struct{}, len(entries))
	result := make([]records.OutlineEntry, 0, len(entries))
	for _, e := range entries {
		key := outlineKey{level: e.Level, title: normalizeKey(e.Title)}
		if policy == common.OutlineDedupTitlePage {
			key.page = string(e.PageRef)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, e)
	}

	slices.SortStableFunc(result, func(a, b records.OutlineEntry) int {
		return records.ComparePageRefs(a.PageRef, b.PageRef)
	})
	return result
}

type indexGroup struct {
	key      string
	variants []string
	refs     []records.PageRef
	seenRefs map[records.PageRef]struct{}
	context  string
	display  string
}

func consolidateIndex(batches []records.Batch, lang language.Tag) []records.IndexEntry {
	var (
		groups []*indexGroup
		byKey  = make(map[string]*indexGroup)
	)
	for _, b := range batches {
		for _, e := range b.Index {
			term := collapseSpace(e.Term)
			if len(term) == 0 {
				continue
			}
			key := normalizeKey(term)
			g, ok := byKey[key]
			if !ok {
				g = &indexGroup{key: key, seenRefs: make(map[records.PageRef]struct{})}
				byKey[key] = g
				groups = append(groups, g)
			}
			g.variants = append(g.variants, term)
			for _, r := range e.PageRefs {
				r = records.PageRef(strings.TrimSpace(string(r)))
				if len(r) == 0 {
					continue
				}
				if _, dup := g.seenRefs[r]; dup {
					continue
				}
				g.seenRefs[r] = struct{}{}
				g.refs = append(g.refs, r)
			}
			if len(g.context) == 0 {
				g.context = strings.TrimSpace(e.Context)
			}
		}
	}

	for _, g := range groups {
		g.display = Vote(g.variants)
		slices.SortStableFunc(g.refs, records.ComparePageRefs)
	}

	col := collate.New(lang, collate.IgnoreCase)
	slices.SortStableFunc(groups, func(a, b *indexGroup) int {
		if c := col.CompareString(a.display, b.display); c != 0 {
			return c
		}
		if c := strings.Compare(a.display, b.display); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})

	result := make([]records.IndexEntry, 0, len(groups))
	for _, g := range groups {
		refs := make([]records.PageRef, len(g.refs))
		copy(refs, g.refs)
		result = append(result, records.IndexEntry{
			Term:     g.display,
			PageRefs: refs,
			Context:  g.context,
		})
	}
	return result
}

// normalizeKey produces comparison key: NFC normalized, case folded, with
// collapsed white space.
func normalizeKey(s string) string {
	return cases.Fold().String(norm.NFC.String(collapseSpace(s)))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
