package consolidate

import (
	"reflect"
	"slices"
	"testing"

	"golang.org/x/text/language"

	"tocidx/common"
	"tocidx/records"
)

func refs(rr ...string) []records.PageRef {
	out := make([]records.PageRef, 0, len(rr))
	for _, r := range rr {
		out = append(out, records.PageRef(r))
	}
	return out
}

func sampleBatches() []records.Batch {
	return []records.Batch{
		{
			Outline: []records.OutlineEntry{
				{Title: "Intro", Level: 1, PageRef: "1"},
				{Title: "Background", Level: 2, PageRef: "3"},
			},
			Index: []records.IndexEntry{
				{Term: "Cell", PageRefs: refs("1")},
				{Term: "dna", PageRefs: refs("4", "2"), Context: ""},
			},
		},
		{}, // failed extraction
		{
			Outline: []records.OutlineEntry{
				{Title: "Methods", Level: 1, PageRef: "12"},
				{Title: "Appendix", Level: 1, PageRef: "Appendix A"},
			},
			Index: []records.IndexEntry{
				{Term: "cell", PageRefs: refs("12", "1")},
				{Term: "DNA", PageRefs: refs("2"), Context: "double helix"},
				{Term: "  ", PageRefs: refs("7")},
				{Term: "ångström", PageRefs: refs("9")},
				{Term: "Zebra", PageRefs: refs("xii")},
			},
		},
	}
}

func TestConsolidate_Idempotent(t *testing.T) {
	for _, policy := range []common.OutlineDedup{common.OutlineDedupAuto, common.OutlineDedupTitle, common.OutlineDedupTitlePage} {
		t.Run(policy.String(), func(t *testing.T) {
			opts := Options{Policy: policy, Language: language.English}
			first := Consolidate(sampleBatches(), opts)
			second := Consolidate([]records.Batch{first.AsBatch()}, opts)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("consolidation is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
			}
		})
	}
}

func TestConsolidate_EndToEnd(t *testing.T) {
	batches := []records.Batch{
		{
			Outline: []records.OutlineEntry{{Title: "Intro", Level: 1, PageRef: "1"}},
			Index:   []records.IndexEntry{{Term: "Cell", PageRefs: refs("1")}},
		},
		{
			Outline: []records.OutlineEntry{{Title: "Intro", Level: 1, PageRef: "12"}},
			Index:   []records.IndexEntry{{Term: "cell", PageRefs: refs("12")}},
		},
	}
	ds := Consolidate(batches, Options{Policy: common.OutlineDedupTitle})

	wantOutline := []records.OutlineEntry{{Title: "Intro", Level: 1, PageRef: "1"}}
	if !reflect.DeepEqual(ds.Outline, wantOutline) {
		t.Errorf("Outline = %+v, want %+v", ds.Outline, wantOutline)
	}
	if len(ds.Index) != 1 {
		t.Fatalf("Index has %d entries, want 1: %+v", len(ds.Index), ds.Index)
	}
	if ds.Index[0].Term != "Cell" || !slices.Equal(ds.Index[0].PageRefs, refs("1", "12")) {
		t.Errorf("Index[0] = %+v, want Cell [1 12]", ds.Index[0])
	}
}

func TestConsolidate_RefsUnion(t *testing.T) {
	ds := Consolidate(sampleBatches(), Options{})

	var cell, dna *records.IndexEntry
	for i := range ds.Index {
		switch ds.Index[i].Term {
		case "Cell":
			cell = &ds.Index[i]
		case "DNA":
			dna = &ds.Index[i]
		}
	}
	if cell == nil || dna == nil {
		t.Fatalf("missing merged terms in %+v", ds.Index)
	}
	if !slices.Equal(cell.PageRefs, refs("1", "12")) {
		t.Errorf("Cell refs = %v", cell.PageRefs)
	}
	if !slices.Equal(dna.PageRefs, refs("2", "4")) {
		t.Errorf("DNA refs = %v", dna.PageRefs)
	}
	if dna.Context != "double helix" {
		t.Errorf("DNA context = %q, want first non-empty", dna.Context)
	}
}

func TestConsolidate_MajorityCasing(t *testing.T) {
	var index []records.IndexEntry
	for range 3 {
		index = append(index, records.IndexEntry{Term: "dna", PageRefs: refs("1")})
	}
	for range 5 {
		index = append(index, records.IndexEntry{Term: "DNA", PageRefs: refs("2")})
	}
	ds := Consolidate([]records.Batch{{Index: index}}, Options{})
	if len(ds.Index) != 1 || ds.Index[0].Term != "DNA" {
		t.Errorf("Index = %+v, want single DNA entry", ds.Index)
	}
}

func TestConsolidate_DropsEmptyTerms(t *testing.T) {
	ds := Consolidate(sampleBatches(), Options{})
	for _, e := range ds.Index {
		if e.Term == "" {
			t.Errorf("empty term survived: %+v", e)
		}
		for _, r := range e.PageRefs {
			if r == "7" {
				t.Errorf("refs of empty term leaked into %q", e.Term)
			}
		}
	}
}

func TestConsolidate_IndexOrder(t *testing.T) {
	ds := Consolidate(sampleBatches(), Options{Language: language.English})
	var terms []string
	for _, e := range ds.Index {
		terms = append(terms, e.Term)
	}
	want := []string{"ångström", "Cell", "DNA", "Zebra"}
	if !slices.Equal(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestConsolidate_OutlinePolicy(t *testing.T) {
	chapters := []records.Batch{
		{Outline: []records.OutlineEntry{{Title: "Chapter 1", Level: 1, PageRef: "5"}}},
		{Outline: []records.OutlineEntry{{Title: "chapter  1 ", Level: 1, PageRef: "40"}}},
	}

	t.Run("title keeps first occurrence", func(t *testing.T) {
		ds := Consolidate(chapters, Options{Policy: common.OutlineDedupTitle})
		if len(ds.Outline) != 1 || ds.Outline[0].PageRef != "5" {
			t.Errorf("Outline = %+v, want single entry at page 5", ds.Outline)
		}
	})

	t.Run("title and page keeps both", func(t *testing.T) {
		ds := Consolidate(chapters, Options{Policy: common.OutlineDedupTitlePage})
		if len(ds.Outline) != 2 {
			t.Errorf("Outline = %+v, want 2 entries", ds.Outline)
		}
	})

	t.Run("auto without sub-levels", func(t *testing.T) {
		ds := Consolidate(chapters, Options{Policy: common.OutlineDedupAuto})
		if len(ds.Outline) != 1 {
			t.Errorf("Outline = %+v, want 1 entry", ds.Outline)
		}
	})

	t.Run("auto with sub-levels", func(t *testing.T) {
		batches := append(slices.Clone(chapters), records.Batch{
			Outline: []records.OutlineEntry{{Title: "Details", Level: 2, PageRef: "41"}},
		})
		ds := Consolidate(batches, Options{Policy: common.OutlineDedupAuto})
		if len(ds.Outline) != 3 {
			t.Errorf("Outline = %+v, want 3 entries", ds.Outline)
		}
	})

	t.Run("max depth drops deeper levels", func(t *testing.T) {
		batches := append(slices.Clone(chapters), records.Batch{
			Outline: []records.OutlineEntry{{Title: "Details", Level: 2, PageRef: "41"}},
		})
		ds := Consolidate(batches, Options{Policy: common.OutlineDedupAuto, MaxDepth: 1})
		if len(ds.Outline) != 1 || ds.Outline[0].Title != "Chapter 1" {
			t.Errorf("Outline = %+v, want only Chapter 1", ds.Outline)
		}
	})
}

func TestConsolidate_OutlineOrder(t *testing.T) {
	batches := []records.Batch{{
		Outline: []records.OutlineEntry{
			{Title: "Ten", Level: 1, PageRef: "10"},
			{Title: "Preface", Level: 1, PageRef: "Preface"},
			{Title: "Two", Level: 1, PageRef: "2"},
			{Title: "Two again", Level: 0, PageRef: "2"},
			{Title: "", Level: 1, PageRef: "1"},
		},
	}}
	ds := Consolidate(batches, Options{})
	var titles []string
	for _, e := range ds.Outline {
		titles = append(titles, e.Title)
		if e.Level < 1 {
			t.Errorf("level of %q not normalized: %d", e.Title, e.Level)
		}
	}
	want := []string{"Two", "Two again", "Ten", "Preface"}
	if !slices.Equal(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestConsolidate_Empty(t *testing.T) {
	ds := Consolidate(nil, Options{})
	if len(ds.Outline) != 0 || len(ds.Index) != 0 {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
}
