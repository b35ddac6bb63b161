package pdf

import (
	"errors"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

type pageInfo struct {
	w, h float64
	err  error
}

// Body is the original document which pages go verbatim into the composed
// one. All page geometry is read when body is opened.
type Body struct {
	Path  string
	Title string
	// Bookmarks counts entries of the outline body already has.
	Bookmarks int

	pages []pageInfo
}

// OpenBody reads page structure of the PDF document.
func OpenBody(path string) (b *Body, err error) {
	// parser panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("unable to parse body document %s: %v", path, r)
		}
	}()

	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open body document: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if n <= 0 {
		return nil, fmt.Errorf("body document %s has no pages", path)
	}

	b = &Body{
		Path:      path,
		Title:     strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text()),
		Bookmarks: countOutline(r.Outline()) - 1,
		pages:     make([]pageInfo, n),
	}
	for i := range n {
		p := r.Page(i + 1)
		if p.V.IsNull() {
			b.pages[i].err = fmt.Errorf("page %d is missing", i+1)
			continue
		}
		b.pages[i].w, b.pages[i].h, b.pages[i].err = pageSize(p.V)
	}
	return b, nil
}

func (b *Body) PageCount() int {
	return len(b.pages)
}

// PageSize returns visible size of the 0-based page taking rotation into
// account.
func (b *Body) PageSize(i int) (float64, float64, error) {
	if i < 0 || i >= len(b.pages) {
		return 0, 0, fmt.Errorf("page %d is out of range", i+1)
	}
	p := b.pages[i]
	return p.w, p.h, p.err
}

// inherited looks for page attribute walking up the page tree.
func inherited(page lpdf.Value, key string) lpdf.Value {
	for v := page; v.Kind() == lpdf.Dict; v = v.Key("Parent") {
		if a := v.Key(key); !a.IsNull() {
			return a
		}
	}
	return lpdf.Value{}
}

func pageSize(page lpdf.Value) (float64, float64, error) {
	box := inherited(page, "MediaBox")
	if box.Kind() != lpdf.Array || box.Len() != 4 {
		return 0, 0, errors.New("page has no valid media box")
	}
	llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
	urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
	w, h := urx-llx, ury-lly
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("page has empty media box [%g %g %g %g]", llx, lly, urx, ury)
	}
	if rotate := inherited(page, "Rotate").Int64(); rotate%180 != 0 {
		w, h = h, w
	}
	return w, h, nil
}

func countOutline(o lpdf.Outline) int {
	n := 1
	for _, c := range o.Child {
		n += countOutline(c)
	}
	return n
}

// PageTexts extracts plain text of every page, pages which cannot be read
// produce empty text.
func PageTexts(path string) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("unable to parse document %s: %v", path, r)
		}
	}()

	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	texts = make([]string, n)
	for i := range n {
		p := r.Page(i + 1)
		if p.V.IsNull() {
			continue
		}
		texts[i], _ = pageText(p)
	}
	return texts, nil
}

func pageText(p lpdf.Page) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("text extraction panic: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}
