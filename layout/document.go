package layout

import (
	"errors"
	"fmt"
	"slices"

	"tocidx/common"
)

// TextRun is a single piece of text placed on a page, Y is the baseline.
type TextRun struct {
	X, Y  float64
	Width float64
	Text  string
	Font  Font
}

// Rect is area on a page, X and Y are of the top left corner.
type Rect struct {
	X, Y, W, H float64
}

// Link is clickable area on the host page pointing to the physical target
// page (0-based).
type Link struct {
	Rect   Rect
	Target int
}

// Rule is a horizontal line on the baseline, dotted rules are used as
// leaders.
type Rule struct {
	X1, X2, Y float64
	Dotted    bool
}

// Page is a single page of the composed document. Body pages carry index of
// the source page and nothing else.
type Page struct {
	Kind   common.PageKind
	Source int
	Width  float64
	Height float64
	Runs   []TextRun
	Links  []Link
	Rules  []Rule
}

// Bookmark is an entry of navigation tree, Level is 0-based.
type Bookmark struct {
	Title string
	Level int
	Page  int
	Y     float64
}

var ErrFrozen = errors.New("document is frozen")

// Document is the result of composition. It is built during render and
// frozen afterwards, frozen document rejects any mutation.
type Document struct {
	pages     []Page
	bookmarks []Bookmark

	FrontMatterPages int
	BodyStart        int
	BodyPages        int
	IndexStart       int
	IndexPages       int
	// Clipped counts contents entries which did not fit allocated pages.
	Clipped int

	frozen bool
}

func (d *Document) addPage(p Page) (int, error) {
	if d.frozen {
		return 0, ErrFrozen
	}
	d.pages = append(d.pages, p)
	return len(d.pages) - 1, nil
}

func (d *Document) page(i int) (*Page, error) {
	if d.frozen {
		return nil, ErrFrozen
	}
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d is out of range [0, %d)", i, len(d.pages))
	}
	return &d.pages[i], nil
}

// AddRun places text on the page.
func (d *Document) AddRun(page int, r TextRun) error {
	p, err := d.page(page)
	if err != nil {
		return err
	}
	p.Runs = append(p.Runs, r)
	return nil
}

// AddLink places navigation link on the page.
func (d *Document) AddLink(page int, l Link) error {
	p, err := d.page(page)
	if err != nil {
		return err
	}
	p.Links = append(p.Links, l)
	return nil
}

// AddRule draws line on the page.
func (d *Document) AddRule(page int, r Rule) error {
	p, err := d.page(page)
	if err != nil {
		return err
	}
	p.Rules = append(p.Rules, r)
	return nil
}

// AddBookmark appends navigation tree entry.
func (d *Document) AddBookmark(b Bookmark) error {
	if d.frozen {
		return ErrFrozen
	}
	d.bookmarks = append(d.bookmarks, b)
	return nil
}

// Freeze makes document read only.
func (d *Document) Freeze() {
	d.frozen = true
}

func (d *Document) Frozen() bool {
	return d.frozen
}

func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns copy of the page.
func (d *Document) Page(i int) Page {
	p := d.pages[i]
	p.Runs = slices.Clone(p.Runs)
	p.Links = slices.Clone(p.Links)
	p.Rules = slices.Clone(p.Rules)
	return p
}

// Bookmarks returns navigation tree in document order.
func (d *Document) Bookmarks() []Bookmark {
	return slices.Clone(d.bookmarks)
}

// Validate checks internal consistency: every page has size, body pages
// reference body and every link points inside the document.
func (d *Document) Validate() error {
	if len(d.pages) == 0 {
		return errors.New("document has no pages")
	}
	for i, p := range d.pages {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("page %d has invalid size %.2fx%.2f", i, p.Width, p.Height)
		}
		if p.Kind == common.PageKindBody && (p.Source < 0 || p.Source >= d.BodyPages) {
			return fmt.Errorf("page %d references unknown body page %d", i, p.Source)
		}
		for _, l := range p.Links {
			if l.Target < 0 || l.Target >= len(d.pages) {
				return fmt.Errorf("link on page %d points to missing page %d", i, l.Target)
			}
		}
	}
	for _, b := range d.bookmarks {
		if b.Page < 0 || b.Page >= len(d.pages) {
			return fmt.Errorf("bookmark %q points to missing page %d", b.Title, b.Page)
		}
	}
	return nil
}
