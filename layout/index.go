package layout

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"tocidx/common"
	"tocidx/records"
	"tocidx/resolve"
)

type bucket struct {
	label   string
	entries []records.IndexEntry
}

// BucketOf returns index bucket for the term: upper cased base letter of its
// first character or catchAll when term does not start with a letter.
func BucketOf(term, catchAll string) string {
	r, _ := utf8.DecodeRuneInString(norm.NFD.String(term))
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return catchAll
	}
	return string(unicode.ToUpper(r))
}

// buckets groups entries keeping order of entries and of first appearance of
// every bucket.
func buckets(entries []records.IndexEntry, catchAll string) []bucket {
	var (
		result []bucket
		pos    = make(map[string]int)
	)
	for _, e := range entries {
		label := BucketOf(e.Term, catchAll)
		i, ok := pos[label]
		if !ok {
			i = len(result)
			pos[label] = i
			result = append(result, bucket{label: label})
		}
		result[i].entries = append(result[i].entries, e)
	}
	return result
}

func (c *composer) indexSection() (block, frame) {
	tf := c.s.Index.TitleFont
	title := c.textBlock(c.s.Index.Title, tf, c.g.ContentWidth(), c.s.lineHeight(tf)/2)
	return title, newFrame(c.g, 2, title.height)
}

func (c *composer) headerBlock(label string, width float64) block {
	f := c.s.Index.Header
	lh := c.s.lineHeight(f)
	// half a line of space above every bucket header
	b := c.textBlock(label, f, width, 0)
	for i := range b.runs {
		b.runs[i].dy += lh / 2
		b.runs[i].lineTop += lh / 2
	}
	if b.height > 0 {
		b.height += lh / 2
	}
	return b
}

// indexBlock lays out term followed by comma separated page numbers. Every
// number is a separate run linked to its page, continuation lines are
// indented.
func (c *composer) indexBlock(e records.IndexEntry, res resolve.Resolver, width float64) block {
	var (
		tf, rf = c.s.Index.Term, c.s.Index.Ref
		lh     = max(c.s.lineHeight(tf), c.s.lineHeight(rf))
		hang   = min(c.s.Index.HangingIndent, width/2)
	)

	term := e.Term
	if len(e.PageRefs) > 0 {
		term += ","
	}

	b := newBlock()
	line, x := 0, 0.0
	for i, text := range Wrap(c.m, tf, term, width-hang) {
		dx := 0.0
		if i > 0 {
			dx = hang
		}
		line = i
		x = dx + c.m.StringWidth(tf, text)
		b.addRun(blockRun{
			dx:         dx,
			dy:         float64(i)*lh + baseline(tf, lh),
			lineTop:    float64(i) * lh,
			lineHeight: lh,
			width:      x - dx,
			text:       text,
			font:       tf,
			target:     -1,
		})
	}

	space := c.m.StringWidth(rf, " ")
	fresh := len(b.runs) == 0
	for i, ref := range e.PageRefs {
		text := res.Display(ref)
		if i < len(e.PageRefs)-1 {
			text += ","
		}
		w := c.m.StringWidth(rf, text)
		switch {
		case fresh:
		case x+space+w > width:
			line++
			x = hang
		default:
			x += space
		}
		fresh = false
		b.addRun(blockRun{
			dx:         x,
			dy:         float64(line)*lh + baseline(rf, lh),
			lineTop:    float64(line) * lh,
			lineHeight: lh,
			width:      w,
			text:       text,
			font:       rf,
			target:     res.Physical(ref),
		})
		x += w
	}
	b.height = float64(line+1) * lh
	return b
}

// renderIndex is the third step of the second pass: index section is appended
// after the body, pages are added as flow needs them.
func (c *composer) renderIndex(d *Document, ds *records.Dataset, res resolve.Resolver) error {
	if len(ds.Index) == 0 {
		return nil
	}

	title, f := c.indexSection()
	start := d.PageCount()
	ensure := func(page int) error {
		for d.PageCount() <= start+page {
			if _, err := d.addPage(c.generatedPage(common.PageKindIndex)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := ensure(0); err != nil {
		return err
	}
	d.IndexStart = start
	if err := title.draw(d, start, f.left, f.top, c.g.ContentWidth()); err != nil {
		return err
	}

	cur := startCursor(f)
	for _, bk := range buckets(ds.Index, c.s.Index.CatchAll) {
		header := c.headerBlock(bk.label, f.colWidth)
		for i, e := range bk.entries {
			b := c.indexBlock(e, res, f.colWidth)
			var at cursor
			if i == 0 {
				// header always stays with the first entry of its bucket
				at, cur = cur.place(header.height+b.height, f)
				if err := ensure(at.page); err != nil {
					return err
				}
				if err := header.draw(d, start+at.page, f.columnX(at.column), at.y, f.colWidth); err != nil {
					return err
				}
				at.y += header.height
			} else {
				at, cur = cur.place(b.height, f)
				if err := ensure(at.page); err != nil {
					return err
				}
			}
			if err := b.draw(d, start+at.page, f.columnX(at.column), at.y, f.colWidth); err != nil {
				return err
			}
		}
	}
	d.IndexPages = d.PageCount() - start
	return nil
}
