package layout

import (
	"cmp"
	"slices"

	"tocidx/records"
	"tocidx/resolve"
)

func (c *composer) outlineFont(level int) Font {
	if level <= 1 {
		return c.s.Outline.Level1
	}
	return c.s.Outline.LevelN
}

// outlineSection returns section title block and flow frame for contents.
func (c *composer) outlineSection() (block, frame) {
	tf := c.s.Outline.TitleFont
	title := c.textBlock(c.s.Outline.Title, tf, c.g.ContentWidth(), c.s.lineHeight(tf)/2)
	return title, newFrame(c.g, 1, title.height)
}

// outlineBlock lays out single heading: wrapped title, dotted leader and
// right aligned page number. Width reserved for the number does not depend on
// front matter size, so block height is the same in both passes. Text which
// is shown as extracted widens the reservation, when it takes more than half
// of the line the number goes onto its own line under the title.
func (c *composer) outlineBlock(e records.OutlineEntry, res resolve.Resolver) block {
	var (
		width   = c.g.ContentWidth()
		f       = c.outlineFont(e.Level)
		lh      = c.s.lineHeight(f)
		bl      = baseline(f, lh)
		gap     = c.s.Outline.LeaderGap
		reserve = c.m.StringWidth(f, c.s.Outline.NumberReserve)
		indent  = min(c.s.Outline.IndentStep*float64(max(e.Level-1, 0)), width/2)
	)

	if text, ok := res.FixedDisplay(e.PageRef); ok {
		reserve = max(reserve, c.m.StringWidth(f, text))
	}
	ownLine := reserve > (width-indent)/2
	titleWidth := width - indent - reserve - 2*gap
	if ownLine {
		titleWidth = width - indent
	}

	b := newBlock()
	b.rowTarget = res.Physical(e.PageRef)

	lines := Wrap(c.m, f, e.Title, titleWidth)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		b.addRun(blockRun{
			dx:         indent,
			dy:         float64(i)*lh + bl,
			lineTop:    float64(i) * lh,
			lineHeight: lh,
			width:      c.m.StringWidth(f, line),
			text:       line,
			font:       f,
			target:     -1,
		})
	}
	b.height = float64(len(lines)) * lh

	last := b.runs[len(b.runs)-1]
	number := res.Display(e.PageRef)
	nw := c.m.StringWidth(f, number)
	if ownLine {
		b.addRun(blockRun{
			dx:         max(width-nw, indent),
			dy:         last.dy + lh,
			lineTop:    last.lineTop + lh,
			lineHeight: lh,
			width:      nw,
			text:       number,
			font:       f,
			target:     -1,
		})
		b.height += lh
		return b
	}
	b.addRun(blockRun{
		dx:         width - nw,
		dy:         last.dy,
		lineTop:    last.lineTop,
		lineHeight: lh,
		width:      nw,
		text:       number,
		font:       f,
		target:     -1,
	})
	if x1, x2 := last.dx+last.width+gap, width-nw-gap; x2 > x1 {
		b.rules = append(b.rules, blockRule{x1: x1, x2: x2, dy: last.dy})
	}
	return b
}

// measureOutline is the first pass: simulate contents flow and count pages.
func (c *composer) measureOutline(ds *records.Dataset) int {
	_, f := c.outlineSection()
	cur := startCursor(f)
	for _, e := range ds.Outline {
		_, cur = cur.place(c.outlineBlock(e, resolve.Resolver{Mode: c.s.Numbering}).height, f)
	}
	return cur.page + 1
}

// renderOutline draws contents onto pages allocated by the first pass.
// Entries which do not fit are clipped and counted.
func (c *composer) renderOutline(d *Document, ds *records.Dataset, res resolve.Resolver) error {
	title, f := c.outlineSection()
	if err := title.draw(d, 0, f.left, f.top, c.g.ContentWidth()); err != nil {
		return err
	}
	cur := startCursor(f)
	for _, e := range ds.Outline {
		b := c.outlineBlock(e, res)
		var at cursor
		at, cur = cur.place(b.height, f)
		if at.page >= d.FrontMatterPages {
			d.Clipped++
			continue
		}
		if err := b.draw(d, at.page, f.columnX(at.column), at.y, f.colWidth); err != nil {
			return err
		}
	}
	return nil
}

// outlineBookmarks adds navigation tree in page order, levels are normalized
// so that a child never appears without its parent level.
func (c *composer) outlineBookmarks(d *Document, ds *records.Dataset, res resolve.Resolver) error {
	if len(c.s.Outline.Title) > 0 {
		if err := d.AddBookmark(Bookmark{Title: c.s.Outline.Title, Page: 0}); err != nil {
			return err
		}
	}

	entries := slices.Clone(ds.Outline)
	slices.SortStableFunc(entries, func(a, b records.OutlineEntry) int {
		return cmp.Compare(res.Physical(a.PageRef), res.Physical(b.PageRef))
	})
	prev := -1
	for _, e := range entries {
		level := min(max(e.Level-1, 0), prev+1)
		if err := d.AddBookmark(Bookmark{Title: e.Title, Level: level, Page: res.Physical(e.PageRef)}); err != nil {
			return err
		}
		prev = level
	}

	if d.IndexPages > 0 && len(c.s.Index.Title) > 0 {
		return d.AddBookmark(Bookmark{Title: c.s.Index.Title, Page: d.IndexStart})
	}
	return nil
}
