package layout

// frame describes flowing area of a generated section.
type frame struct {
	left     float64
	top      float64
	firstTop float64 // top of the flowing area on the first section page, below the title
	bottom   float64
	columns  int
	colWidth float64
	gap      float64
}

func newFrame(g Geometry, columns int, titleHeight float64) frame {
	return frame{
		left:     g.Left,
		top:      g.Top,
		firstTop: g.Top + titleHeight,
		bottom:   g.Height - g.Bottom,
		columns:  max(columns, 1),
		colWidth: g.ColumnWidth(columns),
		gap:      g.ColumnGap,
	}
}

func (f frame) topOf(page int) float64 {
	if page == 0 {
		return f.firstTop
	}
	return f.top
}

func (f frame) columnX(column int) float64 {
	return f.left + float64(column)*(f.colWidth+f.gap)
}

// cursor is the flow state: vertical position, page relative to the section
// start and column on that page. Cursor is a value, every step produces a
// new one.
type cursor struct {
	y      float64
	page   int
	column int
}

func startCursor(f frame) cursor {
	return cursor{y: f.topOf(0)}
}

// breakColumn moves to the next column on the same page or to the first
// column of the next page.
func (c cursor) breakColumn(f frame) cursor {
	if c.column+1 < f.columns {
		return cursor{y: f.topOf(c.page), page: c.page, column: c.column + 1}
	}
	return cursor{y: f.topOf(c.page + 1), page: c.page + 1}
}

// place reserves block of height h. It returns position of the block and
// cursor after it. Block taller than a whole column is placed at the column
// top anyway.
func (c cursor) place(h float64, f frame) (at, next cursor) {
	if c.y+h > f.bottom && c.y > f.topOf(c.page) {
		c = c.breakColumn(f)
	}
	next = c
	next.y += h
	return c, next
}
