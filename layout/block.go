package layout

// blockRun is text inside a block. dy is the baseline offset from the block
// top, lineTop and lineHeight describe line box used for link area.
type blockRun struct {
	dx, dy     float64
	lineTop    float64
	lineHeight float64
	width      float64
	text       string
	font       Font
	target     int
}

type blockRule struct {
	x1, x2, dy float64
}

// block is a unit of flow: prepared lines of a single heading, index entry or
// section title which is always placed as a whole.
type block struct {
	height float64
	runs   []blockRun
	rules  []blockRule
	// rowTarget is link target for the whole block area, -1 for none.
	rowTarget int
}

func newBlock() block {
	return block{rowTarget: -1}
}

func (b *block) addRun(r blockRun) {
	b.runs = append(b.runs, r)
}

// draw puts block onto the page at the given position.
func (b block) draw(d *Document, page int, x, y, width float64) error {
	for _, r := range b.runs {
		if err := d.AddRun(page, TextRun{X: x + r.dx, Y: y + r.dy, Width: r.width, Text: r.text, Font: r.font}); err != nil {
			return err
		}
		if r.target >= 0 {
			area := Rect{X: x + r.dx, Y: y + r.lineTop, W: r.width, H: r.lineHeight}
			if err := d.AddLink(page, Link{Rect: area, Target: r.target}); err != nil {
				return err
			}
		}
	}
	for _, r := range b.rules {
		if err := d.AddRule(page, Rule{X1: x + r.x1, X2: x + r.x2, Y: y + r.dy, Dotted: true}); err != nil {
			return err
		}
	}
	if b.rowTarget >= 0 {
		if err := d.AddLink(page, Link{Rect: Rect{X: x, Y: y, W: width, H: b.height}, Target: b.rowTarget}); err != nil {
			return err
		}
	}
	return nil
}

// textBlock wraps text into block of plain lines, extra space is added after
// the last line.
func (c *composer) textBlock(text string, f Font, width, after float64) block {
	b := newBlock()
	lh := c.s.lineHeight(f)
	for i, line := range Wrap(c.m, f, text, width) {
		b.addRun(blockRun{
			dy:         float64(i)*lh + baseline(f, lh),
			lineTop:    float64(i) * lh,
			lineHeight: lh,
			width:      c.m.StringWidth(f, line),
			text:       line,
			font:       f,
			target:     -1,
		})
		b.height += lh
	}
	if b.height > 0 {
		b.height += after
	}
	return b
}
