package layout

import (
	"tocidx/common"
	"tocidx/utils/debug"
)

// Dump returns human readable tree of the document for debug reports.
func (d *Document) Dump() string {
	tw := debug.NewTreeWriter()

	leave := tw.Enter("document: pages=%d frozen=%t", len(d.pages), d.frozen)
	tw.Line("contents: pages=%d clipped=%d", d.FrontMatterPages, d.Clipped)
	tw.Line("body: start=%d pages=%d", d.BodyStart, d.BodyPages)
	tw.Line("index: start=%d pages=%d", d.IndexStart, d.IndexPages)

	for i, p := range d.pages {
		if p.Kind == common.PageKindBody {
			tw.Line("page %d: %s source=%d size=%.2fx%.2f", i, p.Kind, p.Source, p.Width, p.Height)
			continue
		}
		done := tw.Enter("page %d: %s size=%.2fx%.2f runs=%d links=%d rules=%d", i, p.Kind, p.Width, p.Height, len(p.Runs), len(p.Links), len(p.Rules))
		for _, r := range p.Runs {
			tw.Field("text", r.Text)
		}
		for _, l := range p.Links {
			tw.Line("link [%.1f %.1f %.1f %.1f] -> %d", l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, l.Target)
		}
		done()
	}
	leave()

	if len(d.bookmarks) > 0 {
		leave := tw.Enter("bookmarks:")
		// one closer per open level, levels are 0-based
		var open []func()
		for _, b := range d.bookmarks {
			for len(open) > b.Level {
				open[len(open)-1]()
				open = open[:len(open)-1]
			}
			open = append(open, tw.Enter("%q -> page %d", b.Title, b.Page))
		}
		for i := len(open) - 1; i >= 0; i-- {
			open[i]()
		}
		leave()
	}
	return tw.String()
}
