package layout

import (
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"tocidx/common"
	"tocidx/records"
	"tocidx/resolve"
)

// Body gives access to the pages of the original document.
type Body interface {
	PageCount() int
	// PageSize returns size of 0-based page in points.
	PageSize(i int) (w, h float64, err error)
}

var ErrNoBody = errors.New("body document is missing")

type composer struct {
	s   Settings
	g   Geometry
	m   Measurer
	log *zap.Logger
}

func (c *composer) generatedPage(kind common.PageKind) Page {
	return Page{Kind: kind, Source: -1, Width: c.g.Width, Height: c.g.Height}
}

// MeasureOutline runs the first pass alone and returns number of pages
// contents section will occupy, never less than 1.
func MeasureOutline(ds *records.Dataset, m Measurer, s Settings) int {
	c := &composer{s: s, g: s.Geometry, m: m, log: zap.NewNop()}
	return c.measureOutline(ds)
}

// Compose builds complete document: contents pages, body pages and index
// pages. Any failure aborts composition, partially built document is never
// returned.
func Compose(ds *records.Dataset, body Body, m Measurer, s Settings, log *zap.Logger) (doc *Document, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Composition ended with panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			doc, err = nil, fmt.Errorf("composition panic: %v", r)
		}
	}()

	if body == nil {
		return nil, ErrNoBody
	}
	if ds == nil {
		ds = &records.Dataset{}
	}
	if m == nil {
		return nil, errors.New("no text measurer")
	}

	bodyPages := body.PageCount()
	if bodyPages <= 0 {
		return nil, fmt.Errorf("%w: no pages", ErrNoBody)
	}

	g := s.Geometry
	if s.MatchBody {
		w, h, err := body.PageSize(0)
		if err != nil {
			return nil, fmt.Errorf("unable to get body page size: %w", err)
		}
		g.Width, g.Height = w, h
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	c := &composer{s: s, g: g, m: m, log: log}

	// pass 1
	fm := c.measureOutline(ds)
	log.Debug("Contents measured", zap.Int("pages", fm), zap.Int("entries", len(ds.Outline)))

	// pass 2
	d := &Document{FrontMatterPages: fm, BodyStart: fm, BodyPages: bodyPages}
	for range fm {
		if _, err := d.addPage(c.generatedPage(common.PageKindContents)); err != nil {
			return nil, err
		}
	}
	for i := range bodyPages {
		w, h, err := body.PageSize(i)
		if err != nil {
			return nil, fmt.Errorf("unable to get size of body page %d: %w", i+1, err)
		}
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: body page %d has size %.2fx%.2f", ErrBadGeometry, i+1, w, h)
		}
		if _, err := d.addPage(Page{Kind: common.PageKindBody, Source: i, Width: w, Height: h}); err != nil {
			return nil, err
		}
	}

	res := resolve.Resolver{Mode: s.Numbering, FrontMatterPages: fm, BodyStart: fm, BodyPages: bodyPages}

	if err := c.renderIndex(d, ds, res); err != nil {
		return nil, fmt.Errorf("unable to render index: %w", err)
	}
	if err := c.renderOutline(d, ds, res); err != nil {
		return nil, fmt.Errorf("unable to render contents: %w", err)
	}
	if d.Clipped > 0 {
		log.Warn("Contents do not fit allocated pages, entries clipped", zap.Int("clipped", d.Clipped), zap.Int("pages", fm))
	}
	if err := c.outlineBookmarks(d, ds, res); err != nil {
		return nil, err
	}

	d.Freeze()
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("composed document is inconsistent: %w", err)
	}

	log.Debug("Document composed",
		zap.Int("pages", d.PageCount()),
		zap.Int("body_start", d.BodyStart),
		zap.Int("index_start", d.IndexStart),
		zap.Int("index_pages", d.IndexPages))
	return d, nil
}
