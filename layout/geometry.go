// Package layout composes generated contents and index sections around the
// body pages. Layout runs in two passes: first pass measures how many pages
// contents will take, second pass places everything and produces frozen
// Document ready for serialization.
//
// All coordinates are in points with origin at the top left page corner.
package layout

import (
	"errors"
	"fmt"

	"tocidx/common"
)

// Font describes text appearance, Style uses PDF core font notation ("", "B",
// "I", "BI").
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Measurer returns width of the text rendered with the font.
type Measurer interface {
	StringWidth(f Font, s string) float64
}

// Geometry of generated pages.
type Geometry struct {
	Width     float64
	Height    float64
	Top       float64
	Bottom    float64
	Left      float64
	Right     float64
	ColumnGap float64
}

var ErrBadGeometry = errors.New("invalid page geometry")

// Validate checks that there is room left for content.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: page size %.2fx%.2f", ErrBadGeometry, g.Width, g.Height)
	}
	if g.Top < 0 || g.Bottom < 0 || g.Left < 0 || g.Right < 0 || g.ColumnGap < 0 {
		return fmt.Errorf("%w: negative margins", ErrBadGeometry)
	}
	if g.ContentWidth() <= 0 || g.Height-g.Top-g.Bottom <= 0 {
		return fmt.Errorf("%w: margins leave no space for content", ErrBadGeometry)
	}
	if g.ColumnWidth(2) <= 0 {
		return fmt.Errorf("%w: column gap is too wide", ErrBadGeometry)
	}
	return nil
}

func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Left - g.Right
}

// ColumnWidth returns width of a single column when content area is split
// into n columns.
func (g Geometry) ColumnWidth(n int) float64 {
	if n <= 1 {
		return g.ContentWidth()
	}
	return (g.ContentWidth() - g.ColumnGap*float64(n-1)) / float64(n)
}

// OutlineSettings control contents section.
type OutlineSettings struct {
	Title     string
	TitleFont Font
	// Level1 is used for top level headings, LevelN for everything deeper.
	Level1 Font
	LevelN Font
	// IndentStep is added for every level below the first.
	IndentStep float64
	// NumberReserve is a sample text which width is always reserved for page
	// numbers, so wrapping never depends on actual numbers.
	NumberReserve string
	// LeaderGap is space between text and dotted leader on both ends.
	LeaderGap float64
}

// IndexSettings control index section.
type IndexSettings struct {
	Title         string
	TitleFont     Font
	Header        Font
	Term          Font
	Ref           Font
	HangingIndent float64
	// CatchAll names bucket for terms not starting with a letter.
	CatchAll string
}

// Settings is everything composition needs besides data and body.
type Settings struct {
	Geometry Geometry
	// MatchBody takes generated pages size from the first body page.
	MatchBody   bool
	Numbering   common.NumberingMode
	LineSpacing float64
	Outline     OutlineSettings
	Index       IndexSettings
}

// DefaultSettings returns A4 portrait layout with core Helvetica fonts.
func DefaultSettings() Settings {
	return Settings{
		Geometry: Geometry{
			Width: 595.28, Height: 841.89,
			Top: 56, Bottom: 56, Left: 56, Right: 56,
			ColumnGap: 24,
		},
		Numbering:   common.NumberingModeSequential,
		LineSpacing: 1.3,
		Outline: OutlineSettings{
			Title:         "Contents",
			TitleFont:     Font{Family: "Helvetica", Style: "B", Size: 18},
			Level1:        Font{Family: "Helvetica", Style: "B", Size: 12},
			LevelN:        Font{Family: "Helvetica", Size: 11},
			IndentStep:    16,
			NumberReserve: "0000",
			LeaderGap:     4,
		},
		Index: IndexSettings{
			Title:         "Index",
			TitleFont:     Font{Family: "Helvetica", Style: "B", Size: 18},
			Header:        Font{Family: "Helvetica", Style: "B", Size: 12},
			Term:          Font{Family: "Helvetica", Size: 10},
			Ref:           Font{Family: "Helvetica", Size: 10},
			HangingIndent: 12,
			CatchAll:      "#",
		},
	}
}

func (s Settings) lineHeight(f Font) float64 {
	spacing := s.LineSpacing
	if spacing < 1 {
		spacing = 1
	}
	return f.Size * spacing
}

// baseline returns offset of the text baseline from the top of a line box.
func baseline(f Font, lineHeight float64) float64 {
	return (lineHeight-f.Size)/2 + f.Size*0.8
}
