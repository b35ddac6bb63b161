package pdf

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"tocidx/layout"
)

// Measurer measures text with the same font metrics writer uses.
type Measurer struct {
	f    *gofpdf.Fpdf
	text *text
}

// NewMeasurer prepares metrics and checks that all fonts are usable.
func NewMeasurer(fs FontSet, fonts ...layout.Font) (*Measurer, error) {
	f, err := newFpdf(100, 100, fs)
	if err != nil {
		return nil, err
	}
	t, err := newText(f, fs)
	if err != nil {
		return nil, err
	}
	for _, font := range fonts {
		f.SetFont(font.Family, font.Style, font.Size)
		if f.Err() {
			return nil, fmt.Errorf("unable to use font %s %q: %w", font.Family, font.Style, f.Error())
		}
	}
	return &Measurer{f: f, text: t}, nil
}

func (m *Measurer) StringWidth(font layout.Font, s string) float64 {
	m.f.SetFont(font.Family, font.Style, font.Size)
	return m.f.GetStringWidth(m.text.convert(font, s))
}

// Err reports font failure which happened during measuring.
func (m *Measurer) Err() error {
	return m.f.Error()
}
