// Package pdf reads body documents and writes composed documents as PDF.
package pdf

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"tocidx/layout"
)

// FontSet optionally replaces core PDF fonts with TrueType font family
// supporting full Unicode. Files maps style ("", "B", "I", "BI") to TTF path.
type FontSet struct {
	Family string
	Files  map[string]string
}

func (fs FontSet) enabled() bool {
	return len(fs.Family) > 0 && len(fs.Files) > 0
}

// register adds TrueType fonts to the document. Core fonts need nothing.
func (fs FontSet) register(f *gofpdf.Fpdf) error {
	if !fs.enabled() {
		return nil
	}
	for style, path := range fs.Files {
		f.AddUTF8Font(fs.Family, style, path)
		if f.Err() {
			return fmt.Errorf("unable to load font %s (%q) from %s: %w", fs.Family, style, path, f.Error())
		}
	}
	return nil
}

// isUTF8 tells if text in this font is passed to gofpdf as is.
func (fs FontSet) isUTF8(font layout.Font) bool {
	return fs.enabled() && strings.EqualFold(fs.Family, font.Family)
}

// text converts string for the font: TrueType fonts take UTF-8, core fonts
// need single byte encoding.
type text struct {
	fs FontSet
	tr func(string) string
}

func newText(f *gofpdf.Fpdf, fs FontSet) (*text, error) {
	tr := f.UnicodeTranslatorFromDescriptor("")
	if f.Err() {
		return nil, fmt.Errorf("unable to prepare code page translation: %w", f.Error())
	}
	return &text{fs: fs, tr: tr}, nil
}

func (t *text) convert(font layout.Font, s string) string {
	if t.fs.isUTF8(font) {
		return s
	}
	return t.tr(s)
}

func newFpdf(w, h float64, fs FontSet) (*gofpdf.Fpdf, error) {
	f := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	if err := fs.register(f); err != nil {
		return nil, err
	}
	return f, nil
}
