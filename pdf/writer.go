package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"tocidx/common"
	"tocidx/layout"
)

// Meta is stored in the document information dictionary.
type Meta struct {
	Title    string
	Author   string
	Creator  string
	Producer string
	Keywords string
	Created  time.Time
}

// Writer serializes frozen layout documents.
type Writer struct {
	Fonts FontSet
	// BookmarkFont selects encoding of navigation tree titles.
	BookmarkFont layout.Font
	Meta         Meta
	Log          *zap.Logger
}

// Write produces PDF file at dst. Output is written to a temporary file in
// the same directory and renamed when complete, so dst either has complete
// document or is not touched at all.
func (w *Writer) Write(doc *layout.Document, body *Body, dst string) (err error) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if doc == nil || !doc.Frozen() {
		return errors.New("document is not ready for serialization")
	}
	if body == nil {
		return layout.ErrNoBody
	}

	defer func() {
		// importing pages of broken PDFs may panic
		if r := recover(); r != nil {
			log.Error("Serialization ended with panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("serialization panic: %v", r)
		}
	}()

	f, err := w.build(doc, body)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = f.Output(tmp); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("unable to store document: %w", err)
	}
	log.Debug("Document written", zap.String("file", dst), zap.Int("pages", doc.PageCount()))
	return nil
}

func (w *Writer) build(doc *layout.Document, body *Body) (*gofpdf.Fpdf, error) {
	first := doc.Page(0)
	f, err := newFpdf(first.Width, first.Height, w.Fonts)
	if err != nil {
		return nil, err
	}
	t, err := newText(f, w.Fonts)
	if err != nil {
		return nil, err
	}

	f.SetCompression(true)
	f.SetTitle(w.Meta.Title, true)
	f.SetAuthor(w.Meta.Author, true)
	f.SetCreator(w.Meta.Creator, true)
	f.SetProducer(w.Meta.Producer, true)
	f.SetKeywords(w.Meta.Keywords, true)
	if !w.Meta.Created.IsZero() {
		f.SetCreationDate(w.Meta.Created)
		f.SetModificationDate(w.Meta.Created)
	}

	// internal link destinations are known upfront, gofpdf resolves them on output
	links := make(map[int]int)
	bookmarks := make(map[int][]layout.Bookmark)
	for i := range doc.PageCount() {
		for _, l := range doc.Page(i).Links {
			if _, ok := links[l.Target]; !ok {
				id := f.AddLink()
				f.SetLink(id, 0, l.Target+1)
				links[l.Target] = id
			}
		}
	}
	for _, b := range doc.Bookmarks() {
		bookmarks[b.Page] = append(bookmarks[b.Page], b)
	}

	imp := gofpdi.NewImporter()
	for i := range doc.PageCount() {
		p := doc.Page(i)
		f.AddPageFormat("P", gofpdf.SizeType{Wd: p.Width, Ht: p.Height})

		if p.Kind == common.PageKindBody {
			tpl := imp.ImportPage(f, body.Path, p.Source+1, "/MediaBox")
			imp.UseImportedTemplate(f, tpl, 0, 0, p.Width, p.Height)
		}
		for _, r := range p.Runs {
			f.SetFont(r.Font.Family, r.Font.Style, r.Font.Size)
			f.Text(r.X, r.Y, t.convert(r.Font, r.Text))
		}
		if len(p.Rules) > 0 {
			f.SetLineWidth(0.6)
			f.SetLineCapStyle("round")
			f.SetDashPattern([]float64{0.01, 2.4}, 0)
			for _, r := range p.Rules {
				f.Line(r.X1, r.Y, r.X2, r.Y)
			}
			f.SetDashPattern([]float64{}, 0)
			f.SetLineCapStyle("butt")
		}
		for _, l := range p.Links {
			f.Link(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, links[l.Target])
		}
		if bms := bookmarks[i]; len(bms) > 0 {
			bf := w.BookmarkFont
			if len(bf.Family) == 0 {
				bf = layout.Font{Family: "Helvetica", Size: 10}
			}
			f.SetFont(bf.Family, bf.Style, bf.Size)
			for _, b := range bms {
				f.Bookmark(t.convert(bf, b.Title), b.Level, b.Y)
			}
		}
		if f.Err() {
			return nil, fmt.Errorf("unable to render page %d: %w", i+1, f.Error())
		}
	}
	return f, nil
}
