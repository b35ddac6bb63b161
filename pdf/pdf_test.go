package pdf

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"tocidx/layout"
	"tocidx/records"
)

// makeBody writes small PDF: two A4 portrait pages and one landscape page.
func makeBody(t *testing.T, dir string) string {
	t.Helper()

	f := gofpdf.New("P", "pt", "A4", "")
	f.SetTitle("Sample Body", true)
	f.SetFont("Helvetica", "", 12)
	for i, orientation := range []string{"P", "P", "L"} {
		f.AddPageFormat(orientation, gofpdf.SizeType{Wd: 595.28, Ht: 841.89})
		f.Text(50, 80, "Body page "+string(rune('1'+i)))
	}
	path := filepath.Join(dir, "body.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to create body PDF: %v", err)
	}
	return path
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.02
}

func TestOpenBody(t *testing.T) {
	path := makeBody(t, t.TempDir())

	body, err := OpenBody(path)
	if err != nil {
		t.Fatalf("OpenBody() error = %v", err)
	}
	if body.PageCount() != 3 {
		t.Fatalf("PageCount() = %d, want 3", body.PageCount())
	}
	if body.Title != "Sample Body" {
		t.Errorf("Title = %q", body.Title)
	}

	sizes := [][2]float64{{595.28, 841.89}, {595.28, 841.89}, {841.89, 595.28}}
	for i, want := range sizes {
		w, h, err := body.PageSize(i)
		if err != nil {
			t.Errorf("PageSize(%d) error = %v", i, err)
			continue
		}
		if !near(w, want[0]) || !near(h, want[1]) {
			t.Errorf("PageSize(%d) = %.2fx%.2f, want %.2fx%.2f", i, w, h, want[0], want[1])
		}
	}
	if _, _, err := body.PageSize(3); err == nil {
		t.Error("PageSize() out of range must fail")
	}
}

func TestOpenBody_Broken(t *testing.T) {
	dir := t.TempDir()

	if _, err := OpenBody(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}

	junk := filepath.Join(dir, "junk.pdf")
	if err := os.WriteFile(junk, []byte("%PDF-1.4\nthis is not really a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenBody(junk); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestPageTexts(t *testing.T) {
	path := makeBody(t, t.TempDir())

	texts, err := PageTexts(path)
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("got %d pages, want 3", len(texts))
	}
	if !strings.Contains(texts[1], "Body page 2") {
		t.Errorf("page 2 text = %q", texts[1])
	}
}

func TestMeasurer(t *testing.T) {
	m, err := NewMeasurer(FontSet{}, layout.Font{Family: "Helvetica", Size: 10}, layout.Font{Family: "Helvetica", Style: "B", Size: 10})
	if err != nil {
		t.Fatalf("NewMeasurer() error = %v", err)
	}

	regular := m.StringWidth(layout.Font{Family: "Helvetica", Size: 10}, "Hello")
	if !near(regular, 22.78) {
		t.Errorf("regular width = %.3f, want 22.78", regular)
	}
	bold := m.StringWidth(layout.Font{Family: "Helvetica", Style: "B", Size: 10}, "Hello")
	if bold <= regular {
		t.Errorf("bold width %.3f is not wider than regular %.3f", bold, regular)
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v", m.Err())
	}

	if _, err := NewMeasurer(FontSet{}, layout.Font{Family: "NoSuchFont", Size: 10}); err == nil {
		t.Error("expected error for unknown font")
	}
	if _, err := NewMeasurer(FontSet{Family: "Custom", Files: map[string]string{"": "/nonexistent/font.ttf"}}); err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestWrite(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	dir := t.TempDir()

	body, err := OpenBody(makeBody(t, dir))
	if err != nil {
		t.Fatalf("OpenBody() error = %v", err)
	}

	s := layout.DefaultSettings()
	m, err := NewMeasurer(FontSet{}, s.Outline.Level1, s.Outline.LevelN, s.Index.Term)
	if err != nil {
		t.Fatalf("NewMeasurer() error = %v", err)
	}
	ds := &records.Dataset{
		Outline: []records.OutlineEntry{
			{Title: "Intro", Level: 1, PageRef: "1"},
			{Title: "Methods", Level: 2, PageRef: "3"},
		},
		Index: []records.IndexEntry{{Term: "Cell", PageRefs: []records.PageRef{"1", "3"}}},
	}
	doc, err := layout.Compose(ds, body, m, s, log)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	w := &Writer{
		BookmarkFont: s.Outline.Level1,
		Meta:         Meta{Title: "Composed", Creator: "test", Created: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Log:          log,
	}
	out := filepath.Join(dir, "out.pdf")
	if err := w.Write(doc, body, out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	result, err := OpenBody(out)
	if err != nil {
		t.Fatalf("unable to read written document: %v", err)
	}
	if result.PageCount() != doc.PageCount() {
		t.Errorf("written %d pages, want %d", result.PageCount(), doc.PageCount())
	}
	if result.Title != "Composed" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.Bookmarks != len(doc.Bookmarks()) {
		t.Errorf("Bookmarks = %d, want %d", result.Bookmarks, len(doc.Bookmarks()))
	}
	for i := range doc.PageCount() {
		p := doc.Page(i)
		w, h, err := result.PageSize(i)
		if err != nil || !near(w, p.Width) || !near(h, p.Height) {
			t.Errorf("page %d size = %.2fx%.2f (%v), want %.2fx%.2f", i, w, h, err, p.Width, p.Height)
		}
	}

	texts, err := PageTexts(out)
	if err != nil {
		t.Fatalf("PageTexts() error = %v", err)
	}
	if !strings.Contains(texts[0], "Intro") || !strings.Contains(texts[0], "Methods") {
		t.Errorf("contents text = %q", texts[0])
	}
	if last := texts[len(texts)-1]; !strings.Contains(last, "Cell") {
		t.Errorf("index text = %q", last)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".out.pdf") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWrite_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	body, err := OpenBody(makeBody(t, dir))
	if err != nil {
		t.Fatalf("OpenBody() error = %v", err)
	}
	w := &Writer{Log: zaptest.NewLogger(t)}

	t.Run("unfrozen document", func(t *testing.T) {
		out := filepath.Join(dir, "unfrozen.pdf")
		if err := w.Write(&layout.Document{}, body, out); err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Errorf("output exists after failure: %v", err)
		}
	})

	t.Run("missing destination directory", func(t *testing.T) {
		s := layout.DefaultSettings()
		m, err := NewMeasurer(FontSet{})
		if err != nil {
			t.Fatal(err)
		}
		doc, err := layout.Compose(&records.Dataset{}, body, m, s, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		out := filepath.Join(dir, "nowhere", "out.pdf")
		if err := w.Write(doc, body, out); err == nil {
			t.Error("expected error")
		}
	})
}
