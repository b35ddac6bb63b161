package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"tocidx/batches"
	"tocidx/config"
	"tocidx/journal"
	"tocidx/pdf"
	"tocidx/records"
	"tocidx/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

// makeBody writes simple body document with text "Body page N" on every page.
func makeBody(t *testing.T, dir string, pages int) string {
	t.Helper()
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetTitle("Cell Biology", true)
	f.SetFont("Helvetica", "", 12)
	for i := range pages {
		f.AddPage()
		f.Text(72, 72, "Body page "+strconv.Itoa(i+1))
	}
	path := filepath.Join(dir, "cells.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to create body: %v", err)
	}
	return path
}

const (
	firstBatch  = `{"outline":[{"title":"Intro","level":1,"pageRef":"1"}],"index":[{"term":"cell","pageRef":"2"}]}`
	secondBatch = "```json\n" + `{"outline":[{"title":"intro","level":1,"pageRef":"1"},{"title":"Methods","level":1,"pageRef":"3"}],"index":[{"term":"Cell","pageRef":"3"},{"term":"Cell","pageRef":"2"}]}` + "\n```"
)

func writeBatches(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "batches")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"segment-1.json":  firstBatch,
		"segment-2.json":  "the service returned garbage",
		"segment-10.json": secondBatch,
	} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func newTestCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:   "test",
		Action: action,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite"},
			&cli.StringFlag{Name: "dataset"},
			&cli.IntFlag{Name: "from"},
		},
	}
}

func runAction(ctx context.Context, action cli.ActionFunc, args ...string) error {
	return newTestCommand(action).Run(ctx, append([]string{"test"}, args...))
}

func TestConsolidateSource(t *testing.T) {
	ctx, env := setupTestEnv(t)

	ds, err := consolidateSource(ctx, writeBatches(t, t.TempDir()), env, env.Log)
	if err != nil {
		t.Fatalf("consolidateSource() error = %v", err)
	}
	if len(ds.Outline) != 2 || ds.Outline[0].Title != "Intro" || ds.Outline[1].Title != "Methods" {
		t.Errorf("outline = %+v", ds.Outline)
	}
	if len(ds.Index) != 1 || ds.Index[0].Term != "Cell" || len(ds.Index[0].PageRefs) != 2 {
		t.Errorf("index = %+v", ds.Index)
	}

	if _, err := consolidateSource(ctx, filepath.Join(t.TempDir(), "none"), env, env.Log); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestComposeDocument(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	bodyPath := makeBody(t, dir, 3)
	dst := filepath.Join(dir, "out")

	ds, err := consolidateSource(ctx, writeBatches(t, dir), env, env.Log)
	if err != nil {
		t.Fatal(err)
	}

	out, err := composeDocument(ctx, ds, bodyPath, dst, env, env.Log)
	if err != nil {
		t.Fatalf("composeDocument() error = %v", err)
	}
	if want := filepath.Join(dst, "cells-indexed.pdf"); out != want {
		t.Errorf("output = %s, want %s", out, want)
	}

	result, err := pdf.OpenBody(out)
	if err != nil {
		t.Fatalf("unable to read result: %v", err)
	}
	if result.PageCount() != 5 {
		t.Errorf("result has %d pages, want 3 body pages with contents and index", result.PageCount())
	}
	if result.Title != "Cell Biology" {
		t.Errorf("result title = %q", result.Title)
	}

	t.Run("existing output", func(t *testing.T) {
		if _, err := composeDocument(ctx, ds, bodyPath, dst, env, env.Log); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected existing output error, got %v", err)
		}
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if _, err := composeDocument(ctx, ds, bodyPath, dst, env, env.Log); err != nil {
			t.Errorf("overwrite failed: %v", err)
		}
	})

	t.Run("never overwrites body", func(t *testing.T) {
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if _, err := composeDocument(ctx, ds, bodyPath, bodyPath, env, env.Log); err == nil {
			t.Error("expected error when output is body document")
		}
	})

	t.Run("broken body", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.pdf")
		if err := os.WriteFile(broken, []byte("%PDF-1.4 nothing here"), 0644); err != nil {
			t.Fatal(err)
		}
		brokenDst := filepath.Join(dir, "broken-out")
		if _, err := composeDocument(ctx, ds, broken, brokenDst, env, env.Log); err == nil {
			t.Error("expected error for broken body")
		}
		if _, err := os.Stat(brokenDst); !os.IsNotExist(err) {
			t.Error("no output expected on failure")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := composeDocument(cctx, ds, bodyPath, filepath.Join(dir, "cancelled"), env, env.Log); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestActions(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	dir := t.TempDir()
	bodyPath := makeBody(t, dir, 4)
	src := writeBatches(t, dir)

	t.Run("consolidate then compose", func(t *testing.T) {
		datasetPath := filepath.Join(dir, "dataset.json")
		if err := runAction(ctx, Consolidate, src, datasetPath); err != nil {
			t.Fatalf("Consolidate error = %v", err)
		}
		ds, err := records.LoadDataset(datasetPath)
		if err != nil {
			t.Fatalf("LoadDataset() error = %v", err)
		}
		if len(ds.Outline) != 2 {
			t.Errorf("outline = %+v", ds.Outline)
		}

		out := filepath.Join(dir, "composed.pdf")
		if err := runAction(ctx, Compose, datasetPath, bodyPath, out); err != nil {
			t.Fatalf("Compose error = %v", err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output missing: %v", err)
		}
	})

	t.Run("consolidate into directory", func(t *testing.T) {
		outDir := filepath.Join(dir, "datasets")
		if err := runAction(ctx, Consolidate, src, outDir); err != nil {
			t.Fatalf("Consolidate error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "batches-dataset.json")); err != nil {
			t.Errorf("dataset missing: %v", err)
		}
	})

	t.Run("run keeps dataset", func(t *testing.T) {
		keep := filepath.Join(dir, "kept.json")
		out := filepath.Join(dir, "run")
		if err := runAction(ctx, Run, "--dataset", keep, src, bodyPath, out); err != nil {
			t.Fatalf("Run error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "cells-indexed.pdf")); err != nil {
			t.Errorf("output missing: %v", err)
		}
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("dataset missing: %v", err)
		}
	})

	t.Run("missing arguments", func(t *testing.T) {
		for _, action := range []cli.ActionFunc{Run, Consolidate, Compose, Ingest, Segment} {
			if err := runAction(ctx, action); err == nil {
				t.Error("expected error without arguments")
			}
		}
		if err := runAction(ctx, Ingest, filepath.Join(dir, "journal.db")); err == nil {
			t.Error("expected error without batch files")
		}
	})
}

func TestIngest(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	src := writeBatches(t, dir)
	journalPath := filepath.Join(dir, "journal.db")

	files := []string{
		filepath.Join(src, "segment-10.json"),
		filepath.Join(src, "segment-2.json"),
		filepath.Join(src, "segment-1.json"),
	}
	if err := runAction(ctx, Ingest, append([]string{journalPath}, files...)...); err != nil {
		t.Fatalf("Ingest error = %v", err)
	}

	j, err := journal.Open(journalPath, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := j.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("journal has %d entries, want 3", len(entries))
	}
	if entries[0].Source != "segment-1.json" || entries[1].Status != journal.StatusFailed || entries[2].Source != "segment-10.json" {
		t.Errorf("entries = %+v", entries)
	}

	// retry failed segment
	fixed := filepath.Join(dir, "fixed.json")
	if err := os.WriteFile(fixed, []byte(`{"outline":[{"title":"Results","level":1,"pageRef":"2"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ingestFiles(ctx, j, []string{fixed}, 2, env.RunID, env.Log); err != nil {
		t.Fatalf("ingestFiles() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	bs, err := batches.Load(ctx, journalPath, env.Log)
	if err != nil {
		t.Fatalf("batches.Load() error = %v", err)
	}
	if len(bs) != 3 || bs[1].Empty() || bs[1].Outline[0].Title != "Results" {
		t.Errorf("batches = %+v", bs)
	}

	// journal is a regular batch source for the whole pipeline
	out := filepath.Join(dir, "from-journal.pdf")
	if err := runAction(ctx, Run, journalPath, makeBody(t, dir, 3), out); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestSegment(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	dir := t.TempDir()
	bodyPath := makeBody(t, dir, 3)
	out := filepath.Join(dir, "segments")

	if err := runAction(ctx, Segment, bodyPath, out); err != nil {
		t.Fatalf("Segment error = %v", err)
	}
	for i := 1; i <= 3; i++ {
		data, err := os.ReadFile(filepath.Join(out, "segment-"+strconv.Itoa(i)+".txt"))
		if err != nil {
			t.Fatalf("segment %d missing: %v", i, err)
		}
		if !strings.Contains(string(data), "Body page "+strconv.Itoa(i)) {
			t.Errorf("segment %d = %q", i, data)
		}
	}

	if err := runAction(ctx, Segment, bodyPath, out); err == nil {
		t.Error("expected error for existing segments")
	}
	if err := runAction(ctx, Segment, "--overwrite", bodyPath, out); err != nil {
		t.Errorf("Segment with overwrite error = %v", err)
	}
}
