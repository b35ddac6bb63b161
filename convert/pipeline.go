package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"tocidx/batches"
	"tocidx/config"
	"tocidx/consolidate"
	"tocidx/layout"
	"tocidx/misc"
	"tocidx/pdf"
	"tocidx/records"
	"tocidx/state"
)

func consolidateOptions(cfg *config.DocumentConfig) consolidate.Options {
	return consolidate.Options{
		Policy:   cfg.Outline.Dedup,
		MaxDepth: cfg.Outline.MaxDepth,
		Language: cfg.Index.LanguageTag(),
	}
}

// consolidateSource loads every batch found at src and builds canonical
// dataset. Unusable batches are reported and skipped, so this only fails when
// src itself cannot be read.
func consolidateSource(ctx context.Context, src string, env *state.LocalEnv, log *zap.Logger) (*records.Dataset, error) {
	sources, err := batches.LoadSources(ctx, src, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load batches: %w", err)
	}
	if len(sources) == 0 {
		log.Warn("No batches found, dataset will be empty", zap.String("source", src))
	}
	bs := batches.Batches(sources, log)

	ds := consolidate.Consolidate(bs, consolidateOptions(&env.Cfg.Document))
	log.Info("Dataset consolidated",
		zap.Int("batches", len(bs)), zap.Int("outline", len(ds.Outline)), zap.Int("index", len(ds.Index)))

	if env.Rpt != nil {
		if data, err := records.MarshalDataset(&ds); err == nil {
			env.Rpt.StoreData("dataset.json", data)
		}
	}
	return &ds, nil
}

// prepareOutput makes sure we could write to name.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func fontSet(cfg *config.DocumentConfig) pdf.FontSet {
	return pdf.FontSet{Family: cfg.Fonts.FamilyName(), Files: cfg.Fonts.Files()}
}

// composeDocument lays out dataset around body document and writes result
// into dst (directory or file name). It returns name of the produced file.
func composeDocument(ctx context.Context, ds *records.Dataset, bodyPath, dst string, env *state.LocalEnv, log *zap.Logger) (outputName string, rerr error) {
	log.Info("Composition starting", zap.String("body", bodyPath))
	defer func(start time.Time) {
		// NOTE: PDF libraries panic on documents they do not understand, we
		// want to report this as a regular error
		if r := recover(); r != nil {
			log.Error("Composition ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("composition panic: %v", r)
		} else if rerr == nil {
			log.Info("Composition completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	cfg := &env.Cfg.Document

	body, err := pdf.OpenBody(bodyPath)
	if err != nil {
		return "", fmt.Errorf("unable to read body document: %w", err)
	}
	if body.Bookmarks > 0 {
		log.Debug("Body document navigation is replaced by generated one", zap.Int("bookmarks", body.Bookmarks))
	}

	fs := fontSet(cfg)
	m, err := pdf.NewMeasurer(fs, cfg.UsedFonts()...)
	if err != nil {
		return "", fmt.Errorf("unable to prepare fonts: %w", err)
	}

	s := cfg.Layout()
	doc, err := layout.Compose(ds, body, m, s, log)
	if err != nil {
		return "", fmt.Errorf("unable to compose document: %w", err)
	}
	if err := m.Err(); err != nil {
		return "", fmt.Errorf("unable to measure text: %w", err)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("layout.txt", []byte(doc.Dump()))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	values := buildValues(ds, body, env.RunID, time.Now())
	outputName = buildOutputPath(values, dst, env)
	if sameFile(outputName, bodyPath) {
		return "", fmt.Errorf("output would overwrite body document: %s", outputName)
	}
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return "", err
	}

	w := &pdf.Writer{
		Fonts:        fs,
		BookmarkFont: s.Outline.Level1,
		Meta:         buildMeta(values, cfg, env, log),
		Log:          log,
	}
	if err := w.Write(doc, body, outputName); err != nil {
		return "", fmt.Errorf("unable to generate output: %w", err)
	}

	// Store result for debugging
	env.Rpt.Store("result.pdf", outputName)
	return outputName, nil
}

func buildMeta(v Values, cfg *config.DocumentConfig, env *state.LocalEnv, log *zap.Logger) pdf.Meta {
	title := v.Title
	if len(cfg.Metainformation.TitleTemplate) > 0 {
		if t, err := expandTemplate(config.MetaTitleTemplateFieldName, cfg.Metainformation.TitleTemplate, v); err != nil {
			log.Warn("Unable to prepare document title", zap.Error(err))
		} else {
			title = strings.TrimSpace(t)
		}
	}
	keywords := []string{"run:" + env.RunID}
	if len(cfg.Metainformation.Keywords) > 0 {
		keywords = append([]string{cfg.Metainformation.Keywords}, keywords...)
	}
	return pdf.Meta{
		Title:    title,
		Author:   cfg.Metainformation.Author,
		Creator:  misc.GetAppName() + " " + misc.GetVersion(),
		Producer: misc.GetAppName(),
		Keywords: strings.Join(keywords, " "),
		Created:  time.Now(),
	}
}

func sameFile(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	if aa == bb {
		return true
	}
	ai, err1 := os.Stat(aa)
	bi, err2 := os.Stat(bb)
	return err1 == nil && err2 == nil && os.SameFile(ai, bi)
}
