// Package batches loads raw extraction batches. Extraction is done by an
// external service, so anything may come back: unreadable batches are
// replaced with empty ones and reported, never failing the whole load.
package batches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tocidx/archive"
	"tocidx/journal"
	"tocidx/records"
)

// Source is a single loaded batch with its origin.
type Source struct {
	Name  string
	Batch records.Batch
	Err   error
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*(.*?)\\s*```$")

// stripCodeBlock removes markdown fences the extraction service likes to wrap
// its answers in.
func stripCodeBlock(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if m := codeBlockRe.FindSubmatch(data); len(m) > 1 {
		return m[1]
	}
	return data
}

// Decode parses one batch. Both single object and array of objects are
// accepted, array elements are merged in order.
func Decode(data []byte) (records.Batch, error) {
	data = stripCodeBlock(data)
	if len(data) == 0 {
		return records.Batch{}, errors.New("empty batch")
	}
	if data[0] == '[' {
		var list []records.Batch
		if err := json.Unmarshal(data, &list); err != nil {
			return records.Batch{}, fmt.Errorf("unable to decode batch list: %w", err)
		}
		var b records.Batch
		for _, part := range list {
			b.Outline = append(b.Outline, part.Outline...)
			b.Index = append(b.Index, part.Index...)
		}
		return b, nil
	}
	var b records.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return records.Batch{}, fmt.Errorf("unable to decode batch: %w", err)
	}
	return b, nil
}

// DecodeList parses JSON array where every element is a separate batch (as
// saved by tools collecting all extraction answers in one file). Broken
// elements degrade to empty batches.
func DecodeList(data []byte) ([]Source, error) {
	data = stripCodeBlock(data)
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to decode batch list: %w", err)
	}
	out := make([]Source, 0, len(raw))
	for i, msg := range raw {
		s := Source{Name: fmt.Sprintf("#%d", i+1)}
		s.Batch, s.Err = Decode(msg)
		out = append(out, s)
	}
	return out, nil
}

// Load reads all batches from path in document order. Path may be a directory
// with batch files, zip archive of them, a journal database or a single JSON
// file holding one batch or array of batches.
func Load(ctx context.Context, path string, log *zap.Logger) ([]records.Batch, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sources, err := LoadSources(ctx, path, log)
	if err != nil {
		return nil, err
	}
	return Batches(sources, log), nil
}

// Batches converts sources to batches, logging every failed one.
func Batches(sources []Source, log *zap.Logger) []records.Batch {
	bs := make([]records.Batch, 0, len(sources))
	for _, s := range sources {
		if s.Err != nil {
			log.Warn("Unusable batch, replacing with empty one", zap.String("batch", s.Name), zap.Error(s.Err))
		}
		bs = append(bs, s.Batch)
	}
	return bs
}

// LoadSources is Load which keeps origin and failure for every batch.
func LoadSources(ctx context.Context, path string, log *zap.Logger) ([]Source, error) {
	kind, err := Detect(path)
	if err != nil {
		return nil, fmt.Errorf("unable to check batch source type: %w", err)
	}
	log.Debug("Loading batches", zap.String("source", path), zap.Stringer("kind", kind))

	switch kind {
	case KindDirectory:
		return loadDir(ctx, path, log)
	case KindArchive:
		return loadArchive(ctx, path)
	case KindJournal:
		return loadJournal(path, log)
	case KindJson:
		return loadFile(path)
	}
	return nil, fmt.Errorf("unexpected path mode for batch source (%s)", path)
}

func isBatchName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".json" || ext == ".md" || ext == ".txt"
}

func loadDir(ctx context.Context, dir string, log *zap.Logger) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read batch directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isBatchName(e.Name()) && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(names))
	if len(names) == 0 {
		log.Debug("Nothing to load", zap.String("dir", dir))
	}

	out := make([]Source, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := Source{Name: name}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			s.Err = err
		} else {
			s.Batch, s.Err = Decode(data)
		}
		out = append(out, s)
	}
	return out, nil
}

func loadArchive(ctx context.Context, path string) ([]Source, error) {
	var out []Source
	err := archive.Walk(path, archive.Suffix(".json", ".md", ".txt"), func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := Source{Name: name}
		data, err := io.ReadAll(r)
		if err != nil {
			s.Err = err
		} else {
			s.Batch, s.Err = Decode(data)
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to process archive: %w", err)
	}
	return out, nil
}

func loadJournal(path string, log *zap.Logger) (_ []Source, err error) {
	j, err := journal.Open(path, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, j.Close())
	}()

	entries, err := j.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]Source, 0, len(entries))
	for _, e := range entries {
		s := Source{Name: fmt.Sprintf("segment %d (%s)", e.Segment, e.Source), Batch: e.Batch}
		if e.Status != journal.StatusDone {
			s.Err = errors.New(e.Failure)
		}
		out = append(out, s)
	}
	return out, nil
}

func loadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	// top level array is a list of batches
	if stripped := stripCodeBlock(data); len(stripped) > 0 && stripped[0] == '[' {
		if list, err := DecodeList(stripped); err == nil && len(list) > 0 {
			for i := range list {
				list[i].Name = name + list[i].Name
			}
			return list, nil
		}
	}
	s := Source{Name: name}
	s.Batch, s.Err = Decode(data)
	return []Source{s}, nil
}
