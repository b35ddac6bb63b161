package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"

	"tocidx/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	r.file = f
	return r, nil
}

type entry struct {
	path  string
	stamp time.Time
	data  []byte
}

// Report accumulates files and data for debug report archive, which is written
// on Close. Files are read at that time, so logs are complete.
// NOTE: not to be used concurrently!
type Report struct {
	entries map[string]entry
	file    *os.File
	runID   string
}

// SetRunID tags report manifest with run identifier.
func (r *Report) SetRunID(id string) {
	if r == nil {
		return
	}
	r.runID = id
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put into report under name. Nil report ignores
// everything, so callers do not need to check if report was requested.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.path, path))
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	r.entries[name] = entry{path: path}
}

// StoreData puts data into report under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: append([]byte{}, data...), stamp: time.Now()}
}

// Close writes report archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	now := time.Now()
	names, manifest := r.manifest(now)
	if err := saveFile(arc, "MANIFEST", now, manifest); err != nil {
		return err
	}
	for _, name := range names {
		e := r.entries[name]
		if e.data != nil {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		// absent files are ignored, they may not have been created
		info, err := os.Stat(e.path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := storeFile(arc, name, e.path, info.ModTime()); err != nil {
			return err
		}
	}
	return arc.Close()
}

func (r *Report) manifest(now time.Time) ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s %s (%s)\n", misc.GetAppName(), misc.GetVersion(), misc.GetGitHash())
	if len(r.runID) > 0 {
		fmt.Fprintf(buf, "run %s\n", r.runID)
	}

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if natural.Less(a, b) {
			return -1
		}
		if natural.Less(b, a) {
			return 1
		}
		return strings.Compare(a, b)
	})

	for _, name := range names {
		e := r.entries[name]
		stamp, origin := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if len(origin) == 0 {
			origin = fmt.Sprintf("<%d bytes>", len(e.data))
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), name, origin)
	}
	return names, buf
}

func storeFile(arc *zip.Writer, name, path string, modified time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(arc, name, modified, f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
