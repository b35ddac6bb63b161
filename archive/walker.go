// Package archive visits zip archive entries in document order.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is called for every file entry accepted by Walk. The name is the
// entry path inside the archive and rc is open for reading until the function
// returns. If an error is returned, processing stops.
type WalkFunc func(name string, rc io.Reader) error

// MatchFunc decides which entries Walk visits. Nil accepts every file.
type MatchFunc func(name string) bool

// Suffix returns MatchFunc accepting entries with any of the given extensions,
// case insensitive.
func Suffix(exts ...string) MatchFunc {
	return func(name string) bool {
		lower := strings.ToLower(name)
		for _, ext := range exts {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				return true
			}
		}
		return false
	}
}

// Walk visits files of the archive in natural order of their names, so
// "segment-2.json" comes before "segment-10.json". Archives with absolute
// entry paths or path traversal components are rejected as a whole.
func Walk(archive string, match MatchFunc, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || isHidden(name) {
			continue
		}
		if match == nil || match(name) {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, f := range files {
		if err := visit(f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	return walkFn(f.Name, rc)
}

// isHidden skips archiver metadata such as "__MACOSX/" and dot files.
func isHidden(name string) bool {
	for part := range strings.SplitSeq(name, "/") {
		if strings.HasPrefix(part, ".") || part == "__MACOSX" {
			return true
		}
	}
	return false
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
