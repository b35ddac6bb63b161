package batches

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Kind of the batch source.
// ENUM(unknown, directory, archive, journal, json)
type Kind int

// headSize is enough for filetype matchers we care about.
const headSize = 262

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, headSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile checks extension first and then makes sure file content
// really is zip.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isJournalFile recognizes SQLite database regardless of extension.
func isJournalFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return false, nil
	}
	return kind.Extension == "sqlite", nil
}

// Detect reports what kind of batch source path points to.
func Detect(path string) (Kind, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return KindUnknown, err
	}
	if fi.IsDir() {
		return KindDirectory, nil
	}
	if !fi.Mode().IsRegular() {
		return KindUnknown, nil
	}
	if ok, err := isArchiveFile(path); err != nil {
		return KindUnknown, err
	} else if ok {
		return KindArchive, nil
	}
	if ok, err := isJournalFile(path); err != nil {
		return KindUnknown, err
	} else if ok {
		return KindJournal, nil
	}
	return KindJson, nil
}
