package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadDataset reads canonical dataset previously written by WriteDataset.
func ReadDataset(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("unable to decode dataset: %w", err)
	}
	return &ds, nil
}

// LoadDataset reads dataset from file.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDataset(f)
}

// MarshalDataset returns indented JSON form of the dataset.
func MarshalDataset(ds *Dataset) ([]byte, error) {
	out := *ds
	// always produce arrays, never nulls
	if out.Outline == nil {
		out.Outline = []OutlineEntry{}
	}
	if out.Index == nil {
		out.Index = []IndexEntry{}
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("unable to encode dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDataset stores dataset to file, replacing it atomically.
func WriteDataset(path string, ds *Dataset) error {
	data, err := MarshalDataset(ds)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create dataset file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("unable to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("unable to store dataset: %w", err)
	}
	return nil
}
