// Package fs reads documentation sources from disk and writes search
// indexes back to it.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/docindex"
)

// IndexFilename is the name generators give the search index script.
const IndexFilename = "searchindex.js"

// Ensure IndexWriter implements docindex.IndexWriter at compile time.
var _ docindex.IndexWriter = (*IndexWriter)(nil)

// IndexWriter writes search indexes atomically. The script is written to a
// temporary file next to the destination and renamed over it, so readers
// never observe a partially written index.
type IndexWriter struct{}

// NewIndexWriter creates a new IndexWriter.
func NewIndexWriter() *IndexWriter {
	return &IndexWriter{}
}

// WriteIndex implements docindex.IndexWriter.
func (w *IndexWriter) WriteIndex(ctx context.Context, path string, idx *docindex.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return docindex.Errorf(docindex.EINVALID, "output path required")
	}

	data, err := docindex.MarshalJS(idx)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadIndexFile loads a searchindex.js script from disk.
// Returns ENOTFOUND if the file does not exist and EINVALID if it does not
// hold a search index.
func ReadIndexFile(path string) (*docindex.Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "%s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return docindex.UnmarshalJS(data)
}
