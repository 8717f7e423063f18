package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/docindex"
)

// DefaultExclude lists the patterns DirSource skips unless told otherwise:
// generator output and installed dependencies.
var DefaultExclude = []string{"_build/**", "site/**", "node_modules/**"}

// Ensure DirSource implements docindex.SourceProvider at compile time.
var _ docindex.SourceProvider = (*DirSource)(nil)

// DirSource lists documentation sources below a local directory.
//
// Only files with one of the given extensions are returned. Hidden files and
// directories are always skipped. Exclude patterns are slash-separated and
// relative to the root; a pattern ending in "/**" excludes a whole directory,
// other patterns are matched with path.Match against the relative path and
// against the file name.
type DirSource struct {
	Root    string
	Exts    []string
	Exclude []string
}

// NewDirSource creates a DirSource with the default exclude patterns.
func NewDirSource(root string, exts []string) *DirSource {
	return &DirSource{
		Root:    root,
		Exts:    exts,
		Exclude: slices.Clone(DefaultExclude),
	}
}

// Sources implements docindex.SourceProvider. Files are returned in lexical
// path order.
func (s *DirSource) Sources(ctx context.Context) ([]*docindex.SourceFile, error) {
	info, err := os.Stat(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "source directory %s not found", s.Root)
	} else if err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, docindex.Errorf(docindex.EINVALID, "source %s is not a directory", s.Root)
	}

	exts := make(map[string]bool, len(s.Exts))
	for _, ext := range s.Exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	var files []*docindex.SourceFile
	err = filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == s.Root {
			return nil
		}

		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || s.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}
		if !exts[strings.ToLower(path.Ext(rel))] || s.excludedFile(rel) {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, &docindex.SourceFile{
			DocName:  docindex.DocNameFromPath(rel),
			Filename: rel,
			Content:  content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Excluded reports whether a slash-separated path relative to the root is
// skipped, either itself or through one of its parent directories. An
// excluded directory reports true for its own path too.
func (s *DirSource) Excluded(rel string) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if strings.HasPrefix(parts[i-1], ".") || s.excludedDir(dir) {
			return true
		}
	}
	return strings.HasPrefix(parts[len(parts)-1], ".") || s.excludedDir(rel) || s.excludedFile(rel)
}

func (s *DirSource) excludedDir(rel string) bool {
	for _, pattern := range s.Exclude {
		dir, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if matched, _ := path.Match(dir, rel); matched {
			return true
		}
	}
	return false
}

func (s *DirSource) excludedFile(rel string) bool {
	for _, pattern := range s.Exclude {
		if strings.HasSuffix(pattern, "/**") {
			continue
		}
		if matched, _ := path.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := path.Match(pattern, path.Base(rel)); matched {
			return true
		}
	}
	return false
}
