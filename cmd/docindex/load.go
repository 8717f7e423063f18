package main

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/fs"
)

// loadValidIndex is like loadIndex but also rejects structurally invalid
// indexes, for commands that follow postings into the document lists.
func loadValidIndex(deps *Dependencies, ref string) (*docindex.Index, error) {
	idx, err := loadIndex(deps, ref)
	if err != nil {
		return nil, err
	}
	if err := idx.Validate(); err != nil {
		return nil, docindex.Errorf(docindex.EINVALID, "%s: %s", ref, docindex.ErrorMessage(err))
	}
	return idx, nil
}

// loadIndex resolves an index reference. A reference is an http(s) URL of
// a published index (a URL ending in "/" gets searchindex.js appended), a
// file or a directory holding searchindex.js, "@project" for the latest
// recorded build of a project, or a build id.
func loadIndex(deps *Dependencies, ref string) (*docindex.Index, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, docindex.Errorf(docindex.EINVALID, "invalid index URL %q", ref)
		}
		if strings.HasSuffix(u.Path, "/") || u.Path == "" {
			u = u.JoinPath(fs.IndexFilename)
		}
		body, err := deps.Fetcher.Fetch(deps.Ctx, u.String())
		if err != nil {
			return nil, err
		}
		return docindex.UnmarshalJS([]byte(body))
	}

	if info, err := os.Stat(ref); err == nil {
		path := ref
		if info.IsDir() {
			path = filepath.Join(ref, fs.IndexFilename)
		}
		return fs.ReadIndexFile(path)
	}

	build, err := findBuild(deps, ref)
	if docindex.ErrorCode(err) == docindex.ENOTFOUND {
		return nil, docindex.Errorf(docindex.ENOTFOUND, "no index file, URL or build matches %q", ref)
	} else if err != nil {
		return nil, err
	}
	return build.Index()
}

// findBuild resolves a build id or "@project" reference.
func findBuild(deps *Dependencies, ref string) (*docindex.Build, error) {
	if project, ok := strings.CutPrefix(ref, "@"); ok {
		if project == "" {
			return nil, docindex.Errorf(docindex.EINVALID, "project name required after @")
		}
		return deps.Builds.FindLatestBuild(deps.Ctx, project)
	}
	if ref == "" {
		return nil, docindex.Errorf(docindex.EINVALID, "build id required")
	}
	return deps.Builds.FindBuildByID(deps.Ctx, ref)
}
