package build_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/build"
	"github.com/fwojciec/docindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textParser treats the first line of a file as its title and the rest as
// body text. Content starting with "!" fails to parse.
func textParser() *mock.Parser {
	return &mock.Parser{
		ParseFn: func(ctx context.Context, f *docindex.SourceFile) (*docindex.SourceDoc, error) {
			content := string(f.Content)
			if strings.HasPrefix(content, "!") {
				return nil, docindex.Errorf(docindex.EINVALID, "cannot parse %s", f.Filename)
			}
			title, text, _ := strings.Cut(content, "\n")
			return &docindex.SourceDoc{
				DocName:  f.DocName,
				Filename: f.Filename,
				Title:    title,
				Text:     text,
			}, nil
		},
	}
}

func source(files ...*docindex.SourceFile) *mock.SourceProvider {
	return &mock.SourceProvider{
		SourcesFn: func(ctx context.Context) ([]*docindex.SourceFile, error) {
			return files, nil
		},
	}
}

func file(name, content string) *docindex.SourceFile {
	return &docindex.SourceFile{DocName: docindex.DocNameFromPath(name), Filename: name, Content: []byte(content)}
}

func newPipeline(src docindex.SourceProvider) *build.Pipeline {
	registry := build.NewRegistry()
	parser := textParser()
	registry.Register(parser, ".md", ".html")
	return &build.Pipeline{
		Source:   src,
		Parsers:  registry,
		Language: english(),
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("builds an index from every parsable source", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(source(
			file("usage.md", "Usage\nRun the command."),
			file("index.md", "Home\nWelcome."),
			file("logo.png", "binary"),
		))

		result, err := p.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"index", "usage"}, result.Index.DocNames)
		assert.Equal(t, []string{"logo.png"}, result.Skipped)
		assert.Empty(t, result.Failed)
		require.Len(t, result.Docs, 2)
		assert.Equal(t, "index", result.Docs[0].DocName)
	})

	t.Run("skips sources that fail to parse", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(source(
			file("index.md", "Home\nWelcome."),
			file("broken.md", "!garbage"),
		))

		var mu sync.Mutex
		var events []build.ProgressEvent
		result, err := p.Run(context.Background(), func(e build.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"index"}, result.Index.DocNames)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "broken.md", result.Failed[0].Filename)
		assert.Equal(t, docindex.EINVALID, docindex.ErrorCode(result.Failed[0].Err))

		require.Len(t, events, 4)
		assert.Equal(t, build.ProgressEvent{Type: build.ProgressStarted, Total: 2}, events[0])
		assert.Equal(t, build.ProgressFinished, events[3].Type)
		var failed []string
		for _, e := range events[1:3] {
			if e.Type == build.ProgressFailed {
				failed = append(failed, e.Filename)
				assert.Error(t, e.Error)
			}
		}
		assert.Equal(t, []string{"broken.md"}, failed)
	})

	t.Run("first file wins when two map to the same document", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(source(
			file("guide.md", "Guide from markdown\n"),
			file("guide.html", "Guide from html\n"),
		))

		result, err := p.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"Guide from html"}, result.Index.Titles)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "guide.md", result.Failed[0].Filename)
		assert.Equal(t, docindex.ECONFLICT, docindex.ErrorCode(result.Failed[0].Err))
	})

	t.Run("no indexable documents is EINVALID", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(source(file("broken.md", "!nope"), file("image.svg", "<svg/>")))

		result, err := p.Run(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, docindex.EINVALID, docindex.ErrorCode(err))
		assert.Contains(t, docindex.ErrorMessage(err), "2 sources, 1 failed, 1 skipped")
		require.NotNil(t, result)
		assert.Nil(t, result.Index)
	})

	t.Run("wraps source errors", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(&mock.SourceProvider{
			SourcesFn: func(ctx context.Context) ([]*docindex.SourceFile, error) {
				return nil, docindex.Errorf(docindex.ENOTFOUND, "source directory docs not found")
			},
		})

		_, err := p.Run(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
		assert.Contains(t, err.Error(), "collecting sources")
	})

	t.Run("returns context errors", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := newPipeline(source(file("index.md", "Home\n")))

		_, err := p.Run(ctx, nil)

		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("requires its collaborators", func(t *testing.T) {
		t.Parallel()

		_, err := (&build.Pipeline{}).Run(context.Background(), nil)

		assert.Equal(t, docindex.EINTERNAL, docindex.ErrorCode(err))
	})

	t.Run("passes weights and environment versions to the builder", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(source(file("index.md", "Home\nWelcome home.")))
		p.Weights = true
		p.EnvVersion = map[string]int{"sphinx": 61}

		result, err := p.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 61, result.Index.EnvVersion["sphinx"])
		assert.Equal(t, map[int]int{0: build.TitleWeight + 1}, result.Index.TermWeights["home"])
	})
}
