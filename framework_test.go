package docindex_test

import (
	"testing"

	"github.com/fwojciec/docindex"
	"github.com/stretchr/testify/assert"
)

func TestGeneratedPage(t *testing.T) {
	t.Parallel()

	t.Run("recognizes pages every generator writes", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{
			"https://docs.example.com/genindex.html",
			"https://docs.example.com/en/latest/search.html",
			"https://docs.example.com/py-modindex.html",
			"https://docs.example.com/_sources/index.rst.txt",
			"https://docs.example.com/_modules/demo.html",
			"https://docs.example.com/_static/logo.png",
			"https://docs.example.com/objects.inv",
		} {
			assert.True(t, docindex.GeneratedPage(docindex.FrameworkUnknown, u), u)
		}
	})

	t.Run("keeps documentation pages", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{
			"https://docs.example.com/",
			"https://docs.example.com/install.html",
			"https://docs.example.com/guide/index.html",
			"https://docs.example.com/blog/",
		} {
			assert.False(t, docindex.GeneratedPage(docindex.FrameworkUnknown, u), u)
		}
	})

	t.Run("applies framework specific paths", func(t *testing.T) {
		t.Parallel()

		assert.True(t, docindex.GeneratedPage(docindex.FrameworkDocusaurus, "https://example.com/blog/release"))
		assert.True(t, docindex.GeneratedPage(docindex.FrameworkMkDocs, "https://example.com/assets/bundle"))
		assert.False(t, docindex.GeneratedPage(docindex.FrameworkSphinx, "https://example.com/blog/release"))
	})
}
