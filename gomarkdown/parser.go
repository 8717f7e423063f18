// Package gomarkdown parses markdown documentation sources using gomarkdown.
package gomarkdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/fwojciec/docindex"
	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// Ensure Parser implements docindex.Parser at compile time.
var _ docindex.Parser = (*Parser)(nil)

// Parser extracts titles, sections and body text from markdown sources.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// frontMatter holds the front matter keys the parser understands.
type frontMatter struct {
	Title string `yaml:"title"`
}

// Parse parses a markdown source file.
//
// A title in YAML front matter wins. Otherwise the page title is the first
// level-1 heading, then the first heading of any level, then the docname.
func (p *Parser) Parse(ctx context.Context, file *docindex.SourceFile) (*docindex.SourceDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, meta, err := splitFrontMatter(file.Content)
	if err != nil {
		return nil, docindex.Errorf(docindex.EINVALID, "%s: invalid front matter: %v", file.Filename, err)
	}

	root := gm.Parse(body, gmparser.NewWithExtensions(gmparser.CommonExtensions))

	doc := &docindex.SourceDoc{
		DocName:  file.DocName,
		Filename: file.Filename,
		Content:  string(body),
	}

	anchors := docindex.NewAnchorSet()
	var text strings.Builder
	firstH1 := ""

	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(nodeText(n))
			if title == "" {
				return ast.SkipChildren
			}
			anchor := ""
			if n.HeadingID != "" {
				anchor = anchors.Reserve(n.HeadingID)
			} else {
				anchor = anchors.Unique(title)
			}
			doc.Sections = append(doc.Sections, docindex.Section{
				Level:  n.Level,
				Title:  title,
				Anchor: anchor,
			})
			if n.Level == 1 && firstH1 == "" {
				firstH1 = title
			}
			return ast.SkipChildren
		case *ast.HTMLBlock, *ast.HTMLSpan:
			return ast.GoToNext
		case *ast.Softbreak, *ast.Hardbreak:
			text.WriteByte(' ')
		default:
			if leaf := node.AsLeaf(); leaf != nil && len(leaf.Literal) > 0 {
				text.Write(leaf.Literal)
				text.WriteByte(' ')
			}
		}
		return ast.GoToNext
	})

	doc.Text = strings.TrimSpace(text.String())

	switch {
	case meta.Title != "":
		doc.Title = meta.Title
	case firstH1 != "":
		doc.Title = firstH1
	case len(doc.Sections) > 0:
		doc.Title = doc.Sections[0].Title
	default:
		doc.Title = file.DocName
	}

	return doc, nil
}

// nodeText concatenates the literal text below n.
func nodeText(n ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(n, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if _, ok := node.(*ast.HTMLSpan); ok {
			return ast.GoToNext
		}
		if leaf := node.AsLeaf(); leaf != nil {
			sb.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}

// splitFrontMatter separates a leading "---" YAML block from the markdown body.
func splitFrontMatter(src []byte) ([]byte, frontMatter, error) {
	var meta frontMatter
	normalized := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return normalized, meta, nil
	}

	rest := normalized[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	var block, body []byte
	switch {
	case end >= 0:
		block, body = rest[:end], rest[end+len("\n---\n"):]
	case bytes.HasSuffix(rest, []byte("\n---")):
		block, body = rest[:len(rest)-len("\n---")], nil
	default:
		// No closing delimiter: treat the whole file as markdown.
		return normalized, meta, nil
	}

	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, meta, err
	}
	return body, meta, nil
}
