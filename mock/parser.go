package mock

import (
	"context"

	"github.com/fwojciec/docindex"
)

var _ docindex.Parser = (*Parser)(nil)

// Parser is a mock implementation of docindex.Parser.
type Parser struct {
	ParseFn func(ctx context.Context, file *docindex.SourceFile) (*docindex.SourceDoc, error)
}

func (p *Parser) Parse(ctx context.Context, file *docindex.SourceFile) (*docindex.SourceDoc, error) {
	return p.ParseFn(ctx, file)
}

var _ docindex.ParserRegistry = (*ParserRegistry)(nil)

// ParserRegistry is a mock implementation of docindex.ParserRegistry.
type ParserRegistry struct {
	GetFn        func(ext string) docindex.Parser
	RegisterFn   func(parser docindex.Parser, exts ...string)
	ExtensionsFn func() []string
}

func (r *ParserRegistry) Get(ext string) docindex.Parser {
	return r.GetFn(ext)
}

func (r *ParserRegistry) Register(parser docindex.Parser, exts ...string) {
	r.RegisterFn(parser, exts...)
}

func (r *ParserRegistry) Extensions() []string {
	return r.ExtensionsFn()
}
