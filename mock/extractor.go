package mock

import "github.com/fwojciec/docindex"

var _ docindex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docindex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docindex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docindex.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ docindex.Converter = (*Converter)(nil)

// Converter is a mock implementation of docindex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docindex.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of docindex.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) docindex.Framework
}

func (d *FrameworkDetector) Detect(html string) docindex.Framework {
	return d.DetectFn(html)
}
