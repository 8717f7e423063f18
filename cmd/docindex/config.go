package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/fs"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no config file
// is given explicitly.
const DefaultConfigFile = "docindex.yaml"

// Extractors usable for pages whose layout is not recognized.
const (
	ExtractorTrafilatura = "trafilatura"
	ExtractorReadability = "readability"
)

// DefaultRate is the number of requests per second sent to one host while
// crawling a published site.
const DefaultRate = 5.0

// Config describes how a project's index is built. A negative Rate disables
// request spacing.
type Config struct {
	Project     string         `yaml:"project"`
	Source      string         `yaml:"source"`
	URL         string         `yaml:"url"`
	Output      string         `yaml:"output"`
	Exclude     []string       `yaml:"exclude"`
	Weights     bool           `yaml:"weights"`
	Concurrency int            `yaml:"concurrency"`
	Rate        float64        `yaml:"rate"`
	Extractor   string         `yaml:"extractor"`
	EnvVersion  map[string]int `yaml:"envversion"`
	Debounce    time.Duration  `yaml:"debounce"`
}

// LoadConfig reads a YAML config file. An empty path reads DefaultConfigFile
// if it exists and returns an empty config otherwise. Relative source and
// output paths are resolved against the directory of the file.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if !explicit {
			return &Config{}, nil
		}
		return nil, docindex.Errorf(docindex.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, docindex.Errorf(docindex.EINVALID, "config file %s: %v", path, err)
	}

	dir := filepath.Dir(path)
	if cfg.Source != "" && !filepath.IsAbs(cfg.Source) {
		cfg.Source = filepath.Join(dir, cfg.Source)
	}
	if cfg.Output != "" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(dir, cfg.Output)
	}
	return &cfg, nil
}

// Validate returns an error if the config contains invalid fields.
func (c *Config) Validate() error {
	if c.Source != "" && c.URL != "" {
		return docindex.Errorf(docindex.EINVALID, "source and url are mutually exclusive")
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return docindex.Errorf(docindex.EINVALID, "url must be an absolute http(s) URL, got %q", c.URL)
		}
	}
	switch c.Extractor {
	case "", ExtractorTrafilatura, ExtractorReadability:
	default:
		return docindex.Errorf(docindex.EINVALID, "unknown extractor %q (want %s or %s)", c.Extractor, ExtractorTrafilatura, ExtractorReadability)
	}
	if c.Concurrency < 0 {
		return docindex.Errorf(docindex.EINVALID, "concurrency must not be negative")
	}
	if c.Debounce < 0 {
		return docindex.Errorf(docindex.EINVALID, "debounce must not be negative")
	}
	return nil
}

// setDefaults fills in the source, output and project a build needs.
// The source directory defaults to the working directory, the output to
// _build/searchindex.js inside it (or searchindex.js for a crawled site) and
// the project to the source directory name or site host.
func (c *Config) setDefaults() error {
	if c.URL != "" {
		if c.Rate == 0 {
			c.Rate = DefaultRate
		}
		if c.Output == "" {
			c.Output = fs.IndexFilename
		}
		if c.Project == "" {
			u, err := url.Parse(c.URL)
			if err != nil {
				return docindex.Errorf(docindex.EINVALID, "invalid url %q", c.URL)
			}
			c.Project = u.Host
		}
		return nil
	}

	if c.Source == "" {
		c.Source = "."
	}
	if c.Output == "" {
		c.Output = filepath.Join(c.Source, "_build", fs.IndexFilename)
	}
	if c.Project == "" {
		abs, err := filepath.Abs(c.Source)
		if err != nil {
			return fmt.Errorf("resolve source directory: %w", err)
		}
		c.Project = filepath.Base(abs)
	}
	return nil
}
