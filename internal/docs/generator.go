// Package docs generates an HTML documentation tree for a Python package
// from its staged source. Two interchangeable backends implement the same
// capability: the API backend introspects the sources and emits HTML
// directly, while the site backend scaffolds markdown stubs and runs a
// second themed render pass. The pipeline depends only on the Generator
// interface, never on a concrete backend.
package docs

import (
	"context"
	"fmt"

	"github.com/rusocsci/relkit/internal/pkgmeta"
)

// Backend names accepted in configuration.
const (
	BackendAPI  = "api"
	BackendSite = "site"
)

// Options carries what a backend needs to generate documentation.
type Options struct {
	Meta  *pkgmeta.Metadata
	Title string
	// SourceTree is the staged tree the package is read from.
	SourceTree string
	// OutputDir receives the final HTML tree. It is created if missing.
	OutputDir string
}

// Generator produces an HTML documentation tree.
type Generator interface {
	// Name identifies the backend in logs and run history.
	Name() string
	// Generate writes the HTML tree into opts.OutputDir.
	Generate(ctx context.Context, opts Options) error
}

// NewGenerator returns the backend registered under name.
func NewGenerator(name string) (Generator, error) {
	switch name {
	case BackendAPI:
		return &APIGenerator{}, nil
	case BackendSite:
		return &SiteGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown docs backend: %q (expected %q or %q)", name, BackendAPI, BackendSite)
	}
}
