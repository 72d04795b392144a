// Package pipeline provides the load → narrate → render pipeline for axnarrate.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// logging and option defaults behave the same on every entry point.
//
// # Stages
//
//  1. Load: read a tree snapshot from a file, standard input or raw bytes
//  2. Narrate: build the fragment tree with [narrate.Renderer]
//  3. Render: flatten the fragment tree (or the raw tree, for node-link
//     formats) into one artifact per requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	tree, raw, err := runner.Load(ctx, "page.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Render(ctx, tree, raw, pipeline.Options{
//	    Formats: []string{pipeline.FormatText, pipeline.FormatHTML},
//	})
//	fmt.Print(string(result.Artifacts["text"]))
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/axnarrate/pkg/cache"
	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatANSI = "ansi"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatText

// DefaultMaxDepth is the narration depth limit applied when Options.MaxDepth is zero.
const DefaultMaxDepth = narrate.DefaultMaxDepth

// formats lists every supported format in display order.
var formats = []string{FormatText, FormatANSI, FormatHTML, FormatJSON, FormatDOT, FormatSVG, FormatPNG}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatANSI: true,
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Formats returns the supported output formats.
func Formats() []string {
	return append([]string(nil), formats...)
}

// IsNodelink reports whether format draws the raw tree rather than its narration.
func IsNodelink(format string) bool {
	return format == FormatDOT || format == FormatSVG || format == FormatPNG
}

// ContentType returns the MIME type of an artifact in format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options contains all configuration for a render.
// This struct supports JSON serialization for API requests.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Root renders the subtree of this node instead of the tree root.
	Root string `json:"root,omitempty"`

	MaxDepth int `json:"max_depth,omitempty"`

	// Page wraps HTML output in a standalone document.
	Page bool `json:"page,omitempty"`

	// Node-link options
	Detailed       bool `json:"detailed,omitempty"`
	SkipSuppressed bool `json:"skip_suppressed,omitempty"`

	// Refresh skips cache reads; fresh artifacts are still written.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a render.
type Result struct {
	// TreeHash is the content hash of the raw tree.
	TreeHash string

	// Root is the id of the node the narration started from.
	Root string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains render statistics. Narration counters are zero when every
// artifact came from the cache.
type Stats struct {
	NodeCount       int
	VisitedNodes    int
	SuppressedNodes int
	ErrorFragments  int
	MaxDepth        int
	LoadTime        time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
	Hits      int
	Misses    int
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(fs []string) error {
	for _, f := range fs {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "max_depth must not be negative, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	o.Formats = dedupe(o.Formats)
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one format. Options that
// cannot change the artifact are left out so equivalent renders share a key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if IsNodelink(format) {
		k.Detailed = o.Detailed
		k.SkipSuppressed = o.SkipSuppressed
		return k
	}
	k.Root = o.Root
	k.MaxDepth = o.MaxDepth
	k.Page = o.Page && format == FormatHTML
	return k
}

func (o *Options) needsNarration() bool {
	for _, f := range o.Formats {
		if !IsNodelink(f) {
			return true
		}
	}
	return false
}

func dedupe(fs []string) []string {
	seen := make(map[string]bool, len(fs))
	out := fs[:0:0]
	for _, f := range fs {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
