package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/cache"
	"github.com/matzehuels/axnarrate/pkg/observability"
)

const keyTypeArtifact = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long rendered artifacts are cached. Zero means
	// cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load reads a tree from source: a file path, or "-" for standard input.
// It returns the decoded tree and the raw bytes it was decoded from.
func (r *Runner) Load(ctx context.Context, source string) (*axtree.Tree, []byte, error) {
	start := time.Now()
	t, raw, err := axtree.ImportJSON(source)
	r.loaded(ctx, source, t, err, time.Since(start))
	return t, raw, err
}

// LoadBytes decodes a tree from raw bytes. source names the origin in logs.
func (r *Runner) LoadBytes(ctx context.Context, source string, raw []byte) (*axtree.Tree, error) {
	start := time.Now()
	t, err := axtree.Parse(raw)
	r.loaded(ctx, source, t, err, time.Since(start))
	return t, err
}

func (r *Runner) loaded(ctx context.Context, source string, t *axtree.Tree, err error, d time.Duration) {
	var n int
	if t != nil {
		n = t.Len()
	}
	observability.Render().OnLoad(ctx, source, n, err)
	if err != nil {
		r.Logger.Debug("load failed", "source", source, "err", err)
		return
	}
	r.Logger.Debug("loaded tree", "source", source, "nodes", n, "duration", d)
}

// Render narrates t and renders every requested format, serving artifacts
// from the cache where possible. raw is the exact input t was decoded from
// and keys the cache; when nil, the canonical encoding of t is used.
func (r *Runner) Render(ctx context.Context, t *axtree.Tree, raw []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if raw == nil {
		var err error
		if raw, err = json.Marshal(t); err != nil {
			return nil, fmt.Errorf("encode tree for cache key: %w", err)
		}
	}

	start := time.Now()
	result := &Result{
		TreeHash:  cache.Hash(raw),
		Root:      opts.Root,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	if result.Root == "" {
		result.Root = axtree.NewIndex(t).Root()
	}
	result.Stats.NodeCount = t.Len()

	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(result.TreeHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			result.Artifacts[format] = data
			result.CacheInfo.Hits++
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	result.CacheInfo.Misses = len(missing)
	result.CacheInfo.RenderHit = len(missing) == 0

	if len(missing) > 0 {
		sub := opts
		sub.Formats = missing
		for _, format := range missing {
			observability.Render().OnRenderStart(ctx, format, t.Len())
		}

		renderStart := time.Now()
		rendered, stats, err := Render(ctx, t, sub)
		elapsed := time.Since(renderStart)
		for _, format := range missing {
			observability.Render().OnRenderComplete(ctx, format, stats.Errors, elapsed, err)
		}
		if err != nil {
			return nil, err
		}

		result.Stats.VisitedNodes = stats.Nodes
		result.Stats.SuppressedNodes = stats.Suppressed
		result.Stats.ErrorFragments = stats.Errors
		result.Stats.MaxDepth = stats.MaxDepth

		for format, data := range rendered {
			result.Artifacts[format] = data
			key := r.Keyer.ArtifactKey(result.TreeHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				r.Logger.Warn("cache write failed", "format", format, "err", err)
				continue
			}
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered tree",
		"nodes", result.Stats.NodeCount,
		"formats", opts.Formats,
		"cached", result.CacheInfo.Hits,
		"error_fragments", result.Stats.ErrorFragments,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Execute loads source and renders it in one call.
func (r *Runner) Execute(ctx context.Context, source string, opts Options) (*Result, error) {
	loadStart := time.Now()
	t, raw, err := r.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	result, err := r.Render(ctx, t, raw, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLArtifact
}
