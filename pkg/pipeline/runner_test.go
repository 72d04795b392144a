package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/cache"
	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/narrate"
	"github.com/matzehuels/axnarrate/pkg/observability"
	"github.com/matzehuels/axnarrate/pkg/render/sink"
)

// memCache is an in-memory cache.Cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func testRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("Cache = %T, want NullCache", r.Cache)
	}
	if _, ok := r.Keyer.(cache.DefaultKeyer); !ok {
		t.Errorf("Keyer = %T, want DefaultKeyer", r.Keyer)
	}
	if r.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	tree := axtree.Example()
	raw := axtree.ExampleJSON()
	r := testRunner(newMemCache())

	res, err := r.Render(ctx, tree, raw, Options{Formats: []string{FormatText, FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if got, want := string(res.Artifacts[FormatText]), sink.Text(narrate.Render(tree)); got != want {
		t.Errorf("text artifact = %q, want %q", got, want)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %q", res.Artifacts[FormatDOT])
	}

	var doc struct {
		Root string `json:"root"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.Root != tree.Nodes[0].ID || doc.Text != string(res.Artifacts[FormatText]) {
		t.Errorf("json artifact = %+v", doc)
	}

	if res.Root != tree.Nodes[0].ID {
		t.Errorf("Root = %q, want %q", res.Root, tree.Nodes[0].ID)
	}
	if res.TreeHash != cache.Hash(raw) {
		t.Errorf("TreeHash = %q, want hash of raw input", res.TreeHash)
	}
	if res.Stats.NodeCount != tree.Len() || res.Stats.VisitedNodes == 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheInfo.RenderHit || res.CacheInfo.Misses != 3 {
		t.Errorf("CacheInfo = %+v, want 3 misses", res.CacheInfo)
	}
}

func TestRunnerRenderCaches(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := testRunner(c)
	tree := axtree.Example()
	raw := axtree.ExampleJSON()
	opts := Options{Formats: []string{FormatText, FormatHTML}}

	first, err := r.Render(ctx, tree, raw, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if c.sets != 2 {
		t.Fatalf("cache sets = %d, want 2", c.sets)
	}

	second, err := r.Render(ctx, tree, raw, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !second.CacheInfo.RenderHit || second.CacheInfo.Hits != 2 {
		t.Errorf("CacheInfo = %+v, want full hit", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatHTML], second.Artifacts[FormatHTML]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// A partial hit renders only the missing format.
	mixed, err := r.Render(ctx, tree, raw, Options{Formats: []string{FormatText, FormatANSI}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if mixed.CacheInfo.Hits != 1 || mixed.CacheInfo.Misses != 1 || c.sets != 3 {
		t.Errorf("CacheInfo = %+v, sets = %d", mixed.CacheInfo, c.sets)
	}

	refreshed, err := r.Render(ctx, tree, raw, Options{Formats: []string{FormatText}, Refresh: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if refreshed.CacheInfo.Hits != 0 || c.sets != 4 {
		t.Errorf("Refresh should bypass reads and rewrite: %+v, sets = %d", refreshed.CacheInfo, c.sets)
	}
}

func TestRunnerRenderOptionsChangeKey(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := testRunner(c)
	tree := axtree.Example()

	if _, err := r.Render(ctx, tree, nil, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	res, err := r.Render(ctx, tree, nil, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("a different max depth should not hit the cache")
	}
	if res.Stats.ErrorFragments == 0 {
		t.Error("max depth 2 should produce depth error fragments")
	}
}

func TestRunnerRenderRootAndPage(t *testing.T) {
	tree := &axtree.Tree{Nodes: []axtree.Node{
		{ID: "1", Role: role("WebArea"), Name: name("Doc"), ChildIDs: []string{"2"}},
		{ID: "2", Role: role("text"), Name: name("Hello")},
	}}
	r := testRunner(nil)

	res, err := r.Render(context.Background(), tree, nil, Options{Formats: []string{FormatText}, Root: "2"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := string(res.Artifacts[FormatText]); got != " Hello\n" {
		t.Errorf("subtree text = %q, want %q", got, " Hello\n")
	}

	page, err := r.Render(context.Background(), tree, nil, Options{Formats: []string{FormatHTML}, Page: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(page.Artifacts[FormatHTML]), "<title>Doc</title>") {
		t.Errorf("page = %s", page.Artifacts[FormatHTML])
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	_, err := testRunner(nil).Render(context.Background(), axtree.Example(), nil, Options{Formats: []string{"pdf"}})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("Render() error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	if err := os.WriteFile(path, axtree.ExampleJSON(), 0o644); err != nil {
		t.Fatal(err)
	}
	r := testRunner(nil)

	tree, raw, err := r.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tree.Len() != axtree.Example().Len() || !bytes.Equal(raw, axtree.ExampleJSON()) {
		t.Errorf("Load() = %d nodes", tree.Len())
	}

	if _, _, err := r.Load(context.Background(), filepath.Join(dir, "missing.json")); !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	if _, err := r.LoadBytes(context.Background(), "paste", []byte(`{"nodes":[]}`)); !apperrors.Is(err, apperrors.ErrCodeInvalidTree) {
		t.Errorf("LoadBytes(empty) error = %v, want INVALID_TREE", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, axtree.ExampleJSON(), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := testRunner(nil).Execute(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Artifacts[FormatText]) == 0 {
		t.Error("Execute() produced no text artifact")
	}
}

// recordingHooks captures render and cache events.
type recordingHooks struct {
	observability.NoopRenderHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoad(_ context.Context, source string, _ int, _ error) {
	h.record("load:" + source)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.record("render:" + format)
}

func (h *recordingHooks) OnCacheHit(context.Context, string)      { h.record("hit") }
func (h *recordingHooks) OnCacheMiss(context.Context, string)     { h.record("miss") }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) { h.record("set") }

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetRenderHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := testRunner(newMemCache())
	ctx := context.Background()
	tree, err := r.LoadBytes(ctx, "paste", axtree.ExampleJSON())
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if _, err := r.Render(ctx, tree, nil, Options{}); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"load:paste", "miss", "render:text", "set", "hit"}
	if strings.Join(hooks.events, " ") != strings.Join(want, " ") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func role(r string) *axtree.Value {
	v := axtree.NewString(axtree.TypeRole, r)
	return &v
}

func name(s string) *axtree.Value {
	v := axtree.NewString(axtree.TypeComputedString, s)
	return &v
}
