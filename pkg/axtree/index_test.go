package axtree

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndex(t *testing.T) {
	tree := &Tree{Nodes: []Node{
		{ID: "root", ChildIDs: []string{"a", "missing"}},
		{ID: "a", ChildIDs: []string{"gone"}},
	}}
	ix := NewIndex(tree)

	if ix.Root() != "root" {
		t.Errorf("Root() = %q, want root", ix.Root())
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	if n, ok := ix.Lookup("a"); !ok || n.ID != "a" {
		t.Errorf("Lookup(a) = %v, %v", n, ok)
	}
	if _, ok := ix.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported ok")
	}
	if diff := cmp.Diff([]string{"missing", "gone"}, ix.Dangling()); diff != "" {
		t.Errorf("Dangling() (-want +got):\n%s", diff)
	}
}

func TestIndexEmptyTree(t *testing.T) {
	ix := NewIndex(&Tree{})
	if ix.Root() != "" {
		t.Errorf("Root() = %q, want empty", ix.Root())
	}
	if _, ok := ix.Lookup(""); ok {
		t.Error("Lookup on empty tree reported ok")
	}
}

func TestIndexDuplicateLaterWins(t *testing.T) {
	first := NewString(TypeRole, "button")
	second := NewString(TypeRole, "link")
	ix := NewIndex(&Tree{Nodes: []Node{
		{ID: "x", Role: &first},
		{ID: "x", Role: &second},
	}})
	n, _ := ix.Lookup("x")
	if tok, _ := n.RoleToken(); tok != "link" {
		t.Errorf("duplicate id resolved to %q, want link", tok)
	}
	if ix.Root() != "x" {
		t.Errorf("Root() = %q, want x", ix.Root())
	}
}

func TestIndexConcurrentReads(t *testing.T) {
	ix := NewIndex(Example())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range []string{"1", "20", "43", "nope"} {
				ix.Lookup(id)
			}
		}()
	}
	wg.Wait()
}
