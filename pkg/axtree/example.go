package axtree

import (
	_ "embed"
)

//go:embed testdata/example.json
var exampleJSON []byte

// ExampleJSON returns the raw bytes of the bundled example snapshot.
func ExampleJSON() []byte {
	out := make([]byte, len(exampleJSON))
	copy(out, exampleJSON)
	return out
}

// Example returns a freshly decoded copy of the bundled example snapshot: a
// small page with landmarks, a navigation list, form controls and an image
// link. It is what the CLI renders when asked for the example tree.
func Example() *Tree {
	t, err := Parse(exampleJSON)
	if err != nil {
		panic("axtree: bundled example is invalid: " + err.Error())
	}
	return t
}
