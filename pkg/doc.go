// Package pkg holds the libraries behind axnarrate, which reads an
// accessibility tree snapshot aloud as the linear narration a screen reader
// user would hear.
//
// # Layout
//
//  1. [axtree]: the snapshot data model, JSON decoding and the id index
//  2. [narrate]: the renderer, from tree to a tree of narration fragments
//  3. [render]: output stages (text, ANSI, HTML, JSON, node-link diagrams, diffs)
//  4. [pipeline]: load, render and cache, shared by the CLI and the server
//  5. [cache], [session]: artifact cache and saved trees (file or Redis)
//  6. [config], [errors], [observability], [buildinfo]: ambient concerns
//
// # Data Flow
//
//	snapshot JSON
//	     ↓
//	[axtree] Parse → Tree → Index
//	     ↓
//	[narrate] Render → Fragment
//	     ↓
//	[render] sinks → text / ansi / html / json
//
// # Quick Start
//
//	tree, err := axtree.Parse(data)
//	if err != nil {
//		return err
//	}
//	fmt.Print(sink.Text(narrate.Render(tree)))
//
// [axtree]: github.com/matzehuels/axnarrate/pkg/axtree
// [narrate]: github.com/matzehuels/axnarrate/pkg/narrate
// [render]: github.com/matzehuels/axnarrate/pkg/render
// [pipeline]: github.com/matzehuels/axnarrate/pkg/pipeline
// [cache]: github.com/matzehuels/axnarrate/pkg/cache
// [session]: github.com/matzehuels/axnarrate/pkg/session
// [config]: github.com/matzehuels/axnarrate/pkg/config
// [errors]: github.com/matzehuels/axnarrate/pkg/errors
// [observability]: github.com/matzehuels/axnarrate/pkg/observability
// [buildinfo]: github.com/matzehuels/axnarrate/pkg/buildinfo
package pkg
