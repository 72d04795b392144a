// Package sink turns rendered narration into output formats.
//
// A "sink" consumes a [narrate.Fragment] tree and produces:
//
//   - [Text]: plain narration, one block-level element per line
//   - [ANSI]: the same lines styled for a terminal with lipgloss
//   - [HTML] and [HTMLPage]: nested markup mirroring the fragment structure
//   - [JSON]: the fragment tree plus a summary of inline errors
//
// All sinks agree on the narration strings: a block opens with its title
// ("navigation", "list, 2 items") and, when it has content, closes with
// "end of <label>"; a span starts with one space and places its label before
// or after its content separated by ", ".
package sink
