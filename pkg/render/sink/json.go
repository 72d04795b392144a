package sink

import (
	"encoding/json"

	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// JSONOption configures JSON rendering via [JSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	text   bool
	root   string
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONText includes the plain-text flattening alongside the fragment tree.
func WithJSONText() JSONOption { return func(r *jsonRenderer) { r.text = true } }

// WithJSONRoot records the id of the node the render started from.
func WithJSONRoot(id string) JSONOption { return func(r *jsonRenderer) { r.root = id } }

type jsonOutput struct {
	Root     string           `json:"root,omitempty"`
	Text     string           `json:"text,omitempty"`
	Errors   []jsonError      `json:"errors,omitempty"`
	Fragment narrate.Fragment `json:"fragment"`
}

type jsonError struct {
	Kind    narrate.ErrorKind `json:"kind"`
	NodeID  string            `json:"nodeId"`
	Message string            `json:"message"`
}

// JSON encodes f together with a summary of its inline errors.
func JSON(f narrate.Fragment, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Root: r.root, Fragment: f}
	if r.text {
		out.Text = Text(f)
	}
	for _, e := range narrate.Errors(f) {
		out.Errors = append(out.Errors, jsonError{Kind: e.Error, NodeID: e.NodeID, Message: e.Text})
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
