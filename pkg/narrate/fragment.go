package narrate

import (
	"fmt"
	"strconv"
)

// Kind identifies the shape of a [Fragment].
type Kind int

const (
	KindEmpty     Kind = iota // renders nothing
	KindText                  // literal text run
	KindSpan                  // inline content annotated with a type label
	KindBlock                 // titled region with an optional closing title
	KindSequence              // ordered fragments without a wrapper
	KindLineBreak             // hard line break
	KindEmphasis              // strong emphasis around children
	KindContainer             // untitled block-level wrapper
	KindParagraph             // paragraph wrapper
	KindHeading               // heading of a given level
	KindList                  // list container
	KindListItem              // list item container
	KindError                 // inline marker for a node that could not be rendered
)

var kindNames = [...]string{
	KindEmpty:     "empty",
	KindText:      "text",
	KindSpan:      "span",
	KindBlock:     "block",
	KindSequence:  "sequence",
	KindLineBreak: "linebreak",
	KindEmphasis:  "emphasis",
	KindContainer: "container",
	KindParagraph: "paragraph",
	KindHeading:   "heading",
	KindList:      "list",
	KindListItem:  "listitem",
	KindError:     "error",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown fragment kind %q", b)
}

// Placement says whether a span's label precedes or follows its content.
type Placement int

const (
	Before Placement = iota
	After
)

func (p Placement) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// MarshalText encodes the placement by name.
func (p Placement) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes "before" or "after".
func (p *Placement) UnmarshalText(b []byte) error {
	switch string(b) {
	case "before", "":
		*p = Before
	case "after":
		*p = After
	default:
		return fmt.Errorf("unknown placement %q", b)
	}
	return nil
}

// ErrorKind classifies an inline error fragment.
type ErrorKind int

const (
	ErrNone        ErrorKind = iota
	ErrMissingNode           // a child id does not resolve
	ErrMissingRole           // a node has no role value
	ErrUnknownRole           // the role token has no rendering strategy
	ErrCycle                 // the node is already on the current path
	ErrDepth                 // the configured depth limit was reached
)

var errorKindNames = [...]string{
	ErrNone:        "",
	ErrMissingNode: "missing_node",
	ErrMissingRole: "missing_role",
	ErrUnknownRole: "unknown_role",
	ErrCycle:       "cycle",
	ErrDepth:       "depth",
}

func (e ErrorKind) String() string {
	if e >= 0 && int(e) < len(errorKindNames) {
		return errorKindNames[e]
	}
	return "ErrorKind(" + strconv.Itoa(int(e)) + ")"
}

// MarshalText encodes the error kind by name.
func (e ErrorKind) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText decodes an error kind name.
func (e *ErrorKind) UnmarshalText(b []byte) error {
	for i, name := range errorKindNames {
		if name == string(b) {
			*e = ErrorKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", b)
}

// Fragment is one node of rendered output. Which fields are meaningful
// depends on Kind:
//
//   - KindText: Text
//   - KindSpan: Label, Placement, Children (the content)
//   - KindBlock: Label, Extra, Children (nil when the block has no content)
//   - KindHeading: Level, Children
//   - KindError: Error, NodeID, Text (the message)
//   - wrappers (sequence, emphasis, container, paragraph, list, list item): Children
type Fragment struct {
	Kind      Kind       `json:"kind"`
	Text      string     `json:"text,omitempty"`
	Label     string     `json:"label,omitempty"`
	Extra     string     `json:"extra,omitempty"`
	Placement Placement  `json:"placement,omitempty"`
	Level     int        `json:"level,omitempty"`
	Error     ErrorKind  `json:"error,omitempty"`
	NodeID    string     `json:"nodeId,omitempty"`
	Children  []Fragment `json:"children,omitempty"`
}

// Empty returns the fragment that renders nothing.
func Empty() Fragment { return Fragment{Kind: KindEmpty} }

// Text returns a literal text run.
func Text(s string) Fragment { return Fragment{Kind: KindText, Text: s} }

// Sequence groups fragments without adding any wrapper.
func Sequence(fs ...Fragment) Fragment { return Fragment{Kind: KindSequence, Children: fs} }

// LineBreak returns a hard line break.
func LineBreak() Fragment { return Fragment{Kind: KindLineBreak} }

// Emphasis wraps children in strong emphasis.
func Emphasis(children []Fragment) Fragment { return Fragment{Kind: KindEmphasis, Children: children} }

// Container wraps children in an untitled block.
func Container(children []Fragment) Fragment { return Fragment{Kind: KindContainer, Children: children} }

// Paragraph wraps children in a paragraph.
func Paragraph(children []Fragment) Fragment { return Fragment{Kind: KindParagraph, Children: children} }

// Heading wraps children in a heading of the given level.
func Heading(level int, children []Fragment) Fragment {
	return Fragment{Kind: KindHeading, Level: level, Children: children}
}

// List wraps children in a list container.
func List(children []Fragment) Fragment { return Fragment{Kind: KindList, Children: children} }

// ListItem wraps children in a list item.
func ListItem(children []Fragment) Fragment { return Fragment{Kind: KindListItem, Children: children} }

// Block wraps content with a title line built from label and extra. A block
// whose content renders nothing keeps only its opening title: Children is
// nil and sinks emit no closing "end of" line.
func Block(label, extra string, content []Fragment) Fragment {
	f := Fragment{Kind: KindBlock, Label: label, Extra: extra}
	if !allEmpty(content) {
		f.Children = content
	}
	return f
}

// Span annotates inline content with a type label placed before or after it.
// Sinks emit a single leading space before every span.
func Span(label string, content []Fragment, p Placement) Fragment {
	return Fragment{Kind: KindSpan, Label: label, Placement: p, Children: content}
}

// Title returns the opening title line of a block: the label, followed by
// ", " and the extra descriptor when one is set.
func (f Fragment) Title() string {
	if f.Extra == "" {
		return f.Label
	}
	return f.Label + ", " + f.Extra
}

// ClosingTitle returns the closing title line of a block.
func (f Fragment) ClosingTitle() string { return "end of " + f.Label }

// HasContent reports whether a block carries content (and therefore a
// closing title line).
func (f Fragment) HasContent() bool { return len(f.Children) > 0 }

// IsEmpty reports whether f renders nothing at all.
func (f Fragment) IsEmpty() bool {
	switch f.Kind {
	case KindEmpty:
		return true
	case KindText:
		return f.Text == ""
	case KindSequence:
		return allEmpty(f.Children)
	default:
		return false
	}
}

func allEmpty(fs []Fragment) bool {
	for _, f := range fs {
		if !f.IsEmpty() {
			return false
		}
	}
	return true
}

// Walk calls fn for f and every descendant in document order. Returning
// false from fn skips the fragment's children.
func Walk(f Fragment, fn func(Fragment) bool) {
	if !fn(f) {
		return
	}
	for _, c := range f.Children {
		Walk(c, fn)
	}
}

// Errors collects every error fragment in f in document order.
func Errors(f Fragment) []Fragment {
	var out []Fragment
	Walk(f, func(c Fragment) bool {
		if c.Kind == KindError {
			out = append(out, c)
		}
		return true
	})
	return out
}
