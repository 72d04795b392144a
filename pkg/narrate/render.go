package narrate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/axnarrate/pkg/axtree"
)

// DefaultMaxDepth bounds recursion when no [WithMaxDepth] option is given.
const DefaultMaxDepth = 1024

// defaultHeadingLevel is used when a heading carries no usable level.
const defaultHeadingLevel = 6

// Option configures a [Renderer].
type Option func(*Renderer)

// WithMaxDepth sets the deepest nesting the renderer descends into. Nodes
// below the limit render a depth marker. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// Renderer turns the nodes of an indexed tree into narration fragments.
// A Renderer holds no per-render state; one value can serve any number of
// concurrent Render calls.
type Renderer struct {
	index    *axtree.Index
	maxDepth int
}

// New returns a renderer over ix. It panics if ix is nil: rendering
// without a tree is a programming error, not a data error.
func New(ix *axtree.Index, opts ...Option) *Renderer {
	if ix == nil {
		panic("narrate: New called with nil index")
	}
	r := &Renderer{index: ix, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats summarizes one render pass.
type Stats struct {
	Nodes      int // nodes dispatched to a strategy
	Suppressed int // ignored or hidden nodes skipped with their subtree
	Errors     int // inline error markers produced
	MaxDepth   int // deepest nesting reached
}

// Render renders the subtree rooted at id outside of any link.
func (r *Renderer) Render(id string) Fragment {
	f, _ := r.RenderStats(id)
	return f
}

// RenderRoot renders the whole tree from its root.
func (r *Renderer) RenderRoot() Fragment { return r.Render(r.index.Root()) }

// RenderStats renders the subtree rooted at id and reports what the pass
// visited.
func (r *Renderer) RenderStats(id string) (Fragment, Stats) {
	w := &walk{r: r, onPath: make(map[string]bool)}
	f := w.node(id, false, 0)
	return f, w.stats
}

// Render indexes t and renders it from its root.
func Render(t *axtree.Tree, opts ...Option) Fragment {
	return New(axtree.NewIndex(t), opts...).RenderRoot()
}

// walk carries the bookkeeping of a single render pass.
type walk struct {
	r      *Renderer
	onPath map[string]bool
	stats  Stats
}

func (w *walk) node(id string, inLink bool, depth int) Fragment {
	n, ok := w.r.index.Lookup(id)
	if !ok {
		return w.fail(ErrMissingNode, id, "Cannot find node %s", id)
	}
	role, ok := n.RoleToken()
	if !ok {
		return w.fail(ErrMissingRole, id, "Node %s has no role", id)
	}
	if n.Ignored || n.Hidden() {
		w.stats.Suppressed++
		return Empty()
	}
	st, ok := roleTable[role]
	if !ok {
		return w.fail(ErrUnknownRole, id, "Unknown role %s", role)
	}
	if w.onPath[id] {
		return w.fail(ErrCycle, id, "Cycle detected at node %s", id)
	}
	if depth >= w.r.maxDepth {
		return w.fail(ErrDepth, id, "Maximum depth exceeded at node %s", id)
	}

	w.stats.Nodes++
	if depth+1 > w.stats.MaxDepth {
		w.stats.MaxDepth = depth + 1
	}
	w.onPath[id] = true
	defer delete(w.onPath, id)

	return w.apply(st, n, inLink, depth)
}

func (w *walk) apply(st strategy, n *axtree.Node, inLink bool, depth int) Fragment {
	children := func(link bool) []Fragment { return w.children(n, link, depth+1) }

	switch st.kind {
	case stratEmpty:
		return Empty()
	case stratLineBreak:
		return LineBreak()
	case stratPassThrough:
		return Sequence(children(inLink)...)
	case stratEmphasis:
		return Emphasis(children(inLink))
	case stratLandmark:
		return Block(joinWords(n.NameText(), st.label), "", children(inLink))
	case stratContainer:
		return Container(children(inLink))
	case stratParagraph:
		return Paragraph(children(inLink))
	case stratText:
		return Text(" " + n.NameText())
	case stratHeading:
		return Heading(headingLevel(n), children(inLink))
	case stratLink:
		return Span(StateText(n)+st.label, children(true), st.placement)
	case stratNamedSpan:
		return Span(StateText(n)+st.label, []Fragment{Text(n.NameText())}, st.placement)
	case stratChildSpan:
		return Span(StateText(n)+st.label, children(inLink), st.placement)
	case stratImage:
		p := After
		if inLink {
			p = Before
		}
		return Span(st.label, []Fragment{Text(n.NameText())}, p)
	case stratList:
		return Block(st.label, itemCount(len(n.ChildIDs)), []Fragment{List(children(inLink))})
	case stratListItem:
		return ListItem(children(inLink))
	case stratSeparator:
		return Block(st.label, "", nil)
	}
	panic(fmt.Sprintf("narrate: unhandled strategy %d", st.kind))
}

// children renders every child of n in order, synthesizing a space between
// adjacent text leaves.
func (w *walk) children(n *axtree.Node, inLink bool, depth int) []Fragment {
	out := make([]Fragment, 0, len(n.ChildIDs))
	for i, id := range n.ChildIDs {
		if needsSeparator(w.r.index, n.ChildIDs, i) {
			out = append(out, Text(" "))
		}
		out = append(out, w.node(id, inLink, depth))
	}
	return out
}

func (w *walk) fail(kind ErrorKind, id, format string, args ...any) Fragment {
	w.stats.Errors++
	return Fragment{Kind: KindError, Error: kind, NodeID: id, Text: fmt.Sprintf(format, args...)}
}

// headingLevel reads the level property, falling back to 6 when it is
// absent, zero or not a number.
func headingLevel(n *axtree.Node) int {
	switch p := n.Prop(axtree.PropLevel).(type) {
	case axtree.Integer:
		if p > 0 {
			return int(p)
		}
	case axtree.Number:
		if p >= 1 {
			return int(p)
		}
	case axtree.String:
		if v, err := strconv.Atoi(string(p)); err == nil && v > 0 {
			return v
		}
	case axtree.Undefined, axtree.Bool, axtree.Tristate, axtree.StringList, axtree.NodeList:
	}
	return defaultHeadingLevel
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}

func joinWords(words ...string) string {
	parts := words[:0:0]
	for _, w := range words {
		if w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}
