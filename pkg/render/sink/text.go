package sink

import (
	"strings"

	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// Text flattens f into plain narration. Block-level fragments (blocks,
// containers, paragraphs, headings, lists and list items) start on a fresh
// line; inline fragments are concatenated in order. Error markers appear in
// brackets where the offending node would have been.
func Text(f narrate.Fragment) string {
	return flatten(f, plain{})
}

// styler decorates the pieces of flattened output. The plain styler leaves
// text untouched; the ANSI styler colors it.
type styler interface {
	blockTitle(s string) string
	closingTitle(s string) string
	spanLabel(s string) string
	emphasis(s string) string
	heading(level int, s string) string
	errorMarker(msg string) string
}

type plain struct{}

func (plain) blockTitle(s string) string { return s }
func (plain) closingTitle(s string) string { return s }
func (plain) spanLabel(s string) string { return s }
func (plain) emphasis(s string) string { return s }
func (plain) heading(_ int, s string) string { return s }
func (plain) errorMarker(msg string) string { return "[" + msg + "]" }

func flatten(f narrate.Fragment, st styler) string {
	fl := &flattener{st: st, atLineStart: true}
	fl.frag(f)
	out := fl.b.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

type flattener struct {
	st          styler
	b           strings.Builder
	atLineStart bool
}

func (fl *flattener) write(s string) {
	if s == "" {
		return
	}
	fl.b.WriteString(s)
	fl.atLineStart = strings.HasSuffix(s, "\n")
}

// breakLine moves to a fresh line unless output is already at one.
func (fl *flattener) breakLine() {
	if fl.b.Len() > 0 && !fl.atLineStart {
		fl.write("\n")
	}
}

func (fl *flattener) all(fs []narrate.Fragment) {
	for _, f := range fs {
		fl.frag(f)
	}
}

// inline renders fs on its own so the result can be styled as a unit.
func (fl *flattener) inline(fs []narrate.Fragment) string {
	sub := &flattener{st: fl.st, atLineStart: true}
	sub.all(fs)
	return sub.b.String()
}

func (fl *flattener) frag(f narrate.Fragment) {
	switch f.Kind {
	case narrate.KindEmpty:
	case narrate.KindText:
		fl.write(f.Text)
	case narrate.KindLineBreak:
		fl.write("\n")
	case narrate.KindSequence:
		fl.all(f.Children)
	case narrate.KindEmphasis:
		fl.write(fl.st.emphasis(fl.inline(f.Children)))
	case narrate.KindSpan:
		content := fl.inline(f.Children)
		label := fl.st.spanLabel(f.Label)
		if f.Placement == narrate.After {
			fl.write(" " + content + ", " + label)
		} else {
			fl.write(" " + label + ", " + content)
		}
	case narrate.KindBlock:
		fl.breakLine()
		fl.write(fl.st.blockTitle(f.Title()) + "\n")
		if f.HasContent() {
			fl.all(f.Children)
			fl.breakLine()
			fl.write(fl.st.closingTitle(f.ClosingTitle()) + "\n")
		}
	case narrate.KindHeading:
		fl.breakLine()
		fl.write(fl.st.heading(f.Level, fl.inline(f.Children)))
		fl.breakLine()
	case narrate.KindContainer, narrate.KindParagraph, narrate.KindList, narrate.KindListItem:
		fl.breakLine()
		fl.all(f.Children)
		fl.breakLine()
	case narrate.KindError:
		fl.write(fl.st.errorMarker(f.Text))
	}
}
