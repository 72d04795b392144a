package narrate

import (
	"strings"

	"github.com/matzehuels/axnarrate/pkg/axtree"
)

// StateText describes the dynamic state of n as announced before its role:
// expansion, then checked state, then popup kind. Every phrase carries its
// own trailing space and absent signals contribute nothing, so the result is
// either "" or ready to be prefixed to a role label.
func StateText(n *axtree.Node) string {
	var b strings.Builder

	switch p := n.Prop(axtree.PropExpanded).(type) {
	case axtree.Bool:
		if p {
			b.WriteString("expanded ")
		} else {
			b.WriteString("collapsed ")
		}
	case axtree.Undefined, axtree.Tristate, axtree.Integer, axtree.Number,
		axtree.String, axtree.StringList, axtree.NodeList:
		// only a real boolean counts
	}

	switch p := n.Prop(axtree.PropChecked).(type) {
	case axtree.Tristate:
		writeChecked(&b, string(p))
	case axtree.String:
		writeChecked(&b, string(p))
	case axtree.Undefined, axtree.Bool, axtree.Integer, axtree.Number,
		axtree.StringList, axtree.NodeList:
		// mixed, absent or malformed: nothing to say
	}

	if p := n.Prop(axtree.PropHasPopup); p.Truthy() {
		b.WriteString(p.String())
		b.WriteString(" pop-up ")
	}

	return b.String()
}

func writeChecked(b *strings.Builder, v string) {
	switch axtree.Tristate(v) {
	case axtree.TristateTrue:
		b.WriteString("checked ")
	case axtree.TristateFalse:
		b.WriteString("unchecked ")
	}
}
