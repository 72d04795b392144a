package axtree

// PropertyName names an accessibility state or relation property
// (AXPropertyName in the protocol).
type PropertyName string

const (
	PropBusy             PropertyName = "busy"
	PropDisabled         PropertyName = "disabled"
	PropEditable         PropertyName = "editable"
	PropFocusable        PropertyName = "focusable"
	PropFocused          PropertyName = "focused"
	PropHidden           PropertyName = "hidden"
	PropHiddenRoot       PropertyName = "hiddenRoot"
	PropInvalid          PropertyName = "invalid"
	PropKeyShortcuts     PropertyName = "keyshortcuts"
	PropSettable         PropertyName = "settable"
	PropRoleDescription  PropertyName = "roledescription"
	PropLive             PropertyName = "live"
	PropAtomic           PropertyName = "atomic"
	PropRelevant         PropertyName = "relevant"
	PropRoot             PropertyName = "root"
	PropAutocomplete     PropertyName = "autocomplete"
	PropHasPopup         PropertyName = "hasPopup"
	PropLevel            PropertyName = "level"
	PropMultiselectable  PropertyName = "multiselectable"
	PropOrientation      PropertyName = "orientation"
	PropMultiline        PropertyName = "multiline"
	PropReadonly         PropertyName = "readonly"
	PropRequired         PropertyName = "required"
	PropValueMin         PropertyName = "valuemin"
	PropValueMax         PropertyName = "valuemax"
	PropValueText        PropertyName = "valuetext"
	PropChecked          PropertyName = "checked"
	PropExpanded         PropertyName = "expanded"
	PropModal            PropertyName = "modal"
	PropPressed          PropertyName = "pressed"
	PropSelected         PropertyName = "selected"
	PropActiveDescendant PropertyName = "activedescendant"
	PropControls         PropertyName = "controls"
	PropDescribedBy      PropertyName = "describedby"
	PropDetails          PropertyName = "details"
	PropErrorMessage     PropertyName = "errormessage"
	PropFlowTo           PropertyName = "flowto"
	PropLabelledBy       PropertyName = "labelledby"
	PropOwns             PropertyName = "owns"
)

// Property is a named value attached to a node.
type Property struct {
	Name  PropertyName `json:"name"`
	Value Value        `json:"value"`
}

// Node is one element of an accessibility tree snapshot.
type Node struct {
	ID          string     `json:"nodeId"`
	Ignored     bool       `json:"ignored"`
	Role        *Value     `json:"role,omitempty"`
	Name        *Value     `json:"name,omitempty"`
	Description *Value     `json:"description,omitempty"`
	Value       *Value     `json:"value,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
	ChildIDs    []string   `json:"childIds,omitempty"`
}

// Property returns the first property with the given name.
func (n *Node) Property(name PropertyName) (Value, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Prop returns the payload of the named property, or [Undefined] when the
// property is absent.
func (n *Node) Prop(name PropertyName) Payload {
	v, ok := n.Property(name)
	if !ok {
		return Undefined{}
	}
	return v.Data()
}

// RoleToken returns the role token and whether the node has a role at all.
func (n *Node) RoleToken() (string, bool) {
	if n.Role == nil {
		return "", false
	}
	return n.Role.String(), true
}

// NameText returns the accessible name, or "" when the node has none.
func (n *Node) NameText() string {
	if n.Name == nil {
		return ""
	}
	return n.Name.String()
}

// Hidden reports whether the hidden property is set.
func (n *Node) Hidden() bool {
	return n.Prop(PropHidden).Truthy()
}

// Suppressed reports whether the node and its subtree produce no output.
func (n *Node) Suppressed() bool {
	return n.Ignored || n.Hidden()
}

// Tree is a flat accessibility tree snapshot. The first node is the root;
// the input format carries no explicit root marker, so producers that
// reorder nodes change which node is rendered first.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Len returns the number of nodes in the snapshot.
func (t *Tree) Len() int { return len(t.Nodes) }
