package narrate

import "sort"

const roleText = "text"

// strategyKind selects how a role is rendered.
type strategyKind int

const (
	stratPassThrough strategyKind = iota
	stratEmpty
	stratLineBreak
	stratEmphasis
	stratLandmark
	stratContainer
	stratParagraph
	stratText
	stratHeading
	stratLink
	stratNamedSpan
	stratChildSpan
	stratImage
	stratList
	stratListItem
	stratSeparator
)

// strategy is one entry of the role table. label and placement are only
// read by the kinds that announce a role.
type strategy struct {
	kind      strategyKind
	label     string
	placement Placement
}

func landmark(label string) strategy { return strategy{kind: stratLandmark, label: label} }

func namedSpan(label string) strategy {
	return strategy{kind: stratNamedSpan, label: label, placement: After}
}

var passThrough = strategy{kind: stratPassThrough}

// roleTable maps every supported role token to its rendering strategy.
// Tokens missing from the table render an unknown-role marker.
var roleTable = map[string]strategy{
	"WebArea":   landmark("web content"),
	"SVGRoot":   {kind: stratEmpty},
	"LineBreak": {kind: stratLineBreak},

	"GenericContainer":      passThrough,
	"generic":               passThrough,
	"LayoutTable":           passThrough,
	"form":                  passThrough,
	"Details":               passThrough,
	"Label":                 passThrough,
	"dialog":                passThrough,
	"DescriptionListTerm":   passThrough,
	"DescriptionListDetail": passThrough,
	"Anchor":                passThrough,

	"strong": {kind: stratEmphasis},

	"banner":          landmark("banner"),
	"main":            landmark("main"),
	"group":           landmark("group"),
	"article":         landmark("article"),
	"contentinfo":     landmark("content information"),
	"navigation":      landmark("navigation"),
	"search":          landmark("search"),
	"table":           landmark("table"),
	"DescriptionList": landmark("definition list"),

	"figure":    {kind: stratContainer},
	"Pre":       {kind: stratContainer},
	"paragraph": {kind: stratParagraph},
	roleText:    {kind: stratText},
	"heading":   {kind: stratHeading},

	"link":               {kind: stratLink, label: "link", placement: Before},
	"button":             namedSpan("button"),
	"checkbox":           namedSpan("checkbox"),
	"combobox":           namedSpan("combobox"),
	"textbox":            namedSpan("edit text"),
	"DisclosureTriangle": {kind: stratChildSpan, label: "disclosure triangle", placement: After},
	"img":                {kind: stratImage, label: "image"},

	"list":      {kind: stratList, label: "list"},
	"listitem":  {kind: stratListItem},
	"separator": {kind: stratSeparator, label: "horizontal splitter"},
}

// Roles returns every role token the renderer understands, sorted.
func Roles() []string {
	out := make([]string, 0, len(roleTable))
	for role := range roleTable {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether role has a rendering strategy.
func Supported(role string) bool {
	_, ok := roleTable[role]
	return ok
}
