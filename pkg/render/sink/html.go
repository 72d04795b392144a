package sink

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/matzehuels/axnarrate/pkg/narrate"
)

// HTML renders f as an HTML fragment. Blocks become titled <div>s with a
// closing title, spans carry their label in a span-type element, lists map
// to <ol>/<li> and error markers are <span class="error"> elements.
func HTML(f narrate.Fragment) string {
	var b strings.Builder
	writeHTML(&b, f)
	return b.String()
}

func writeHTML(b *strings.Builder, f narrate.Fragment) {
	children := func() {
		for _, c := range f.Children {
			writeHTML(b, c)
		}
	}
	esc := template.HTMLEscapeString

	switch f.Kind {
	case narrate.KindEmpty:
	case narrate.KindText:
		b.WriteString(esc(f.Text))
	case narrate.KindLineBreak:
		b.WriteString("<br>")
	case narrate.KindSequence:
		children()
	case narrate.KindEmphasis:
		b.WriteString("<strong>")
		children()
		b.WriteString("</strong>")
	case narrate.KindSpan:
		label := `<span class="span-type">`
		b.WriteString(`<span class="span"> `)
		if f.Placement == narrate.After {
			children()
			b.WriteString(label + ", " + esc(f.Label) + "</span>")
		} else {
			b.WriteString(label + esc(f.Label) + ", </span>")
			children()
		}
		b.WriteString("</span>")
	case narrate.KindBlock:
		b.WriteString(`<div class="block">`)
		fmt.Fprintf(b, `<div class="block-title">%s</div>`, esc(f.Title()))
		if f.HasContent() {
			b.WriteString(`<div class="block-content">`)
			children()
			b.WriteString("</div>")
			fmt.Fprintf(b, `<div class="block-title">%s</div>`, esc(f.ClosingTitle()))
		}
		b.WriteString("</div>")
	case narrate.KindContainer:
		b.WriteString("<div>")
		children()
		b.WriteString("</div>")
	case narrate.KindParagraph:
		b.WriteString("<p>")
		children()
		b.WriteString("</p>")
	case narrate.KindHeading:
		lvl := clampLevel(f.Level)
		fmt.Fprintf(b, "<div><h%d>", lvl)
		children()
		fmt.Fprintf(b, "</h%d></div>", lvl)
	case narrate.KindList:
		b.WriteString("<ol>")
		children()
		b.WriteString("</ol>")
	case narrate.KindListItem:
		b.WriteString("<li>")
		children()
		b.WriteString("</li>")
	case narrate.KindError:
		fmt.Fprintf(b, `<span class="error" data-node="%s">%s</span>`, esc(f.NodeID), esc(f.Text))
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
.block { border-left: 3px solid #2aa198; padding-left: .75rem; margin: .5rem 0; }
.block-title { color: #2aa198; font-weight: bold; }
.span-type { color: #268bd2; }
.error { color: #fff; background: #d70000; padding: 0 .25rem; }
.notice { color: #d70000; }
form textarea { width: 100%; min-height: 12rem; font-family: monospace; }
</style>
</head>
<body>
{{if .Notice}}<p class="notice" role="alert">{{.Notice}}</p>
{{end}}{{if .Form}}<form method="post" action="{{.Action}}">
<textarea name="tree" placeholder="Paste an accessibility tree (JSON)">{{.Source}}</textarea>
<p><button type="submit">Render</button></p>
</form>
{{end}}{{if .Body}}<main>{{.Body}}</main>
{{end}}</body>
</html>
`))

// PageOptions configures [HTMLPage].
type PageOptions struct {
	Title  string
	Form   bool   // include a paste form
	Action string // form target
	Source string // prefilled form content
	Notice string // message shown above the form, such as a parse error
}

// HTMLPage wraps the HTML rendering of f in a standalone document. A zero
// fragment renders a page with no body.
func HTMLPage(f narrate.Fragment, opts PageOptions) ([]byte, error) {
	var body []byte
	if !f.IsEmpty() {
		body = []byte(HTML(f))
	}
	return HTMLPageBody(body, opts)
}

// HTMLPageBody wraps markup previously produced by [HTML] in a standalone
// document. body is inserted unescaped.
func HTMLPageBody(body []byte, opts PageOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Accessibility narration"
	}
	data := struct {
		PageOptions
		Body template.HTML
	}{PageOptions: opts, Body: template.HTML(body)}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}
