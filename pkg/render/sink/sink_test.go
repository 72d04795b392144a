package sink_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	"github.com/matzehuels/axnarrate/pkg/narrate"
	"github.com/matzehuels/axnarrate/pkg/render/sink"
)

func ExampleText() {
	fmt.Print(sink.Text(narrate.Render(axtree.Example())))
	// Output:
	// Example shop web content
	// banner
	//  link,  image, Example shop logo
	// Primary navigation
	// list, 2 items
	//  link,  Products
	//  Account, collapsed menu pop-up button
	// end of list
	// end of Primary navigation
	// end of banner
	// main
	//  Spring sale
	//  Everything is 20% off this week.
	// horizontal splitter
	//  Email, edit text Country, collapsed listbox pop-up combobox Subscribe, checked checkbox
	//  Sign up, button
	// end of main
	// content information
	//  Copyright 2024  Example shop
	// end of content information
	// end of Example shop web content
}

func sampleBlock() narrate.Fragment {
	return narrate.Block("Primary navigation", "", []narrate.Fragment{
		narrate.Text(" Home"),
		narrate.Span("link", []narrate.Fragment{narrate.Text(" About")}, narrate.Before),
		narrate.Fragment{Kind: narrate.KindError, Error: narrate.ErrUnknownRole, NodeID: "9", Text: "Unknown role bogus"},
	})
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		frag narrate.Fragment
		want string
	}{
		{"empty", narrate.Empty(), ""},
		{"text", narrate.Text(" Hello"), " Hello\n"},
		{"block with content", sampleBlock(), "Primary navigation\n Home link,  About[Unknown role bogus]\nend of Primary navigation\n"},
		{"block without content", narrate.Block("horizontal splitter", "", nil), "horizontal splitter\n"},
		{"block with extra", narrate.Block("list", "1 item", []narrate.Fragment{narrate.List([]narrate.Fragment{narrate.ListItem([]narrate.Fragment{narrate.Text(" a")})})}), "list, 1 item\n a\nend of list\n"},
		{"after span", narrate.Span("button", []narrate.Fragment{narrate.Text("OK")}, narrate.After), " OK, button\n"},
		{"line break", narrate.Sequence(narrate.Text(" a"), narrate.LineBreak(), narrate.Text(" b")), " a\n b\n"},
		{"heading", narrate.Sequence(narrate.Text(" x"), narrate.Heading(2, []narrate.Fragment{narrate.Text(" Title")}), narrate.Text(" y")), " x\n Title\n y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sink.Text(tt.frag); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	got := sink.HTML(sampleBlock())
	for _, want := range []string{
		`<div class="block-title">Primary navigation</div>`,
		`<div class="block-title">end of Primary navigation</div>`,
		`<span class="span"> <span class="span-type">link, </span> About</span>`,
		`<span class="error" data-node="9">Unknown role bogus</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() missing %q in %q", want, got)
		}
	}

	escaped := sink.HTML(narrate.Text(" <b>&"))
	if escaped != " &lt;b&gt;&amp;" {
		t.Errorf("HTML() = %q, want escaped text", escaped)
	}

	if got := sink.HTML(narrate.Heading(9, nil)); got != "<div><h6></h6></div>" {
		t.Errorf("HTML(heading 9) = %q, want clamped level", got)
	}
}

func TestHTMLPage(t *testing.T) {
	page, err := sink.HTMLPage(sampleBlock(), sink.PageOptions{Title: "Demo", Form: true, Action: "/render", Source: `{"nodes":[]}`})
	if err != nil {
		t.Fatalf("HTMLPage() error: %v", err)
	}
	s := string(page)
	for _, want := range []string{"<title>Demo</title>", `action="/render"`, "{&#34;nodes&#34;:[]}", `<div class="block-title">Primary navigation</div>`} {
		if !strings.Contains(s, want) {
			t.Errorf("HTMLPage() missing %q", want)
		}
	}

	blank, err := sink.HTMLPage(narrate.Empty(), sink.PageOptions{})
	if err != nil {
		t.Fatalf("HTMLPage() error: %v", err)
	}
	if strings.Contains(string(blank), "<main>") || !strings.Contains(string(blank), "Accessibility narration") {
		t.Errorf("HTMLPage(empty) = %s", blank)
	}
}

func TestJSON(t *testing.T) {
	data, err := sink.JSON(sampleBlock(), sink.WithJSONText(), sink.WithJSONRoot("1"), sink.WithJSONIndent())
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var out struct {
		Root   string `json:"root"`
		Text   string `json:"text"`
		Errors []struct {
			Kind    string `json:"kind"`
			NodeID  string `json:"nodeId"`
			Message string `json:"message"`
		} `json:"errors"`
		Fragment narrate.Fragment `json:"fragment"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Root != "1" {
		t.Errorf("root = %q", out.Root)
	}
	if out.Text != sink.Text(sampleBlock()) {
		t.Errorf("text = %q", out.Text)
	}
	if len(out.Errors) != 1 || out.Errors[0].Kind != "unknown_role" || out.Errors[0].NodeID != "9" {
		t.Errorf("errors = %+v", out.Errors)
	}
	if out.Fragment.Kind != narrate.KindBlock || len(out.Fragment.Children) != 3 {
		t.Errorf("fragment = %+v", out.Fragment)
	}
	if out.Fragment.Children[1].Placement != narrate.Before {
		t.Errorf("span placement = %v", out.Fragment.Children[1].Placement)
	}
	if !strings.Contains(string(data), `"kind": "block"`) {
		t.Errorf("kinds should encode by name: %s", data)
	}
}

func TestANSI(t *testing.T) {
	frag := sampleBlock()

	plain := sink.ANSI(frag, sink.WithOutput(&strings.Builder{}))
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("ANSI() to a non-terminal = %q, want no escape sequences", plain)
	}
	if !strings.HasPrefix(plain, "Primary navigation\n Home link,  About") {
		t.Errorf("ANSI() to a non-terminal = %q", plain)
	}

	colored := sink.ANSI(frag, sink.WithForcedColor())
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("ANSI(forced) = %q, want escape sequences", colored)
	}
	if !strings.Contains(colored, "Unknown role bogus") {
		t.Errorf("ANSI(forced) lost the error text: %q", colored)
	}
}

func TestHTMLPageBody(t *testing.T) {
	page, err := sink.HTMLPageBody([]byte(sink.HTML(narrate.Text(" Hi"))), sink.PageOptions{Form: true, Notice: "bad <json>"})
	if err != nil {
		t.Fatalf("HTMLPageBody() error: %v", err)
	}
	s := string(page)
	if !strings.Contains(s, "<main> Hi</main>") {
		t.Errorf("HTMLPageBody() body missing: %s", s)
	}
	if !strings.Contains(s, `<p class="notice" role="alert">bad &lt;json&gt;</p>`) {
		t.Errorf("HTMLPageBody() notice not escaped: %s", s)
	}
}
