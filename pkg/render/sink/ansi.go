package sink

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/matzehuels/axnarrate/pkg/narrate"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorRed   = lipgloss.Color("160")
	colorDim   = lipgloss.Color("240")
)

// ANSIOption configures [ANSI].
type ANSIOption func(*ansiConfig)

type ansiConfig struct {
	out   io.Writer
	force bool
}

// WithOutput detects the color profile from w instead of stdout.
func WithOutput(w io.Writer) ANSIOption { return func(c *ansiConfig) { c.out = w } }

// WithForcedColor emits 256-color escapes even when the output is not a
// terminal.
func WithForcedColor() ANSIOption { return func(c *ansiConfig) { c.force = true } }

// ANSI flattens f like [Text] and styles it for a terminal: block titles in
// bold cyan, closing titles dimmed, span labels in blue, headings
// underlined and error markers white on red.
func ANSI(f narrate.Fragment, opts ...ANSIOption) string {
	var cfg ansiConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	r := lipgloss.DefaultRenderer()
	if cfg.out != nil {
		r = lipgloss.NewRenderer(cfg.out)
	}
	if cfg.force {
		r = lipgloss.NewRenderer(io.Discard)
		r.SetColorProfile(termenv.ANSI256)
	}
	return flatten(f, newANSIStyler(r))
}

type ansiStyler struct {
	title, closing, label, strong, head, err lipgloss.Style
}

func newANSIStyler(r *lipgloss.Renderer) ansiStyler {
	return ansiStyler{
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		closing: r.NewStyle().Foreground(colorDim),
		label:   r.NewStyle().Foreground(colorBlue),
		strong:  r.NewStyle().Bold(true),
		head:    r.NewStyle().Bold(true).Underline(true).Foreground(colorWhite),
		err:     r.NewStyle().Foreground(colorWhite).Background(colorRed),
	}
}

func (s ansiStyler) blockTitle(t string) string { return s.title.Render(t) }
func (s ansiStyler) closingTitle(t string) string { return s.closing.Render(t) }
func (s ansiStyler) spanLabel(t string) string { return s.label.Render(t) }
func (s ansiStyler) emphasis(t string) string { return renderLines(s.strong, t) }
func (s ansiStyler) errorMarker(m string) string { return s.err.Render(" " + m + " ") }

func (s ansiStyler) heading(level int, t string) string {
	return renderLines(s.head, strings.Repeat("#", clampLevel(level))+t)
}

// renderLines styles each line separately so lipgloss does not pad a
// multi-line run into a rectangle.
func renderLines(st lipgloss.Style, t string) string {
	lines := strings.Split(t, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}
