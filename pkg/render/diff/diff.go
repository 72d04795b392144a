// Package diff compares two narrations line by line.
//
// Narrations are line-oriented (one block title, heading or list item per
// line), so a line diff shows exactly which announcements a change to an
// accessibility tree added or removed.
package diff

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of change a [Line] records.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of a narration diff.
type Line struct {
	Op   Op
	Text string
}

// Result is the outcome of [Lines].
type Result struct {
	Lines   []Line
	Added   int
	Removed int
}

// Changed reports whether the narrations differ.
func (r Result) Changed() bool { return r.Added > 0 || r.Removed > 0 }

// Lines diffs two narrations line by line.
func Lines(from, to string) Result {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var res Result
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffpatch.DiffInsert:
			op = Insert
		case diffpatch.DiffDelete:
			op = Delete
		}
		for _, text := range splitLines(d.Text) {
			res.Lines = append(res.Lines, Line{Op: op, Text: text})
			switch op {
			case Insert:
				res.Added++
			case Delete:
				res.Removed++
			}
		}
	}
	return res
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

var (
	styleInsert = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleDelete = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleEqual  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Format prints the diff with "+ ", "- " and "  " prefixes. Unchanged runs
// longer than 2*context lines are collapsed to their edges; a negative
// context keeps every line. With color set, lines are styled for a
// terminal.
func (r Result) Format(context int, color bool) string {
	var b strings.Builder
	keep := r.visible(context)
	skipped := false
	for i, l := range r.Lines {
		if !keep[i] {
			if !skipped {
				b.WriteString(paint(color, styleEqual, "  ...") + "\n")
				skipped = true
			}
			continue
		}
		skipped = false
		switch l.Op {
		case Insert:
			b.WriteString(paint(color, styleInsert, "+ "+l.Text))
		case Delete:
			b.WriteString(paint(color, styleDelete, "- "+l.Text))
		default:
			b.WriteString(paint(color, styleEqual, "  "+l.Text))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// visible marks the lines within context of a change.
func (r Result) visible(context int) []bool {
	keep := make([]bool, len(r.Lines))
	if context < 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep
	}
	for i, l := range r.Lines {
		if l.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(r.Lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	return keep
}

func paint(color bool, st lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return st.Render(s)
}
