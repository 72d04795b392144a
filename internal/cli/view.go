package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/axnarrate/pkg/pipeline"
)

// Pager styles
var (
	pagerStatusStyle = lipgloss.NewStyle().Foreground(colorDim)
	pagerMarkStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// viewCommand creates the interactive narration pager.
func (c *CLI) viewCommand() *cobra.Command {
	var root string
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "view [file|-]",
		Short: "Page through a narration in the terminal",
		Long: `Page through a narration in the terminal.

Keys: ↑/k ↓/j scroll, space/pgdn and b/pgup page, g/G jump to the top or
bottom, n/N jump to the next or previous broken node, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			in, err := c.loadInput(ctx, runner, args, true)
			if err != nil {
				return err
			}
			if maxDepth == 0 {
				maxDepth = c.Config.Render.MaxDepth
			}

			formats := []string{pipeline.FormatText, pipeline.FormatJSON}
			color := useColor(c.Config.Render.Color, cmd.OutOrStdout())
			if color {
				formats = append(formats, pipeline.FormatANSI)
			}
			res, err := runner.Render(ctx, in.tree, in.raw, pipeline.Options{Formats: formats, Root: root, MaxDepth: maxDepth})
			if err != nil {
				return err
			}

			display := res.Artifacts[pipeline.FormatText]
			if color {
				display = res.Artifacts[pipeline.FormatANSI]
			}
			if !isTerminal(cmd.OutOrStdout()) {
				_, err := cmd.OutOrStdout().Write(display)
				return err
			}

			m, err := newPagerModel(in.source, string(display), string(res.Artifacts[pipeline.FormatText]), res.Artifacts[pipeline.FormatJSON])
			if err != nil {
				return err
			}
			opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())}
			if len(args) == 1 && args[0] == "-" {
				opts = append(opts, tea.WithInputTTY())
			}
			_, err = tea.NewProgram(m, opts...).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "narrate the subtree of this node id")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (default from config)")

	return cmd
}

// =============================================================================
// PagerModel - Scrollable narration
// =============================================================================

// PagerModel is the bubbletea model for the narration pager.
type PagerModel struct {
	Title  string
	Lines  []string
	Broken []int // indices of lines that carry an error marker
	Offset int
	Height int
}

// newPagerModel builds a pager over display. plain is the unstyled
// narration with the same line structure, and summary the JSON artifact
// whose error messages locate the broken lines.
func newPagerModel(title, display, plain string, summary []byte) (PagerModel, error) {
	var doc struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(summary, &doc); err != nil {
		return PagerModel{}, fmt.Errorf("decode narration summary: %w", err)
	}

	m := PagerModel{
		Title:  title,
		Lines:  strings.Split(strings.TrimSuffix(display, "\n"), "\n"),
		Height: 20,
	}
	for i, line := range strings.Split(strings.TrimSuffix(plain, "\n"), "\n") {
		for _, e := range doc.Errors {
			if strings.Contains(line, "["+e.Message+"]") {
				m.Broken = append(m.Broken, i)
				break
			}
		}
	}
	return m, nil
}

func (m PagerModel) Init() tea.Cmd {
	return nil
}

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Offset--
		case "down", "j":
			m.Offset++
		case "pgup", "b":
			m.Offset -= m.Height
		case "pgdown", " ", "f":
			m.Offset += m.Height
		case "home", "g":
			m.Offset = 0
		case "end", "G":
			m.Offset = len(m.Lines)
		case "n":
			for _, i := range m.Broken {
				if i > m.Offset {
					m.Offset = i
					break
				}
			}
		case "N", "p":
			for j := len(m.Broken) - 1; j >= 0; j-- {
				if m.Broken[j] < m.Offset {
					m.Offset = m.Broken[j]
					break
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-2, 1)
	}
	m.Offset = max(0, min(m.Offset, len(m.Lines)-m.Height))
	return m, nil
}

func (m PagerModel) View() string {
	var b strings.Builder

	end := min(m.Offset+m.Height, len(m.Lines))
	broken := make(map[int]bool, len(m.Broken))
	for _, i := range m.Broken {
		broken[i] = true
	}
	for i := m.Offset; i < end; i++ {
		mark := "  "
		if broken[i] {
			mark = pagerMarkStyle.Render(iconError) + " "
		}
		b.WriteString(mark + m.Lines[i] + "\n")
	}
	for i := end - m.Offset; i < m.Height; i++ {
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%s · lines %d-%d of %d", m.Title, m.Offset+1, end, len(m.Lines))
	if len(m.Broken) > 0 {
		status += fmt.Sprintf(" · %d broken (n/N)", len(m.Broken))
	}
	b.WriteString(pagerStatusStyle.Render(status + " · q quit"))
	return b.String()
}
