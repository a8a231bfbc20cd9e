package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/render"
)

var (
	pagerCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	pagerDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PagerModel - scrollable view of a text dump
// =============================================================================

// PagerModel is the bubbletea model of the browse command.
type PagerModel struct {
	Title  string
	Lines  []string
	Stats  dump.Stats
	Cursor int
	Offset int
	Height int
}

// NewPagerModel creates a pager over a rendered dump.
func NewPagerModel(title, output string, stats dump.Stats) PagerModel {
	return PagerModel{
		Title:  title,
		Lines:  strings.Split(strings.TrimSuffix(output, "\n"), "\n"),
		Stats:  stats,
		Height: 20,
	}
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
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "b":
			m.move(-m.Height)
		case "pgdown", " ", "f":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Lines))
		case "end", "G":
			m.move(len(m.Lines))
		case "n":
			m.nextSibling()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 4
		if m.Height < 3 {
			m.Height = 3
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta lines and scrolls to keep it visible.
func (m *PagerModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Lines)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// nextSibling jumps over the children of the node under the cursor to the
// next line at the same or a shallower indentation.
func (m *PagerModel) nextSibling() {
	depth := indentOf(ansi.Strip(m.Lines[m.Cursor]))
	for i := m.Cursor + 1; i < len(m.Lines); i++ {
		line := ansi.Strip(m.Lines[i])
		if strings.HasPrefix(strings.TrimSpace(line), "// ") {
			continue
		}
		if indentOf(line) <= depth {
			m.move(i - m.Cursor)
			return
		}
	}
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func (m PagerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(pagerDimStyle.Render("↑/↓ move  n next sibling  space page  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Lines))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(pagerCursorStyle.Render("▸ "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(m.Lines[i])
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pagerDimStyle.Render(fmt.Sprintf("  [%d/%d]  ", m.Cursor+1, len(m.Lines))))
	b.WriteString(formatStats(m.Stats))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		demo   bool
		engine engineOpts
	)

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Page through a text dump interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := engine.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}

			var in input
			switch {
			case len(args) == 1:
				if in, err = loadInput(args[0]); err != nil {
					return err
				}
			case demo:
				in = input{name: "demo", value: newDemo()}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "nothing to browse: pass an input file or --demo")
			}

			r, err := newRenderer(renderOpts{format: render.FormatText, color: true}, cfg.Codegen.Enabled)
			if err != nil {
				return err
			}
			d, closeBackend, err := c.newDumper(cmd.Context(), cfg, r)
			if err != nil {
				return err
			}
			defer closeBackend()

			res := d.Analyze(cmd.Context(), in.value, in.name)
			p := tea.NewProgram(NewPagerModel(in.name, res.Output, res.Stats), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "browse the built-in demo values")
	engine.register(cmd.Flags())
	return cmd
}
