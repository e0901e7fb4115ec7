package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/turnoutpaths/pkg/io"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags genFlags

	cmd := &cobra.Command{
		Use:   "browse [library]",
		Short: "Step through the route groups of a library interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := io.Import(args[0])
			if err != nil {
				return err
			}
			opts := c.options()
			flags.apply(&opts)

			turnouts := make([]*turnout.Turnout, 0, len(lib.Turnouts))
			for _, def := range lib.Turnouts {
				if err := def.Validate(); err != nil {
					return err
				}
				turnouts = append(turnouts, turnout.New(def, turnout.Settings{
					Options:           opts.Engine(def),
					DisableGeneration: opts.DisableGeneration,
					PreferSavedTable:  opts.PreferSavedTable,
				}))
			}
			if len(turnouts) == 0 {
				printInfo("No turnouts in %s", args[0])
				return nil
			}

			p := tea.NewProgram(NewBrowseModel(turnouts), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
		ValidArgsFunction: completeLibrary,
	}

	flags.registerEngine(cmd)
	return cmd
}

// =============================================================================
// BrowseModel - Interactive route group selection
// =============================================================================

// BrowseModel is the bubbletea model for stepping through turnouts and their
// current route group.
type BrowseModel struct {
	Turnouts []*turnout.Turnout
	Cursor   int
	Height   int
	Offset   int
}

// NewBrowseModel creates a new browse model.
func NewBrowseModel(turnouts []*turnout.Turnout) BrowseModel {
	return BrowseModel{Turnouts: turnouts, Height: 10}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Turnouts)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ", "right", "l":
			m.Turnouts[m.Cursor].NextPath()
		case "left", "h":
			t := m.Turnouts[m.Cursor]
			n := len(t.Paths().Groups)
			if n > 0 {
				t.SetCurrentPathIndex((t.CurrentPathIndex() + n - 1) % n)
			}
		case "home", "0":
			m.Turnouts[m.Cursor].SetCurrentPathIndex(0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height/3, 3)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Route Groups"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ turnout  ←/→ group  0 first  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Turnouts))
	for i := m.Offset; i < end; i++ {
		t := m.Turnouts[i]
		n := len(t.Paths().Groups)
		label := "-"
		if g, ok := t.CurrentPath(); ok {
			label = g.Label
		}

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-30s %s", cursor, t.Title(), listDimStyle.Render(fmt.Sprintf("%s of %d", label, n)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	t := m.Turnouts[m.Cursor]
	b.WriteString("\n")
	tbl := t.Paths()
	if tbl.Empty() {
		b.WriteString(listDimStyle.Render("  no routes"))
	} else {
		b.WriteString(tableView(tbl, t.CurrentPathIndex()))
	}
	b.WriteString("\n")
	if cmp, ok := t.Comparison(); ok && !cmp.Match {
		b.WriteString(StyleWarning.Render("  saved table differs from the generated one"))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Turnouts))))

	return b.String()
}
