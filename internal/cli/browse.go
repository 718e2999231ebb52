package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/pkg/deps"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the requirements interactively",
		Long: `Browse shows the same report as check in a scrollable list.

Keys: ↑/↓ or j/k move, tab cycles the filter (all, updates, unused),
enter toggles details, r reloads, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			load := func(invalidate bool) tea.Msg {
				if invalidate {
					a.project.Invalidate()
				}
				snap, err := a.project.Load(ctx, a.dir)
				return snapshotMsg{snap: snap, err: err}
			}

			p := tea.NewProgram(newBrowseModel(load), tea.WithContext(ctx), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			if m, ok := final.(browseModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}
}

// =============================================================================
// browseModel - interactive requirement list
// =============================================================================

// browseFilter selects which records the list shows.
type browseFilter int

const (
	filterAll browseFilter = iota
	filterUpdates
	filterUnused
)

func (f browseFilter) String() string {
	switch f {
	case filterUpdates:
		return "updates"
	case filterUnused:
		return "unused"
	}
	return "all"
}

// snapshotMsg carries the result of a (re)load.
type snapshotMsg struct {
	snap *deps.Snapshot
	err  error
}

// loadFunc loads a snapshot, dropping memoized versions first when
// invalidate is set.
type loadFunc func(invalidate bool) tea.Msg

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listUpdateStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

type browseModel struct {
	load    loadFunc
	snap    *deps.Snapshot
	visible []deps.Record
	filter  browseFilter
	cursor  int
	offset  int
	height  int
	details bool
	loading bool
	err     error
}

func newBrowseModel(load loadFunc) browseModel {
	return browseModel{load: load, height: 15, loading: true}
}

func (m browseModel) loadCmd(invalidate bool) tea.Cmd {
	return func() tea.Msg { return m.load(invalidate) }
}

func (m browseModel) Init() tea.Cmd {
	return m.loadCmd(false)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.snap = msg.snap
		m.applyFilter()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "tab":
			m.filter = (m.filter + 1) % 3
			m.applyFilter()
		case "enter":
			m.details = !m.details
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.loadCmd(true)
			}
		}

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

// applyFilter recomputes the visible records and clamps the cursor.
func (m *browseModel) applyFilter() {
	if m.snap == nil {
		m.visible = nil
		return
	}
	switch m.filter {
	case filterUpdates:
		m.visible = m.snap.Updates()
	case filterUnused:
		m.visible = m.snap.Unused()
	default:
		m.visible = m.snap.Records
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// selected returns the record under the cursor.
func (m browseModel) selected() (deps.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return deps.Record{}, false
	}
	return m.visible[m.cursor], true
}

func (m browseModel) View() string {
	var b strings.Builder

	title := "Requirements"
	if m.snap != nil {
		title = m.snap.Module
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("filter: " + m.filter.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab filter  ⏎ details  r reload  q quit"))
	b.WriteString("\n\n")

	if m.loading && m.snap == nil {
		b.WriteString(listDimStyle.Render("Resolving requirements..."))
		return b.String()
	}
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("Nothing to show"))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.visible))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderLine(i))
		b.WriteString("\n")
	}

	if r, ok := m.selected(); ok && m.details {
		b.WriteString("\n")
		b.WriteString(renderDetails(r))
	}

	status := fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.visible))
	if m.loading {
		status += "  reloading..."
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(status))
	return b.String()
}

func (m browseModel) renderLine(i int) string {
	r := m.visible[i]

	cursor := "  "
	style := listNormalStyle
	if i == m.cursor {
		cursor = "▸ "
		style = listSelectedStyle
	} else if !r.Used && !r.Indirect {
		style = listDimStyle
	}

	line := cursor + style.Render(r.Path) + " " + listDimStyle.Render(r.Version)
	if r.HasUpdate {
		line += " " + listDimStyle.Render(iconArrow) + " " + listUpdateStyle.Render(r.Latest)
	}
	if status := recordStatus(r); status != "" {
		line += "  " + listDimStyle.Render("("+status+")")
	}
	return line
}

func renderDetails(r deps.Record) string {
	latest := r.Latest
	if latest == "" {
		latest = "unknown"
	}
	lines := []string{
		"module    " + r.Path,
		"version   " + r.Version,
		"latest    " + latest,
		fmt.Sprintf("used      %t", r.Used),
		fmt.Sprintf("indirect  %t", r.Indirect),
	}
	if r.Replaced != nil {
		target := r.Replaced.Path
		if r.Replaced.Version != "" {
			target += " " + r.Replaced.Version
		}
		lines = append(lines, "replaced  "+target)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}
