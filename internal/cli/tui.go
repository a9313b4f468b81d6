package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/record"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	fieldStyle        = lipgloss.NewStyle().Foreground(colorGray)
)

const maxCellWidth = 48

// =============================================================================
// browserModel - Interactive record browser
// =============================================================================

// browserModel lists the records of a graph and shows one record's
// attributes, children and neighbours on enter.
type browserModel struct {
	g       *graph.Graph
	index   map[string]int
	cursor  int
	offset  int
	height  int
	detail  bool
	history []int
}

func newBrowserModel(g *graph.Graph) browserModel {
	return browserModel{
		g:      g,
		index:  record.ByID(g.Records),
		height: 15,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "left", "h":
			if m.detail {
				m.detail = false
				return m, nil
			}
			if msg.String() == "esc" {
				return m, tea.Quit
			}
		case "up", "k":
			if !m.detail && m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if !m.detail && m.cursor < len(m.g.Records)-1 {
				m.cursor++
				m.scroll()
			}
		case "enter", "right", "l":
			if len(m.g.Records) > 0 {
				m.detail = true
			}
		case "p":
			m = m.follow(true)
		case "c":
			m = m.follow(false)
		case "b":
			if n := len(m.history); n > 0 {
				m.cursor = m.history[n-1]
				m.history = m.history[:n-1]
				m.scroll()
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

// follow moves the cursor to the first parent or child of the current
// record and remembers where it came from.
func (m browserModel) follow(parent bool) browserModel {
	if !m.detail || len(m.g.Records) == 0 {
		return m
	}
	conn := m.g.Neighbors(m.g.Records[m.cursor].ID)
	ids := conn.Children
	if parent {
		ids = conn.Parents
	}
	if len(ids) == 0 {
		return m
	}
	if i, ok := m.index[ids[0]]; ok {
		m.history = append(m.history, m.cursor)
		m.cursor = i
		m.scroll()
	}
	return m
}

func (m *browserModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browserModel) View() string {
	if m.detail && len(m.g.Records) > 0 {
		return m.detailView(&m.g.Records[m.cursor])
	}
	return m.listView()
}

func (m browserModel) listView() string {
	var b strings.Builder

	title := fmt.Sprintf("%s · %s", m.g.Type, m.g.Name)
	if m.g.Title != "" {
		title += " · " + m.g.Title
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.g.Records))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := &m.g.Records[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.ID, r.Table, r.Key, truncate(m.g.Summary(r), maxCellWidth)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Table", "Key", "Summary").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx == m.cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if idx < len(m.g.Records) && !m.g.Records[idx].HasKey() {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] · %d edges", m.cursor+1, len(m.g.Records), len(m.g.Edges))))
	return b.String()
}

func (m browserModel) detailView(r *record.Record) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(r.Label))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("p parent  c child  b back  ← list  q quit"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Attributes"))
	b.WriteString("\n")
	for name, value := range r.Attributes.All() {
		b.WriteString(fmt.Sprintf("  %s %s\n", field(name), StyleValue.Render(truncate(value, 2*maxCellWidth))))
	}

	if len(r.Children) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Children"))
		b.WriteString("\n")
		for _, c := range r.Children {
			kind := "text"
			if c.CDATA {
				kind = "cdata"
			}
			b.WriteString(fmt.Sprintf("  %s %s %s\n", field(c.Name), listDimStyle.Render(kind), truncate(oneLine(c.Content), 2*maxCellWidth)))
		}
	}

	conn := m.g.Neighbors(r.ID)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Connections"))
	b.WriteString("\n")
	b.WriteString(m.neighbourLine("parents", conn.Parents))
	b.WriteString(m.neighbourLine("children", conn.Children))
	return b.String()
}

func (m browserModel) neighbourLine(label string, ids []string) string {
	if len(ids) == 0 {
		return fmt.Sprintf("  %s %s\n", field(label), listDimStyle.Render("none"))
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id
		if j, ok := m.index[id]; ok {
			names[i] = listSelectedStyle.Render(id) + " " + m.g.Records[j].Table
		}
	}
	return fmt.Sprintf("  %s %s\n", field(label), strings.Join(names, ", "))
}

func field(name string) string {
	return fieldStyle.Render(fmt.Sprintf("%-24s", name))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
