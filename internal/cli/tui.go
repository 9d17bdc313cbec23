package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackarray/pkg/pattern"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

var itemHeaders = []string{"", "Item", "Row", "Level", "X", "Y", "Z", "Flags"}

// itemRow formats one entry as a table row.
func itemRow(e pattern.Entry, cursor string) []string {
	return []string{
		cursor,
		strconv.Itoa(e.Locator[0]),
		strconv.Itoa(e.Locator[1]),
		strconv.Itoa(e.Locator[2]),
		formatCoord(e.Position[0]),
		formatCoord(e.Position[1]),
		formatCoord(e.Position[2]),
		entryFlags(e),
	}
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// entryFlags abbreviates the state of an entry: erased, edited, modified.
func entryFlags(e pattern.Entry) string {
	var flags []string
	if e.Erased {
		flags = append(flags, "erased")
	}
	if e.Edited {
		flags = append(flags, "edited")
	}
	if e.Modified {
		flags = append(flags, "modified")
	}
	if len(flags) == 0 {
		return "—"
	}
	return strings.Join(flags, ",")
}

// entryStyle dims erased entries and highlights overridden ones.
func entryStyle(e pattern.Entry, current bool) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch {
	case e.Erased:
		base = base.Foreground(colorDim)
	case e.Edited || e.Modified:
		base = base.Foreground(colorYellow)
	}
	if current {
		return base.Bold(true).Foreground(colorCyan)
	}
	return base
}

// renderItemTable renders entries as a rounded table.
func renderItemTable(entries []pattern.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = itemRow(e, "")
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(itemHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return entryStyle(entries[row], false)
		}).
		Render()
}

// =============================================================================
// ItemListModel - Interactive item browser
// =============================================================================

// ItemListModel is the bubbletea model for browsing the items of an array.
// Enter toggles the placement matrix of the item under the cursor.
type ItemListModel struct {
	Title   string
	Entries []pattern.Entry
	Cursor  int
	Height  int
	Offset  int
	Detail  bool
}

// NewItemListModel creates a new item list model.
func NewItemListModel(title string, entries []pattern.Entry) ItemListModel {
	return ItemListModel{Title: title, Entries: entries, Height: 15}
}

func (m ItemListModel) Init() tea.Cmd {
	return nil
}

func (m ItemListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Entries); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		if m.Detail {
			m.Height = max(m.Height-6, 5)
		}
	}
	return m, nil
}

func (m ItemListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ matrix  q quit"))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString(listDimStyle.Render("  no items"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Entries))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, itemRow(m.Entries[i], cursor))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(itemHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			return entryStyle(m.Entries[idx], idx == m.Cursor)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))
	if m.Detail {
		b.WriteString("\n\n")
		b.WriteString(renderMatrix(m.Entries[m.Cursor]))
	}
	return b.String()
}

// renderMatrix prints the row-major placement matrix of e.
func renderMatrix(e pattern.Entry) string {
	var b strings.Builder
	for r := 0; r < 4; r++ {
		b.WriteString("  ")
		for c := 0; c < 4; c++ {
			b.WriteString(fmt.Sprintf("%10s", formatCoord(e.Matrix[r*4+c])))
		}
		b.WriteString("\n")
	}
	if e.Entity != "" {
		b.WriteString(listDimStyle.Render("  entity " + e.Entity))
	}
	return b.String()
}
