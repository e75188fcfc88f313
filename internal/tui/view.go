package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/tui/keymap"
)

// View implements tea.Model
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}
	if m.Width < MinWidth {
		return m.renderCompact()
	}
	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	var body string
	ctx := m.context()
	if m.mode == ModeEdit || (m.mode == ModePrompt && m.prevMode == ModeEdit) {
		body = m.renderEdit()
	} else {
		body = m.renderBoard()
	}

	parts := []string{m.renderHeader(), body}
	if m.mode == ModePrompt {
		parts = append(parts, m.renderPrompt())
	}
	parts = append(parts, m.renderFooter(ctx))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	badge := "MENU"
	if m.mode == ModeEdit || (m.mode == ModePrompt && m.prevMode == ModeEdit) {
		badge = "EDIT"
	}
	left := titleStyle.Render(m.title) + " " + modeBadgeStyle.Render(badge)
	right := subtleStyle.Render(m.sess.DisplayVersion())
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right + "\n"
}

// labelWidth is the space left for labels after cursor, value and margins.
func (m Model) labelWidth() int {
	return max(10, m.Width-24)
}

func displayLabel(label string, width int) string {
	if label == "" {
		return subtleStyle.Render("(blank)")
	}
	return ansi.Truncate(label, width, "…")
}

// renderBoard shows one line per group with its selected item.
func (m Model) renderBoard() string {
	var sb strings.Builder
	width := m.labelWidth() - 12
	for i, g := range m.sess.Groups() {
		items := m.sess.Items(g)
		idx := m.sess.SelectedIndex(g)

		marker := "  "
		name := groupStyle.Render(fmt.Sprintf("Group %d", g))
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		label, value := "", ""
		if idx < len(items) {
			label = displayLabel(items[idx].Label, width)
			value = input.FormatValue(items[idx].Value)
		}
		pos := subtleStyle.Render(fmt.Sprintf("%d/%d", idx+1, len(items)))
		line := fmt.Sprintf("%s%s  ‹ %s ›  %s  %s", marker, name, label, valueStyle.Render(value), pos)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(totalStyle.Render("Total: " + input.FormatValue(m.sess.Total())))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	active := m.sess.ActiveGroup()
	for _, g := range m.sess.Groups() {
		label := fmt.Sprintf("Group %d", g)
		if g == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	if m.sess.CanAddGroup() {
		tabs = append(tabs, subtleStyle.Render(" + "))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderEdit shows the rows of the active group.
func (m Model) renderEdit() string {
	var sb strings.Builder
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	g := m.sess.ActiveGroup()
	selected := m.sess.SelectedIndex(g)
	width := m.labelWidth()
	for i, item := range m.sess.Items(g) {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		dot := " "
		if i == selected {
			dot = selectedRowStyle.Render("●")
		}
		label := displayLabel(item.Label, width)
		pad := max(1, width-lipgloss.Width(label))
		fmt.Fprintf(&sb, "%s%s %s%s%s\n", marker, dot, label, strings.Repeat(" ", pad), valueStyle.Render(input.FormatValue(item.Value)))
	}
	return sb.String()
}

func (m Model) renderPrompt() string {
	line := m.input.View()
	if m.prompt == promptValue && m.input.Value() != "" && !m.PromptDraftValid() && !input.IsPending(m.input.Value()) {
		line += "  " + errorStyle.Render("not a number, saves as 0")
	}
	return "\n" + line
}

func (m Model) renderFooter(ctx keymap.Context) string {
	var line string
	switch {
	case m.busy != "":
		line = m.spinner.View() + " " + m.busy + "..."
	case m.status != "" && m.statusErr:
		line = errorStyle.Render(m.status)
	case m.status != "":
		line = statusStyle.Render(m.status)
	default:
		line = helpStyle.Render(m.keys.Footer(ctx))
	}
	return "\n" + ansi.Truncate(line, m.Width, "…")
}

func (m Model) renderHelp() string {
	ctx := keymap.ContextView
	if m.prevMode == ModeEdit {
		ctx = keymap.ContextEdit
	}
	content := titleStyle.Render("Keys") + "\n\n" + m.keys.Help(ctx)
	modal := modalStyle.Render(strings.TrimRight(content, "\n"))
	if m.Height == 0 {
		return modal
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, modal)
}

// renderCompact is the layout for very narrow terminals.
func (m Model) renderCompact() string {
	var sb strings.Builder
	for _, g := range m.sess.Groups() {
		idx := m.sess.SelectedIndex(g)
		items := m.sess.Items(g)
		var item models.MenuItem
		if idx < len(items) {
			item = items[idx]
		}
		fmt.Fprintf(&sb, "%d: %s\n", g, input.FormatValue(item.Value))
	}
	sb.WriteString("Total: " + input.FormatValue(m.sess.Total()) + "\n")
	sb.WriteString("(resize for full view)")
	return sb.String()
}
