// Package output provides styled terminal output helpers (success, error,
// warning, menu tables) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
)

var (
	// Styles
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	totalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// Stdout receives all messages. Tests swap it.
var Stdout io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Fprintln(Stdout, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Fprintln(Stdout, errorStyle.Render("ERROR: "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Fprintln(Stdout, warningStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Fprintf(Stdout, format+"\n", args...)
}

// JSON outputs data as indented JSON
func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(Stdout, string(data))
	return nil
}

// FormatValue renders a price without trailing zeros.
func FormatValue(v float64) string {
	return input.FormatValue(v)
}

// FormatTotal renders the running total line.
func FormatTotal(total float64) string {
	return totalStyle.Render("Total: " + FormatValue(total))
}

// GroupHeader is the heading printed above a group's rows.
func GroupHeader(g models.Group) string {
	return titleStyle.Render(fmt.Sprintf("Group %d", g))
}

// ItemLine formats one item row. Rows are numbered from 1.
func ItemLine(index int, item models.MenuItem, selected bool) string {
	label := item.Label
	if label == "" {
		label = subtleStyle.Render("(blank)")
	}
	line := fmt.Sprintf("%3d. %-40s %8s", index+1, label, FormatValue(item.Value))
	if selected {
		return selectedStyle.Render("● " + line)
	}
	return "  " + line
}

// MenuTable renders every group with its rows, marking the selection,
// followed by the total.
func MenuTable(catalog models.Catalog, sel models.Selection) string {
	var sb strings.Builder
	for _, g := range menu.GroupsOf(catalog) {
		sb.WriteString(GroupHeader(g))
		sb.WriteByte('\n')
		idx, _ := sel.IndexOf(g)
		for i, item := range menu.ByGroup(catalog, g) {
			sb.WriteString(ItemLine(i, item, i == idx))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(FormatTotal(menu.Total(catalog, sel)))
	return sb.String()
}

// FormatTimeAgo returns a short relative time ("5m ago", "2d ago").
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Subtle renders secondary text.
func Subtle(s string) string {
	return subtleStyle.Render(s)
}
