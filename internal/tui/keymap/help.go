package keymap

import (
	"fmt"
	"strings"
)

var keySymbols = map[string]string{
	"up":        "↑",
	"down":      "↓",
	"left":      "←",
	"right":     "→",
	"enter":     "Enter",
	"esc":       "Esc",
	"tab":       "Tab",
	"shift+tab": "Shift+Tab",
	"ctrl+c":    "Ctrl+C",
}

func formatKey(key string) string {
	if s, ok := keySymbols[key]; ok {
		return s
	}
	return key
}

// Help renders the bindings of ctx, one line per command in first-seen
// order, keys joined with " / ".
func (r *Registry) Help(ctx Context) string {
	var order []Command
	keys := make(map[Command][]string)
	desc := make(map[Command]string)
	for _, b := range r.BindingsFor(ctx) {
		if _, seen := keys[b.Command]; !seen {
			order = append(order, b.Command)
			desc[b.Command] = b.Description
		}
		keys[b.Command] = append(keys[b.Command], formatKey(b.Key))
	}

	var sb strings.Builder
	for _, cmd := range order {
		fmt.Fprintf(&sb, "  %-18s %s\n", strings.Join(keys[cmd], " / "), desc[cmd])
	}
	return sb.String()
}

// Footer is the one-line key hint for ctx.
func (r *Registry) Footer(ctx Context) string {
	var hints []string
	switch ctx {
	case ContextView:
		hints = []string{"j/k group", "h/l item", "0 clear", "e edit", "p export", "? help", "q quit"}
	case ContextEdit:
		hints = []string{"tab group", "enter label", "v value", "a/x row", "+/- group", "s save", "S/L cloud", "esc back"}
	case ContextPrompt:
		hints = []string{"enter confirm", "esc cancel"}
	default:
		hints = []string{"esc close"}
	}
	return strings.Join(hints, "  ")
}
