// Package keymap maps key presses to named TUI commands per UI context,
// with user overrides from the config file.
package keymap

import (
	"sort"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Context is the UI state a binding applies in.
type Context string

const (
	ContextGlobal Context = "global"
	ContextView   Context = "view"
	ContextEdit   Context = "edit"
	ContextPrompt Context = "prompt"
	ContextHelp   Context = "help"
)

// Command is a named action triggered by a key.
type Command string

const (
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"

	// Navigation
	CmdRowUp     Command = "row-up"
	CmdRowDown   Command = "row-down"
	CmdPrevItem  Command = "prev-item"
	CmdNextItem  Command = "next-item"
	CmdNextGroup Command = "next-group"
	CmdPrevGroup Command = "prev-group"

	// View mode
	CmdClearSelection Command = "clear-selection"
	CmdEditMode       Command = "edit-mode"
	CmdExport         Command = "export"
	CmdResetCatalog   Command = "reset-catalog"

	// Edit mode
	CmdEditLabel   Command = "edit-label"
	CmdEditValue   Command = "edit-value"
	CmdAddRow      Command = "add-row"
	CmdRemoveRow   Command = "remove-row"
	CmdAddGroup    Command = "add-group"
	CmdRemoveGroup Command = "remove-group"
	CmdSaveLocal   Command = "save-local"
	CmdCloudSave   Command = "cloud-save"
	CmdCloudLoad   Command = "cloud-load"
	CmdBack        Command = "back"

	// Prompt
	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"
)

// Binding maps a key to a command in a context.
type Binding struct {
	Key         string
	Command     Command
	Context     Context
	Description string
}

// Registry resolves keys to commands.
type Registry struct {
	mu        sync.RWMutex
	bindings  map[Context][]Binding
	overrides map[string]Command // "context:key"
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[Context][]Binding),
		overrides: make(map[string]Command),
	}
}

// Register adds bindings.
func (r *Registry) Register(bindings ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bindings {
		r.bindings[b.Context] = append(r.bindings[b.Context], b)
	}
}

// Override binds key to cmd in ctx ahead of the defaults.
func (r *Registry) Override(ctx Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[string(ctx)+":"+key] = cmd
}

// ApplyOverrides installs "context:key" -> command pairs. Entries without
// a context apply globally. Unknown commands are returned and skipped.
func (r *Registry) ApplyOverrides(entries map[string]string) []string {
	known := make(map[Command]bool)
	for _, c := range AllCommands() {
		known[c] = true
	}

	var unknown []string
	for binding, cmd := range entries {
		ctx, key := ContextGlobal, binding
		if i := strings.Index(binding, ":"); i > 0 {
			ctx, key = Context(binding[:i]), binding[i+1:]
		}
		if key == "" || !known[Command(cmd)] {
			unknown = append(unknown, binding)
			continue
		}
		r.Override(ctx, key, Command(cmd))
	}
	sort.Strings(unknown)
	return unknown
}

// Lookup resolves key in ctx: overrides first, then the context's
// bindings, then global ones.
func (r *Registry) Lookup(key tea.KeyMsg, ctx Context) (Command, bool) {
	return r.LookupString(KeyToString(key), ctx)
}

// LookupString is Lookup for an already formatted key.
func (r *Registry) LookupString(key string, ctx Context) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range []Context{ctx, ContextGlobal} {
		if cmd, ok := r.overrides[string(c)+":"+key]; ok {
			return cmd, true
		}
		for _, b := range r.bindings[c] {
			if b.Key == key {
				return b.Command, true
			}
		}
		if c == ContextGlobal {
			break
		}
	}
	return "", false
}

// BindingsFor returns ctx bindings followed by global ones.
func (r *Registry) BindingsFor(ctx Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Binding(nil), r.bindings[ctx]...)
	if ctx != ContextGlobal {
		out = append(out, r.bindings[ContextGlobal]...)
	}
	return out
}

// KeyToString names a key press the way bindings spell it.
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyRunes:
		return string(key.Runes)
	case tea.KeySpace:
		return "space"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyShiftTab:
		return "shift+tab"
	default:
		return key.String()
	}
}
