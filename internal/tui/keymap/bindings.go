package keymap

// DefaultBindings returns the stock key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},

		// View mode
		{Key: "q", Command: CmdQuit, Context: ContextView, Description: "Quit"},
		{Key: "k", Command: CmdRowUp, Context: ContextView, Description: "Previous group"},
		{Key: "up", Command: CmdRowUp, Context: ContextView, Description: "Previous group"},
		{Key: "j", Command: CmdRowDown, Context: ContextView, Description: "Next group"},
		{Key: "down", Command: CmdRowDown, Context: ContextView, Description: "Next group"},
		{Key: "h", Command: CmdPrevItem, Context: ContextView, Description: "Previous item"},
		{Key: "left", Command: CmdPrevItem, Context: ContextView, Description: "Previous item"},
		{Key: "l", Command: CmdNextItem, Context: ContextView, Description: "Next item"},
		{Key: "right", Command: CmdNextItem, Context: ContextView, Description: "Next item"},
		{Key: "0", Command: CmdClearSelection, Context: ContextView, Description: "Clear selections"},
		{Key: "e", Command: CmdEditMode, Context: ContextView, Description: "Edit menu"},
		{Key: "p", Command: CmdExport, Context: ContextView, Description: "Export receipt"},
		{Key: "R", Command: CmdResetCatalog, Context: ContextView, Description: "Reset to default menu"},

		// Edit mode
		{Key: "tab", Command: CmdNextGroup, Context: ContextEdit, Description: "Next group"},
		{Key: "shift+tab", Command: CmdPrevGroup, Context: ContextEdit, Description: "Previous group"},
		{Key: "k", Command: CmdRowUp, Context: ContextEdit, Description: "Move up"},
		{Key: "up", Command: CmdRowUp, Context: ContextEdit, Description: "Move up"},
		{Key: "j", Command: CmdRowDown, Context: ContextEdit, Description: "Move down"},
		{Key: "down", Command: CmdRowDown, Context: ContextEdit, Description: "Move down"},
		{Key: "enter", Command: CmdEditLabel, Context: ContextEdit, Description: "Edit label"},
		{Key: "v", Command: CmdEditValue, Context: ContextEdit, Description: "Edit value"},
		{Key: "a", Command: CmdAddRow, Context: ContextEdit, Description: "Add row"},
		{Key: "x", Command: CmdRemoveRow, Context: ContextEdit, Description: "Remove row"},
		{Key: "+", Command: CmdAddGroup, Context: ContextEdit, Description: "Add group"},
		{Key: "-", Command: CmdRemoveGroup, Context: ContextEdit, Description: "Remove group"},
		{Key: "s", Command: CmdSaveLocal, Context: ContextEdit, Description: "Save locally"},
		{Key: "S", Command: CmdCloudSave, Context: ContextEdit, Description: "Save to cloud"},
		{Key: "L", Command: CmdCloudLoad, Context: ContextEdit, Description: "Load from cloud"},
		{Key: "esc", Command: CmdBack, Context: ContextEdit, Description: "Back to menu"},
		{Key: "q", Command: CmdBack, Context: ContextEdit, Description: "Back to menu"},

		// Text prompt: printable keys go to the input
		{Key: "enter", Command: CmdConfirm, Context: ContextPrompt, Description: "Confirm"},
		{Key: "esc", Command: CmdCancel, Context: ContextPrompt, Description: "Cancel"},

		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "q", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
	}
}

// RegisterDefaults loads DefaultBindings into r.
func RegisterDefaults(r *Registry) {
	r.Register(DefaultBindings()...)
}

// AllCommands lists every command, for validating overrides.
func AllCommands() []Command {
	return []Command{
		CmdQuit, CmdToggleHelp,
		CmdRowUp, CmdRowDown, CmdPrevItem, CmdNextItem, CmdNextGroup, CmdPrevGroup,
		CmdClearSelection, CmdEditMode, CmdExport, CmdResetCatalog,
		CmdEditLabel, CmdEditValue, CmdAddRow, CmdRemoveRow, CmdAddGroup, CmdRemoveGroup,
		CmdSaveLocal, CmdCloudSave, CmdCloudLoad, CmdBack,
		CmdConfirm, CmdCancel,
	}
}
