package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/tui"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"board"},
	Short:   "Open the interactive board",
	Long: `Open the interactive menu board.

Key bindings (view mode):
  ↑/↓ j/k        Move between rows
  ←/→ h/l        Change the row's selection
  0              Clear selections
  e              Edit mode
  p              Export a receipt
  R              Reset catalog to defaults
  ?              Toggle help
  q              Quit

Edit mode:
  tab/shift+tab  Switch group
  enter / v      Edit label / value
  a / x          Add / remove row
  + / -          Add / remove group
  s / S / L      Save local / cloud save / cloud load
  esc            Back`,
	GroupID: "menu",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd)
	},
}

func runBoard(cmd *cobra.Command) error {
	a, err := openBoardApp(cmd.Context())
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.sess, tui.Options{
		Title:        a.cfg.Title,
		ExportDir:    filepath.Join(a.cfg.DataDir, "exports"),
		KeyOverrides: a.cfg.Keys,
		Logger:       a.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running board: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
