package cmd

import (
	"fmt"
	"strconv"

	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/session"
	"github.com/spf13/cobra"
)

// parseGroup reads a group number argument.
func parseGroup(arg string) (models.Group, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid group %q", arg)
	}
	g := models.Group(n)
	if !g.Valid() {
		return 0, fmt.Errorf("group must be between %d and %d, got %d", models.MinGroup, models.MaxGroup, n)
	}
	return g, nil
}

// parseRow reads a 1-based row argument and returns the 0-based index.
func parseRow(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row %q (rows start at 1)", arg)
	}
	return n - 1, nil
}

// withApp opens the app, runs fn and reports its error.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		output.Error("%v", err)
		return err
	}
	return nil
}

func withSession(cmd *cobra.Command, fn func(*session.Session) error) error {
	return withApp(cmd, func(a *app) error { return fn(a.sess) })
}

var selectCmd = &cobra.Command{
	Use:   "select <group> <row|label>",
	Short: "Select an item in a group",
	Long: `Select an item in a group by 1-based row number or by label.
Labels are fuzzy-matched within the group; the best match wins.`,
	Example: `  menuboard select 1 2
  menuboard select 3 "pad thai"`,
	GroupID: "menu",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return runSelect(sess, args[0], args[1])
		})
	},
}

func runSelect(sess *session.Session, groupArg, ref string) error {
	g, err := parseGroup(groupArg)
	if err != nil {
		return err
	}
	idx, err := menu.ResolveRow(sess.Catalog(), g, ref)
	if err != nil {
		return err
	}
	if err := sess.Select(g, idx); err != nil {
		return err
	}
	item := sess.Items(g)[idx]
	output.Success("Group %d: %s (%s)", g, item.Label, output.FormatValue(item.Value))
	output.Info("%s", output.FormatTotal(sess.Total()))
	return nil
}

var clearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Reset every group to its first item",
	GroupID: "menu",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			sess.ClearSelection()
			output.Success("Selection cleared")
			output.Info("%s", output.FormatTotal(sess.Total()))
			return nil
		})
	},
}

var itemCmd = &cobra.Command{
	Use:     "item",
	Short:   "Add, remove or edit catalog rows",
	GroupID: "catalog",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <group>",
	Short: "Append a blank row to a group",
	Long:  `Append a blank row to an existing group. Use "group add" to open a new group.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return runItemAdd(sess, args[0])
		})
	},
}

func runItemAdd(sess *session.Session, groupArg string) error {
	g, err := parseGroup(groupArg)
	if err != nil {
		return err
	}
	if err := sess.AddRow(g); err != nil {
		return err
	}
	output.Success("Added row %d to group %d", len(sess.Items(g)), g)
	return nil
}

var itemRmCmd = &cobra.Command{
	Use:     "rm <group> <row>",
	Aliases: []string{"remove"},
	Short:   "Remove a row",
	Long:    `Remove a row. Removing the last row of a group removes the group.`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			g, err := parseGroup(args[0])
			if err != nil {
				return err
			}
			idx, err := parseRow(args[1])
			if err != nil {
				return err
			}
			if err := sess.RemoveRow(g, idx); err != nil {
				return err
			}
			output.Success("Removed row %d from group %d", idx+1, g)
			return nil
		})
	},
}

var itemSetCmd = &cobra.Command{
	Use:   "set <group> <row>",
	Short: "Change a row's label or value",
	Example: `  menuboard item set 1 2 --label "Green curry" --value 12.5
  menuboard item set 2 1 --value 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p menu.Patch
		if cmd.Flags().Changed("label") {
			label, _ := cmd.Flags().GetString("label")
			p.Label = &label
		}
		if cmd.Flags().Changed("value") {
			raw, _ := cmd.Flags().GetString("value")
			v := input.CommitValue(raw)
			p.Value = &v
		}
		return withSession(cmd, func(sess *session.Session) error {
			return runItemSet(sess, args[0], args[1], p)
		})
	},
}

func runItemSet(sess *session.Session, groupArg, rowArg string, p menu.Patch) error {
	if p.Label == nil && p.Value == nil {
		return fmt.Errorf("nothing to change: pass --label or --value")
	}
	g, err := parseGroup(groupArg)
	if err != nil {
		return err
	}
	idx, err := parseRow(rowArg)
	if err != nil {
		return err
	}
	if err := sess.UpdateRow(g, idx, p); err != nil {
		return err
	}
	item := sess.Items(g)[idx]
	output.Success("Group %d row %d: %s (%s)", g, idx+1, item.Label, output.FormatValue(item.Value))
	return nil
}

var groupCmd = &cobra.Command{
	Use:     "group",
	Short:   "Add or remove groups",
	GroupID: "catalog",
}

var groupAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a group with one blank row",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			g, err := sess.AddGroup()
			if err != nil {
				return err
			}
			output.Success("Added group %d", g)
			return nil
		})
	},
}

var groupRmCmd = &cobra.Command{
	Use:     "rm <group>",
	Aliases: []string{"remove"},
	Short:   "Remove a group and renumber the ones after it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			g, err := parseGroup(args[0])
			if err != nil {
				return err
			}
			if err := sess.RemoveGroup(g); err != nil {
				return err
			}
			output.Success("Removed group %d", g)
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:     "save",
	Short:   "Write the menu to local storage",
	GroupID: "sync",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			if err := sess.SaveLocal(); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			output.Success("Saved %s", sess.DisplayVersion())
			return nil
		})
	},
}

func init() {
	itemSetCmd.Flags().String("label", "", "new label")
	itemSetCmd.Flags().String("value", "", "new value (invalid numbers become 0)")

	itemCmd.AddCommand(itemAddCmd, itemRmCmd, itemSetCmd)
	groupCmd.AddCommand(groupAddCmd, groupRmCmd)
	rootCmd.AddCommand(selectCmd, clearCmd, itemCmd, groupCmd, saveCmd)
}
