package cmd

import (
	"fmt"

	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/persist"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show the build and menu version",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Fprintln(output.Stdout, version)
			return nil
		}
		return withApp(cmd, printVersion)
	},
}

func printVersion(a *app) error {
	fmt.Fprintf(output.Stdout, "menuboard %s\n", version)
	fmt.Fprintf(output.Stdout, "menu %s (%d changes)\n", a.sess.DisplayVersion(), a.sess.Patch())

	schema, err := a.store.GetSchemaVersion()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	saved := "never"
	at, found, err := a.store.UpdatedAt(persist.KeyItems)
	if err != nil {
		return err
	}
	if found {
		saved = output.FormatTimeAgo(at)
	}
	fmt.Fprintf(output.Stdout, "store schema %d, last saved %s\n", schema, saved)
	return nil
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the build version")
	rootCmd.AddCommand(versionCmd)
}
