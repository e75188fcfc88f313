package cmd

import (
	"fmt"
	"time"

	"github.com/marcus/menuboard/internal/export"
	"github.com/marcus/menuboard/internal/models"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/session"
	"github.com/spf13/cobra"
)

// showJSON is the --json payload.
type showJSON struct {
	Version string           `json:"version"`
	Items   models.Catalog   `json:"items"`
	Rows    models.Selection `json:"rows"`
	Total   float64          `json:"total"`
}

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls"},
	Short:   "Print the menu with the current selection and total",
	GroupID: "menu",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		jsonOut, _ := cmd.Flags().GetBool("json")
		markdown, _ := cmd.Flags().GetBool("markdown")
		return printMenu(a.sess, a.cfg.Title, jsonOut, markdown)
	},
}

func printMenu(sess *session.Session, title string, jsonOut, markdown bool) error {
	switch {
	case jsonOut:
		return output.JSON(showJSON{
			Version: sess.DisplayVersion(),
			Items:   sess.Catalog(),
			Rows:    sess.Selection(),
			Total:   sess.Total(),
		})
	case markdown:
		doc := export.Build(title, sess.DisplayVersion(), sess.Catalog(), sess.Selection(), time.Now())
		rendered, err := output.RenderMarkdown(doc.Markdown())
		if err != nil {
			output.Error("render: %v", err)
			return err
		}
		fmt.Fprint(output.Stdout, rendered)
		return nil
	default:
		fmt.Fprintln(output.Stdout, output.MenuTable(sess.Catalog(), sess.Selection()))
		fmt.Fprintln(output.Stdout, output.Subtle(sess.DisplayVersion()))
		return nil
	}
}

func init() {
	showCmd.Flags().Bool("json", false, "print JSON")
	showCmd.Flags().Bool("markdown", false, "render the selection as markdown")
	showCmd.MarkFlagsMutuallyExclusive("json", "markdown")
	rootCmd.AddCommand(showCmd)
}
