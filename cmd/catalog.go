package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/menuboard/internal/input"
	"github.com/marcus/menuboard/internal/menu"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// formatFlag is a --format value restricted to the catalog file formats.
type formatFlag string

var _ pflag.Value = (*formatFlag)(nil)

func (f *formatFlag) String() string { return string(*f) }

func (f *formatFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case menu.FormatYAML, "yml":
		*f = menu.FormatYAML
	case menu.FormatJSON:
		*f = menu.FormatJSON
	default:
		return fmt.Errorf("must be %s or %s", menu.FormatYAML, menu.FormatJSON)
	}
	return nil
}

func (f *formatFlag) Type() string { return "format" }

var catalogFormat = formatFlag(menu.FormatYAML)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Short:   "Export or import the catalog as a file",
	GroupID: "catalog",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog to stdout",
	Example: `  menuboard catalog export > menu.yaml
  menuboard catalog export --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return writeCatalog(output.Stdout, sess, string(catalogFormat))
		})
	},
}

func writeCatalog(w io.Writer, sess *session.Session, format string) error {
	data, err := menu.EncodeCatalog(sess.Catalog(), format)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the catalog from a YAML or JSON file",
	Long: `Replace the catalog from a YAML or JSON file. Use - to read stdin.
Selections are kept where the new catalog still has the row.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return importCatalog(sess, args[0], os.Stdin)
		})
	},
}

func importCatalog(sess *session.Session, ref string, stdin io.Reader) error {
	data, err := input.ReadSource(ref, stdin)
	if err != nil {
		return err
	}
	catalog, err := menu.DecodeCatalog(data)
	if err != nil {
		return err
	}
	if err := sess.Import(catalog); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	output.Success("Imported %d items in %d groups", len(catalog), len(sess.Groups()))
	return nil
}

var defaultsCmd = &cobra.Command{
	Use:     "defaults",
	Short:   "Replace the catalog with the built-in menu",
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirmAction(cmd, "Replace the catalog with the built-in menu?", "Reset")
		if err != nil || !ok {
			return err
		}
		return withSession(cmd, func(sess *session.Session) error {
			sess.ResetCatalog()
			output.Success("Catalog reset to defaults (%s)", sess.DisplayVersion())
			return nil
		})
	},
}

// confirmAction asks before a destructive command unless --yes is set.
// Without a terminal the command is refused.
func confirmAction(cmd *cobra.Command, title, affirmative string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	if !output.IsTerminal() {
		err := fmt.Errorf("refusing to %s without --yes", strings.ToLower(affirmative))
		output.Error("%v", err)
		return false, err
	}
	confirmed := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative(affirmative).
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		output.Error("%v", err)
		return false, err
	}
	if !confirmed {
		output.Info("Cancelled")
	}
	return confirmed, nil
}

func init() {
	catalogExportCmd.Flags().Var(&catalogFormat, "format", "file format: yaml or json")
	catalogCmd.AddCommand(catalogExportCmd, catalogImportCmd)

	defaultsCmd.Flags().BoolP("yes", "y", false, "skip the confirmation")
	rootCmd.AddCommand(catalogCmd, defaultsCmd)
}
