package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/marcus/menuboard/internal/export"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/session"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a password-protected receipt of the current selection",
	Long: `Write a password-protected, view-only receipt of the current selection:
every group's selected item, its value, the total and the menu version.

The password must be at least 4 characters. Open the receipt with
"menuboard export open <file>".`,
	GroupID: "menu",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		password, err := readPassword(fromStdin, os.Stdin, "Receipt password")
		if err != nil {
			output.Error("%v", err)
			return err
		}
		return withApp(cmd, func(a *app) error {
			path, err := runExport(a.sess, a.cfg.Title, outDir, password, time.Now())
			if err != nil {
				return err
			}
			output.Success("Wrote %s", path)
			return nil
		})
	},
}

func runExport(sess *session.Session, title, dir, password string, now time.Time) (string, error) {
	if err := export.ValidatePassword(password); err != nil {
		return "", err
	}
	doc := export.Build(title, sess.DisplayVersion(), sess.Catalog(), sess.Selection(), now)
	path, err := export.Write(dir, doc, password)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

var exportOpenCmd = &cobra.Command{
	Use:   "open <file>",
	Short: "Decrypt and print a receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")
		password, err := readPassword(fromStdin, os.Stdin, "Password for "+args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if err := openReceipt(args[0], password); err != nil {
			output.Error("%v", err)
			return err
		}
		return nil
	},
}

func openReceipt(path, password string) error {
	doc, err := export.ReadFile(path, password)
	if err != nil {
		if errors.Is(err, export.ErrWrongPassword) {
			return fmt.Errorf("%s: %w", path, err)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	rendered, err := output.RenderMarkdown(doc.Markdown())
	if err != nil {
		return err
	}
	fmt.Fprint(output.Stdout, rendered)
	return nil
}

// readPassword takes the first line of stdin, or prompts with hidden input.
func readPassword(fromStdin bool, stdin io.Reader, title string) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if !output.IsTerminal() {
		return "", errors.New("no terminal for the password prompt; use --password-stdin")
	}

	var password string
	err := huh.NewInput().
		Title(title).
		Description(fmt.Sprintf("At least %d characters", export.MinPasswordLen)).
		EchoMode(huh.EchoModePassword).
		Validate(export.ValidatePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", err
	}
	return password, nil
}

func init() {
	exportCmd.Flags().StringP("out", "o", ".", "directory for the receipt")
	exportCmd.PersistentFlags().Bool("password-stdin", false, "read the password from the first line of stdin")
	exportCmd.AddCommand(exportOpenCmd)
	rootCmd.AddCommand(exportCmd)
}
