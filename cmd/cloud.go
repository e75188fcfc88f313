package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcus/menuboard/internal/cloud"
	"github.com/marcus/menuboard/internal/crypto"
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/session"
	"github.com/spf13/cobra"
)

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Back up the catalog to cloud storage",
	Long: `Back up the catalog to cloud storage.

Configure a backend with cloud.backend (s3, supabase or dir) and set
cloud.secret to encrypt the uploaded blob. Generate a secret with
"menuboard cloud keygen".`,
	GroupID: "sync",
}

var cloudPushCmd = &cobra.Command{
	Use:     "push",
	Aliases: []string{"save"},
	Short:   "Save locally and upload the catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return runCloudPush(cmd.Context(), sess)
		})
	},
}

func runCloudPush(ctx context.Context, sess *session.Session) error {
	if err := sess.CloudSave(ctx); err != nil {
		return cloudError("cloud save", err)
	}
	output.Success("Uploaded %s", sess.DisplayVersion())
	return nil
}

var cloudPullCmd = &cobra.Command{
	Use:     "pull",
	Aliases: []string{"load"},
	Short:   "Download the catalog and replace the local one",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			return runCloudPull(cmd.Context(), sess)
		})
	},
}

func runCloudPull(ctx context.Context, sess *session.Session) error {
	if err := sess.CloudLoad(ctx); err != nil {
		return cloudError("cloud load", err)
	}
	output.Success("Loaded %d items in %d groups (%s)", len(sess.Catalog()), len(sess.Groups()), sess.DisplayVersion())
	return nil
}

var cloudKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a random secret for cloud.secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Fprintln(output.Stdout, key)
		return nil
	},
}

// cloudError adds a hint for well-known remote failures.
func cloudError(op string, err error) error {
	switch {
	case errors.Is(err, session.ErrNoRemote):
		return fmt.Errorf("%s: %w (set cloud.backend)", op, err)
	case errors.Is(err, cloud.ErrNotFound):
		return fmt.Errorf("%s: no backup found: %w", op, err)
	case errors.Is(err, cloud.ErrUnauthorized):
		return fmt.Errorf("%s: check storage credentials: %w", op, err)
	case errors.Is(err, crypto.ErrInvalidHeader):
		return fmt.Errorf("%s: backup is not encrypted with this secret's format: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: timed out: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func init() {
	cloudCmd.AddCommand(cloudPushCmd, cloudPullCmd, cloudKeygenCmd)
	rootCmd.AddCommand(cloudCmd)
}
