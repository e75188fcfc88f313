package cmd

import (
	"github.com/marcus/menuboard/internal/output"
	"github.com/marcus/menuboard/internal/store"
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all locally saved menu data",
	Long: `Delete the saved catalog, selection and change counter from the local
store. The next run starts from the built-in menu with the change counter
at zero. Cloud backups are not touched.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirmAction(cmd, "Delete all locally saved menu data?", "Purge")
		if err != nil || !ok {
			return err
		}
		return withApp(cmd, func(a *app) error {
			n, err := purgeStore(a.store)
			if err != nil {
				return err
			}
			output.Success("Removed %d stored values", n)
			return nil
		})
	},
}

// purgeStore deletes every stored key and returns how many were removed.
func purgeStore(st *store.Store) (int, error) {
	keys, err := st.Keys()
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		if err := st.Delete(k); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func init() {
	purgeCmd.Flags().BoolP("yes", "y", false, "skip the confirmation")
	rootCmd.AddCommand(purgeCmd)
}
