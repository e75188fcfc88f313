package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/menuboard/internal/config"
	"github.com/marcus/menuboard/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage menuboard configuration",
	GroupID: "system",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Fprintln(output.Stdout, path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the effective configuration (file, .env and environment merged). Secrets are masked.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		return output.JSON(masked(*cfg))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a config value in the config file. Keys:

  ` + strings.Join(config.SettableKeys(), "\n  ") + `
  keys.<context:key>   rebind a TUI key to a command ("" removes it)`,
	Example: `  menuboard config set cloud.backend s3
  menuboard config set keys.view:x clear-selection`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Set %s", args[0])
		return nil
	},
}

func setConfigValue(key, value string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	// Validate against a copy so defaults are not written back.
	check := *cfg
	if err := check.ApplyDefaults(); err != nil {
		return err
	}
	return config.Save(path, cfg)
}

// masked hides secrets for display.
func masked(cfg config.Config) config.Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	cfg.Cloud.Secret = mask(cfg.Cloud.Secret)
	cfg.Cloud.S3.SecretKey = mask(cfg.Cloud.S3.SecretKey)
	cfg.Cloud.Supabase.Key = mask(cfg.Cloud.Supabase.Key)
	return cfg
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
