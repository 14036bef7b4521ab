package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reb0und/sringbuf/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change CLI settings",
	Long: `View or change the settings stored in the config file.

Keys:
  format     default output format (yaml, json, msgpack, table, raw)
  log_level  log level (debug, info, warn, error)
  no_color   disable colored table output (true/false)
  store_dir  directory for saved reports (default: reports/ next to the config file)

Examples:
  sringbuf config view
  sringbuf config set format table
  sringbuf config path`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return printResult(cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		cli.PrintSuccess("%s set to %s", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configViewCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
