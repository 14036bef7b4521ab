package commands

import (
	"github.com/spf13/cobra"

	"github.com/reb0und/sringbuf/pkg/replay"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the replay script JSON Schema",
	Long: `Print the JSON Schema that replay scripts follow.

Examples:
  sringbuf schema -o json > script.schema.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := replay.Schema()
		if err != nil {
			return err
		}
		return printResult(s)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
