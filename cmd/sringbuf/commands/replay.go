package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reb0und/sringbuf/pkg/cli"
	"github.com/reb0und/sringbuf/pkg/replay"
)

var (
	replayFiles []string
	replaySave  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay -f script.yaml [-f more.yaml]",
	Short: "Run replay scripts against a ring buffer",
	Long: `Run one or more replay scripts and print a report per script.

A script sets the buffer capacity and lists write and read operations.
Reads may state the value they expect, and the script may state the
expected final buffer state. Use "-f -" to read a script from stdin.

The command fails if any expectation does not hold. With --save the
reports are also stored for "sringbuf reports".

Examples:
  sringbuf replay -f overwrite.yaml
  sringbuf replay -f a.yaml -f b.json -o table
  cat script.yaml | sringbuf replay -f - --jq .evictions
  sringbuf replay -f nightly.yaml --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(replayFiles) == 0 {
			return fmt.Errorf("no script given, use -f")
		}

		runner := &replay.Runner{Logger: slog.Default()}
		var reports reportList
		for _, path := range replayFiles {
			s, err := loadScript(path)
			if err != nil {
				return err
			}
			rep, err := runner.Run(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports = append(reports, rep)
		}

		var result any = reports
		if len(reports) == 1 {
			result = reports[0]
		}
		if err := printResult(result); err != nil {
			return err
		}
		if replaySave {
			if err := saveReports(cmd, reports); err != nil {
				return err
			}
		}

		for _, rep := range reports {
			if !rep.OK() {
				cli.PrintWarning("%s: %d failed expectations", rep.Name, len(rep.Failures))
			}
		}
		if n := reports.failed(); n > 0 {
			return fmt.Errorf("%d of %d scripts failed", n, len(reports))
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringArrayVarP(&replayFiles, "file", "f", nil, "script file (YAML or JSON), - for stdin")
	replayCmd.Flags().BoolVar(&replaySave, "save", false, "save reports to the report store")
	rootCmd.AddCommand(replayCmd)
}

func loadScript(path string) (*replay.Script, error) {
	if path != "-" {
		return replay.LoadScript(path)
	}
	var s replay.Script
	if err := cli.LoadRequestFromStdin(&s); err != nil {
		return nil, fmt.Errorf("load script from stdin: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load script from stdin: %w", err)
	}
	return &s, nil
}

func saveReports(cmd *cobra.Command, reports reportList) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, rep := range reports {
		if err := st.Put(cmd.Context(), rep); err != nil {
			return err
		}
		cli.PrintInfo("saved report %s for %s", rep.ID, rep.Name)
	}
	return nil
}

type reportList []*replay.Report

func (l reportList) failed() int {
	n := 0
	for _, r := range l {
		if !r.OK() {
			n++
		}
	}
	return n
}

// RenderTable implements cli.TableRenderer.
func (l reportList) RenderTable(st cli.Styles) string {
	parts := make([]string, len(l))
	for i, r := range l {
		parts[i] = r.RenderTable(st)
	}
	return strings.Join(parts, "\n\n")
}
