package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reb0und/sringbuf/pkg/cli"
	"github.com/reb0und/sringbuf/pkg/replay"
	"github.com/reb0und/sringbuf/pkg/store"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse reports saved with replay --save",
	Long: `Browse reports saved with "sringbuf replay --save".

Reports are kept in the store_dir config setting, by default the reports
directory next to the config file.

Examples:
  sringbuf reports list -o table
  sringbuf reports get 01920f3c-... --jq .final
  sringbuf reports delete 01920f3c-...`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		list := summaryList{}
		for rep, err := range st.List(cmd.Context()) {
			if err != nil {
				return err
			}
			list = append(list, summarize(rep))
		}
		return printResult(list)
	},
}

var reportsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(rep)
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("deleted report %s", args[0])
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd, reportsGetCmd, reportsDeleteCmd)
	rootCmd.AddCommand(reportsCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(store.Options{Dir: cfg.ReportDir(), Logger: slog.Default()})
}

type reportSummary struct {
	ID        string `json:"id" yaml:"id" msgpack:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Capacity  int    `json:"capacity" yaml:"capacity" msgpack:"capacity"`
	Steps     int    `json:"steps" yaml:"steps" msgpack:"steps"`
	Evictions int    `json:"evictions" yaml:"evictions" msgpack:"evictions"`
	Failures  int    `json:"failures" yaml:"failures" msgpack:"failures"`
	OK        bool   `json:"ok" yaml:"ok" msgpack:"ok"`
}

func summarize(r *replay.Report) reportSummary {
	return reportSummary{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Steps:     len(r.Steps),
		Evictions: r.Evictions,
		Failures:  len(r.Failures),
		OK:        r.OK(),
	}
}

type summaryList []reportSummary

// RenderTable implements cli.TableRenderer.
func (l summaryList) RenderTable(st cli.Styles) string {
	if len(l) == 0 {
		return st.Help.Render("no saved reports")
	}
	lines := []string{st.Title.Render(fmt.Sprintf("%-36s  %-20s  %4s  %5s  %5s  %s", "ID", "NAME", "CAP", "STEPS", "EVICT", "RESULT"))}
	for _, s := range l {
		result := st.Label.Render("ok")
		if !s.OK {
			result = st.Alert.Render(fmt.Sprintf("%d failed", s.Failures))
		}
		lines = append(lines, fmt.Sprintf("%-36s  %-20s  %4d  %5d  %5d  %s", s.ID, s.Name, s.Capacity, s.Steps, s.Evictions, result))
	}
	return strings.Join(lines, "\n")
}
