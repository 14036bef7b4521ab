package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reb0und/sringbuf/pkg/cli"
)

const appName = "sringbuf"

// configEnv overrides the config file path when --config is not given.
const configEnv = "SRINGBUF_CONFIG"

var (
	// Global flags
	verbose      bool
	formatOutput string
	outputFile   string
	configFile   string
	jqExpr       string

	// Global configuration (loaded at init time)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Single-threaded ring buffer toolkit",
	Long: `sringbuf - replay and inspect a fixed-capacity ring buffer.

The buffer overwrites the oldest unread value when a write lands on an
occupied slot, and a read from an empty slot returns nothing.

Configuration is stored in ~/.sringbuf/sringbuf/config.yaml unless
--config or $SRINGBUF_CONFIG names another file.

Examples:
  # Replay a script and show each step
  sringbuf replay -f overwrite.yaml -o table

  # Only the final state, as JSON
  sringbuf replay -f overwrite.yaml -o json --jq .final

  # Default to table output from now on
  sringbuf config set format table`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVarP(&formatOutput, "format", "o", "", "output format: yaml, json, msgpack, table, raw (default from config)")
	pf.StringVar(&outputFile, "output", "", "write output to file instead of stdout")
	pf.StringVar(&configFile, "config", "", "config file path (default $"+configEnv+" or ~/.sringbuf/sringbuf/config.yaml)")
	pf.StringVar(&jqExpr, "jq", "", "filter the result with a jq expression")
}

// configLoadErr stores the error from config loading for deferred reporting.
var configLoadErr error

func initConfig() {
	globalConfig, configLoadErr = nil, nil

	path := configFile
	if path == "" {
		path = os.Getenv(configEnv)
	}
	var cfg *cli.Config
	var err error
	if path == "" {
		cfg, err = cli.LoadConfig(appName)
	} else {
		cfg, err = cli.LoadConfigWithPath(appName, path)
	}
	if err != nil {
		configLoadErr = err
	} else {
		globalConfig = cfg
	}
	setupLogger()
}

func setupLogger() {
	level := slog.LevelWarn
	if globalConfig != nil {
		level = globalConfig.SlogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns the global configuration.
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		return nil, fmt.Errorf("config not loaded")
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// outputFormat resolves --format, then the config file, then YAML.
func outputFormat() (cli.OutputFormat, error) {
	if formatOutput != "" {
		f := cli.OutputFormat(formatOutput)
		if !f.IsValid() {
			return "", fmt.Errorf("unsupported output format: %s", formatOutput)
		}
		return f, nil
	}
	if globalConfig != nil {
		return globalConfig.OutputFormat(), nil
	}
	return cli.FormatYAML, nil
}

func styles() cli.Styles {
	if outputFile != "" || (globalConfig != nil && globalConfig.NoColor) {
		return cli.PlainStyles()
	}
	return cli.NewStyles(cli.DefaultTheme)
}

// printResult applies --jq and writes result in the selected format.
func printResult(result any) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	if jqExpr != "" {
		if result, err = cli.Query(result, jqExpr); err != nil {
			return err
		}
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
		Styles: styles(),
	})
}
