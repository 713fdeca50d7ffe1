package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// Global flags
var (
	cfgFile     string
	debugFlag   bool
	logFileFlag string
	noColorFlag bool
)

// defaultTUILog is where the dashboard logs when no file is configured, so
// log lines never land on the alt screen.
var defaultTUILog = filepath.Join(os.TempDir(), "sensormon.log")

var rootCmd = &cobra.Command{
	Use:   "sensormon",
	Short: "Live dashboard for serial and cloud sensor streams",
	Long: `sensormon reads numeric samples from a serial-attached microcontroller or a
ThingSpeak-style cloud feed, keeps a rolling history, checks each channel
against min/max thresholds, and renders a live terminal dashboard.

Get started:
  sensormon init        Create a .sensormon.yaml for your device
  sensormon ports       List serial ports
  sensormon monitor     Open the live dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColorFlag || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
			ui.DisableColors()
		}
		_, err := logger.Setup(logger.Options{
			Level:   levelFor(""),
			File:    logFileFlag,
			NoColor: noColorFlag,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .sensormon.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output where supported")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
			os.Exit(1)
		}
		if isUnknownCommandError(err) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "Run 'sensormon --help' for the list of commands.")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// renderError prints structured errors with their suggestion and plain
// errors with the failure symbol.
func renderError(err error) string {
	var smErr *errors.Error
	if stderrors.As(err, &smErr) {
		return smErr.Error()
	}
	return ui.ErrorStyle().Render(ui.SymbolFail) + " " + err.Error()
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// levelFor resolves the log level: --debug wins over the config.
func levelFor(configured string) string {
	if debugFlag {
		return "debug"
	}
	return configured
}

// setupLogging re-applies logging once the config is known. forceFile sends
// output to a file even when none is configured, for the dashboard.
func setupLogging(cfg *config.Config, forceFile bool) (func() error, error) {
	file := logFileFlag
	if file == "" {
		file = cfg.Log.File
	}
	if file == "" && forceFile {
		file = defaultTUILog
	}
	closeFn, err := logger.Setup(logger.Options{
		Level:   levelFor(cfg.Log.Level),
		File:    file,
		NoColor: noColorFlag,
	})
	if err != nil {
		return closeFn, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set up logging",
			"Check log.level and log.file in your config")
	}
	return closeFn, nil
}
