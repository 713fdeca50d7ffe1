package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
)

// Command-specific flags
var (
	monitorFlags SessionFlags

	recordFlags       SessionFlags
	recordDurationArg string
	recordCSVPath     string
	recordImagePath   string

	initPresetFlag     string
	initPortFlag       string
	initOutputFlag     string
	initForce          bool
	initNonInteractive bool

	plotTitleFlag      string
	plotThresholdsFlag bool

	sessionsDBFlag    string
	sessionsLimitFlag int
)

// monitorCmd starts the interactive dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the live sensor dashboard",
	Long: `Start an interactive dashboard for the configured device.

The dashboard shows a live chart of every visible channel, a card per channel
with its latest value and thresholds, and a status line naming any channel
outside its range. Logs go to a file so they don't disturb the screen
(default: sensormon.log in the temp dir, or log.file / --log-file).

Keyboard shortcuts:
  s           Start the session (connects and sends the start token)
  x           Stop the session
  c           Export history to CSV
  g           Save the chart as PNG
  1-8         Toggle channel visibility
  left/right  Select a channel
  t           Edit the selected channel's thresholds
  w           Write thresholds back to the config file
  ?           Show help
  q / Ctrl+C  Quit

Examples:
  sensormon monitor
  sensormon monitor --preset voltage --port /dev/ttyUSB0
  sensormon monitor --config lab.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(monitorFlags)
	},
}

// recordCmd runs a headless session
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a session without the dashboard",
	Long: `Run a session headless, logging the latest values and alert status on
every refresh. Stops after --duration, or on Ctrl+C / SIGTERM, then writes
the requested exports.

Examples:
  sensormon record --duration 5m --csv run.csv
  sensormon record --preset triple --png run.png
  sensormon record --duration 1h --csv run.csv --png run.svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := ParseDuration("duration", recordDurationArg)
		if err != nil {
			return err
		}
		return recordCommand(cmd.Context(), RecordOptions{
			Flags:     recordFlags,
			Duration:  d,
			CSVPath:   recordCSVPath,
			ImagePath: recordImagePath,
			Out:       cmd.OutOrStdout(),
		})
	},
}

// initCmd creates a new .sensormon.yaml
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sensormon.yaml configuration",
	Long: `Create a config file for your device from one of the built-in presets.

Runs an interactive form when attached to a terminal. Use --non-interactive
(or pipe stdin) to write the preset as-is.

Examples:
  sensormon init
  sensormon init --preset voltage --port /dev/ttyUSB0 --non-interactive
  sensormon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Preset:         initPresetFlag,
			Port:           initPortFlag,
			Path:           initOutputFlag,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Out:            cmd.OutOrStdout(),
		})
	},
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and who holds them",
	Long: `List the serial ports on this machine. Ports locked by a running sensormon
show the user, host and pid holding them. The port from the loaded config
is marked with *.

Examples:
  sensormon ports
  sensormon ports --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(cmd.OutOrStdout())
	},
}

// presetsCmd lists built-in presets
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in device presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return presetsCommand(cmd.OutOrStdout())
	},
}

// plotCmd re-renders an exported CSV
var plotCmd = &cobra.Command{
	Use:   "plot <in.csv> <out.png|jpg|pdf|svg>",
	Short: "Render an exported CSV as a chart image",
	Long: `Re-render a CSV written by sensormon (dashboard export or record --csv)
as a chart. The output format follows the file extension.

Examples:
  sensormon plot run.csv run.png
  sensormon plot run.csv run.svg --title "Bench test"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotCommand(args[0], args[1], plotTitleFlag, plotThresholdsFlag, cmd.OutOrStdout())
	},
}

// sessionsCmd lists archived sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions stored in the archive database",
	Long: `List the sessions recorded to the SQLite archive (archive.enabled in the
config), newest first.

Examples:
  sensormon sessions
  sensormon sessions --db lab.db --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionsLimitFlag < 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid limit: %d", sessionsLimitFlag),
				"Use 0 for all sessions or a positive number")
		}
		return sessionsCommand(cmd.Context(), sessionsDBFlag, sessionsLimitFlag, cmd.OutOrStdout())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sensormon.

Examples:
  # Bash
  sensormon completion bash > /etc/bash_completion.d/sensormon

  # Zsh
  sensormon completion zsh > "${fpath[1]}/_sensormon"

  # Fish
  sensormon completion fish > ~/.config/fish/completions/sensormon.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddSessionFlags(monitorCmd, &monitorFlags)

	AddSessionFlags(recordCmd, &recordFlags)
	recordCmd.Flags().StringVar(&recordDurationArg, "duration", "", "stop after this long (e.g., 30s, 5m); default runs until interrupted")
	recordCmd.Flags().StringVar(&recordCSVPath, "csv", "", "write the history to this CSV file when done")
	recordCmd.Flags().StringVar(&recordImagePath, "png", "", "save the chart to this image when done (png, jpg, pdf or svg)")

	initCmd.Flags().StringVar(&initPresetFlag, "preset", "", "preset to start from")
	initCmd.Flags().StringVar(&initPortFlag, "port", "", "serial port to use")
	initCmd.Flags().StringVarP(&initOutputFlag, "output", "o", "", "where to write the config (default: ./"+config.ConfigFileName+")")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use the preset as-is")
	_ = initCmd.RegisterFlagCompletionFunc("preset", completePresets)
	_ = monitorCmd.RegisterFlagCompletionFunc("preset", completePresets)
	_ = recordCmd.RegisterFlagCompletionFunc("preset", completePresets)

	plotCmd.Flags().StringVar(&plotTitleFlag, "title", "", "chart title (default: the CSV file name)")
	plotCmd.Flags().BoolVar(&plotThresholdsFlag, "thresholds", false, "draw threshold guides from the loaded config")

	sessionsCmd.Flags().StringVar(&sessionsDBFlag, "db", "", "archive database (default: archive.path from the config)")
	sessionsCmd.Flags().IntVar(&sessionsLimitFlag, "limit", 20, "show at most this many sessions (0 for all)")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(completionCmd)
}
