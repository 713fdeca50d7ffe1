package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
)

// SessionFlags holds the overrides shared by monitor and record.
type SessionFlags struct {
	Preset string
	Port   string
	Baud   int
}

// AddSessionFlags registers --preset, --port and --baud on a command.
func AddSessionFlags(cmd *cobra.Command, flags *SessionFlags) {
	cmd.Flags().StringVar(&flags.Preset, "preset", "", "use a built-in preset instead of the config file")
	cmd.Flags().StringVar(&flags.Port, "port", "", "serial port override (e.g., /dev/ttyUSB0, COM3)")
	cmd.Flags().IntVar(&flags.Baud, "baud", 0, "baud rate override")
}

// loadSessionConfig resolves the config for a session command. --preset
// skips the config file entirely; the returned path is then empty, which
// disables writing thresholds back.
func loadSessionConfig(flags SessionFlags) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if flags.Preset != "" {
		cfg, err = config.Preset(flags.Preset)
	} else {
		cfg, path, err = config.LoadOrDefault(cfgFile)
	}
	if err != nil {
		return nil, "", err
	}

	config.ApplyOverrides(cfg, flags.Port, flags.Baud)
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// ParseDuration parses a duration flag. Empty means zero.
func ParseDuration(name, flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil || d < 0 {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid %s", flag, name),
			"Try something like 30s, 5m, or 1h30m.")
	}
	return d, nil
}
