package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Preset         string // Preset to start from (default: climate)
	Port           string // Serial port override
	Path           string // Output path (default: ./.sensormon.yaml)
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use the preset as-is
	Out            io.Writer
}

// isTerminal is swapped in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// Init creates a new .sensormon.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}
	interactive := !opts.NonInteractive && isTerminal()

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if !interactive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	answers := initAnswers{Preset: opts.Preset, Port: opts.Port}
	if answers.Preset == "" {
		answers.Preset = config.PresetClimate
	}
	if interactive {
		if err := runInitForm(&answers); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}

	if err := config.Write(configPath, cfg, true); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), configPath)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(out, "%s It needs editing before use: %s\n",
			ui.WarningStyle().Render(ui.SymbolWarning), errors.Summary(err))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  sensormon ports     - Check the device is visible")
	fmt.Fprintln(out, "  sensormon monitor   - Open the live dashboard")
	fmt.Fprintln(out, "  sensormon record    - Record without the dashboard")
	return nil
}

// initAnswers are the values the form collects.
type initAnswers struct {
	Preset    string
	Port      string
	Baud      string
	ChannelID string
	APIKey    string
}

// buildInitConfig turns answers into the config to write. Blank answers keep
// the preset's values.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	cfg, err := config.Preset(a.Preset)
	if err != nil {
		return nil, err
	}
	cfg.Preset = a.Preset

	baud := 0
	if b := strings.TrimSpace(a.Baud); b != "" {
		baud, err = strconv.Atoi(b)
		if err != nil || baud <= 0 {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid baud rate: %s", a.Baud),
				"Use a positive number like 9600 or 115200")
		}
	}
	config.ApplyOverrides(cfg, strings.TrimSpace(a.Port), baud)

	if id := strings.TrimSpace(a.ChannelID); id != "" {
		cfg.Source.HTTP.ChannelID = id
	}
	if key := strings.TrimSpace(a.APIKey); key != "" {
		cfg.Source.HTTP.APIKey = key
	}
	return cfg, nil
}

func runInitForm(a *initAnswers) error {
	options := make([]huh.Option[string], 0, len(config.Presets()))
	for _, p := range config.Presets() {
		options = append(options, huh.NewOption(p.Name+" - "+p.Description, p.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Device preset").
				Description("Channels, thresholds and line format to start from").
				Options(options...).
				Value(&a.Preset),
		),
	)
	if err := form.Run(); err != nil {
		return formError(err)
	}

	preset, err := config.Preset(a.Preset)
	if err != nil {
		return err
	}

	var group *huh.Group
	if preset.Source.Kind == config.SourceHTTP {
		group = huh.NewGroup(
			huh.NewInput().
				Title("Channel ID").
				Description("The numeric ID of the feed channel").
				Value(&a.ChannelID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("channel ID is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Read API key (optional)").
				Description("Needed for private channels").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
		)
	} else {
		if a.Port == "" {
			a.Port = preset.Source.Serial.Port
		}
		ports, _ := listPorts()
		group = huh.NewGroup(
			huh.NewInput().
				Title("Serial port").
				Description("Run 'sensormon ports' to see what's attached").
				Suggestions(ports).
				Value(&a.Port).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("serial port is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Baud rate").
				Placeholder(strconv.Itoa(preset.Source.Serial.Baud)).
				Value(&a.Baud).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n <= 0 {
						return fmt.Errorf("baud rate must be a positive number")
					}
					return nil
				}),
		)
	}

	if err := huh.NewForm(group).Run(); err != nil {
		return formError(err)
	}
	return nil
}

func formError(err error) error {
	return errors.WrapWithCode(err, errors.ErrConfig,
		"Failed to get user input",
		"Check terminal compatibility or use --non-interactive")
}
