package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// PresetSummary is the JSON shape of one presets entry.
type PresetSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Channels    []string `json:"channels"`
}

func presetsCommand(out io.Writer) error {
	summaries, err := presetSummaries()
	if err != nil {
		return err
	}
	if machineMode {
		return WriteJSONSuccess(out, summaries)
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.Name, s.Source, strings.Join(s.Channels, ", "), s.Description}
	}
	fmt.Fprintln(out, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "NAME", Width: 12},
		{Title: "SOURCE", Width: 8},
		{Title: "CHANNELS", Width: 32},
		{Title: "DESCRIPTION", Width: 44},
	}, rows))
	return nil
}

func presetSummaries() ([]PresetSummary, error) {
	var out []PresetSummary
	for _, p := range config.Presets() {
		cfg, err := config.Preset(p.Name)
		if err != nil {
			return nil, err
		}
		s := PresetSummary{Name: p.Name, Description: p.Description, Source: cfg.Source.Kind}
		for _, ch := range cfg.SensorChannels() {
			s.Channels = append(s.Channels, ch.Title())
		}
		out = append(out, s)
	}
	return out, nil
}

// completePresets offers preset names for --preset.
func completePresets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return config.PresetNames(), cobra.ShellCompDirectiveNoFileComp
}
