package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/export"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// plotCommand renders a CSV export to an image. Sizing comes from the
// loaded config; so do thresholds when export.thresholds or --thresholds is
// set, matched by channel label.
func plotCommand(in, outPath, title string, thresholds bool, out io.Writer) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	data, err := export.LoadCSV(in)
	if err != nil {
		return err
	}

	opts, err := export.ImageOptionsFrom(cfg.Export)
	if err != nil {
		return err
	}
	if thresholds {
		opts.Thresholds = true
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}
	opts.Title = title

	channels := data.Channels
	if opts.Thresholds {
		byLabel := make(map[string]config.ChannelConfig, len(cfg.Channels))
		for _, ch := range cfg.Channels {
			byLabel[ch.Label] = ch
		}
		for i, ch := range channels {
			if c, ok := byLabel[ch.Label]; ok {
				channels[i].Min, channels[i].Max = c.Min, c.Max
			}
		}
	}

	if err := export.SaveImage(outPath, channels, data.Snapshot, opts); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Chart saved to %s (%d samples)\n",
		ui.SuccessStyle().Render(ui.SymbolSuccess), outPath, data.Snapshot.Len())
	return nil
}
