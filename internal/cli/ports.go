package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/lock"
	"github.com/rileyhilliard/sensormon/internal/source"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// listPorts is swapped in tests.
var listPorts = source.ListPorts

// PortStatus is the JSON shape of one ports entry.
type PortStatus struct {
	Port       string         `json:"port"`
	Configured bool           `json:"configured"`
	Locked     bool           `json:"locked"`
	Holder     *lock.LockInfo `json:"holder,omitempty"`
}

func portsCommand(out io.Writer) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	statuses, err := collectPorts(cfg)
	if err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(out, statuses)
	}

	rows := make([]ui.PortRow, len(statuses))
	for i, s := range statuses {
		rows[i] = ui.PortRow{Port: s.Port, Configured: s.Configured}
		if s.Holder != nil {
			rows[i].Holder = s.Holder.String()
		}
	}
	fmt.Fprint(out, ui.RenderPortTable(rows))
	if len(rows) > 0 && cfg.Source.Kind == config.SourceSerial && !anyConfigured(statuses) {
		fmt.Fprintf(out, "\n%s Configured port %s was not found\n",
			ui.WarningStyle().Render(ui.SymbolWarning), cfg.Source.Serial.Port)
	}
	return nil
}

func collectPorts(cfg *config.Config) ([]PortStatus, error) {
	names, err := listPorts()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnect,
			"Couldn't list serial ports",
			"Check that you have permission to read serial devices")
	}
	sort.Strings(names)

	out := make([]PortStatus, 0, len(names))
	for _, name := range names {
		s := PortStatus{
			Port:       name,
			Configured: cfg.Source.Kind == config.SourceSerial && name == cfg.Source.Serial.Port,
		}
		if cfg.Lock.Enabled {
			s.Holder = lock.Holder(cfg.Lock.Dir, name)
			s.Locked = s.Holder != nil
		}
		out = append(out, s)
	}
	return out, nil
}

func anyConfigured(statuses []PortStatus) bool {
	for _, s := range statuses {
		if s.Configured {
			return true
		}
	}
	return false
}
