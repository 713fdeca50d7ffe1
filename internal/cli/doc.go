// Package cli implements the sensormon command-line interface.
//
// Each Cobra command is a thin wrapper that parses flags and hands off to a
// plain function taking an io.Writer, so the behavior can be tested without
// going through Cobra:
//
//	sensormon monitor            - Live dashboard
//	sensormon record             - Headless capture with CSV/PNG export
//	sensormon plot <csv> <out>   - Render a saved CSV to an image
//	sensormon ports              - List serial ports and who holds them
//	sensormon presets            - List built-in device presets
//	sensormon sessions           - List archived sessions
//	sensormon init               - Create .sensormon.yaml
//
// # Sessions
//
// monitor and record share openSession, which builds the data source named
// by the config, the optional sqlite archive, and the session.Controller
// that owns the acquisition loop. The returned close function must be
// called to release the serial port and its lock.
//
// # Flag Handling
//
// Global flags (--config, --debug, --log-file, --no-color, --json) live on
// the root command. --preset, --port and --baud are added to the commands
// that open a session by AddSessionFlags; a preset replaces the config file
// entirely.
package cli
