package source

import (
	"fmt"
	"net/http"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/wire"
)

// Options carries the test seams for New.
type Options struct {
	Opener     Opener
	HTTPClient *http.Client
}

// New builds the source selected by cfg.Source.Kind.
func New(cfg *config.Config, log logger.Logger, opts Options) (Source, error) {
	switch cfg.Source.Kind {
	case config.SourceSerial:
		return NewSerial(cfg.Source.Serial, opts.Opener, log), nil
	case config.SourceHTTP:
		return NewThingSpeak(cfg.Source.HTTP, len(cfg.Channels), opts.HTTPClient, log), nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown source kind '%s'", cfg.Source.Kind),
			"Use 'serial' or 'http'")
	}
}

// ParserFor returns the line parser for the configured format.
func ParserFor(cfg *config.Config) wire.Parser {
	if cfg.Format.Kind == config.FormatVoltage {
		return wire.VoltageParser{SkipPrefixes: cfg.Format.SkipPrefixes}
	}
	return wire.CSVParser{Fields: len(cfg.Channels), SkipPrefixes: cfg.Format.SkipPrefixes}
}
