package cli

import (
	"github.com/rileyhilliard/sensormon/internal/archive"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/session"
	"github.com/rileyhilliard/sensormon/internal/source"
)

// sessionDeps are the test seams for openSession.
type sessionDeps struct {
	Source source.Options
}

// openSession builds the source, the optional archive and the controller.
// The returned close func stops the session, releases the port and flushes
// the archive.
func openSession(cfg *config.Config, deps sessionDeps) (*session.Controller, func(), error) {
	component := "serial"
	if cfg.Source.Kind == config.SourceHTTP {
		component = "http"
	}
	src, err := source.New(cfg, logger.Named(component), deps.Source)
	if err != nil {
		return nil, nil, err
	}

	opts := session.Options{Log: logger.Named("session")}
	var rec *archive.Recorder
	if cfg.Archive.Enabled {
		rec, err = archive.Open(archive.Options{
			Path:          cfg.Archive.Path,
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			Channels:      channelIDs(cfg),
		}, logger.Named("archive"))
		if err != nil {
			return nil, nil, err
		}
		opts.Archive = rec
	}

	ctrl := session.New(cfg, src, opts)
	closeFn := func() {
		log := logger.Named("session")
		if err := ctrl.Close(); err != nil {
			log.Warn("close: %v", err)
		}
		if rec != nil {
			if err := rec.Close(); err != nil {
				log.Warn("archive close: %v", err)
			}
		}
	}
	return ctrl, closeFn, nil
}

func channelIDs(cfg *config.Config) []string {
	ids := make([]string, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		ids[i] = ch.ID
	}
	return ids
}
