package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/sensormon/internal/dashboard"
	"github.com/rileyhilliard/sensormon/internal/logger"
)

// monitorCommand starts the dashboard.
func monitorCommand(flags SessionFlags) error {
	cfg, path, err := loadSessionConfig(flags)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctrl, closeSession, err := openSession(cfg, sessionDeps{})
	if err != nil {
		return err
	}
	// Closing sends the stop token if still running and releases the port.
	defer closeSession()

	logger.Named("monitor").Info("dashboard for %s (config %q)", ctrl.Source().Name(), path)

	model := dashboard.New(dashboard.Options{
		Config:     cfg,
		ConfigPath: path,
		Session:    ctrl,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
