package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rileyhilliard/sensormon/internal/archive"
	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

func sessionsCommand(ctx context.Context, dbPath string, limit int, out io.Writer) error {
	if dbPath == "" {
		cfg, _, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		dbPath = cfg.Archive.Path
	}
	dbPath = config.ExpandPath(dbPath)

	// Opening would create an empty database; a missing file means nothing
	// was ever archived.
	if _, err := os.Stat(dbPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrArchive,
			fmt.Sprintf("No archive at %s", dbPath),
			"Set archive.enabled: true in your config and record a session first")
	}

	rec, err := archive.Open(archive.Options{Path: dbPath}, logger.Named("archive"))
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	if ctx == nil {
		ctx = context.Background()
	}
	sessions, err := rec.Sessions(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	if machineMode {
		return WriteJSONSuccess(out, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintf(out, "No sessions in %s\n", dbPath)
		return nil
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.Source,
			s.Preset,
			strconv.Itoa(s.Values),
		}
	}
	fmt.Fprintln(out, ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "ID", Width: 5},
		{Title: "STARTED", Width: 20},
		{Title: "SOURCE", Width: 28},
		{Title: "PRESET", Width: 12},
		{Title: "VALUES", Width: 8},
	}, rows))
	return nil
}
