package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensormon/internal/archive"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
)

func seedArchive(t *testing.T, sessions int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	rec, err := archive.Open(archive.Options{Path: path, BatchSize: 10, Channels: []string{"temp", "hum"}}, logger.Noop())
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < sessions; i++ {
		began := start.Add(time.Duration(i) * time.Hour)
		require.NoError(t, rec.Begin("/dev/ttyUSB0", "climate", began))
		rec.Record(sensor.Reading{At: began, Elapsed: 0, Values: []float64{21, 40}})
	}
	require.NoError(t, rec.Close())
	return path
}

func TestSessionsCommand(t *testing.T) {
	path := seedArchive(t, 3)

	var out bytes.Buffer
	require.NoError(t, sessionsCommand(context.Background(), path, 2, &out))

	text := out.String()
	assert.Contains(t, text, "STARTED")
	assert.Contains(t, text, "2026-03-01 11:00:00")
	assert.Contains(t, text, "2026-03-01 10:00:00")
	assert.NotContains(t, text, "2026-03-01 09:00:00", "limit keeps the newest")
	assert.Contains(t, text, "/dev/ttyUSB0")
}

func TestSessionsCommand_JSON(t *testing.T) {
	path := seedArchive(t, 2)
	withMachineMode(t)

	var out bytes.Buffer
	require.NoError(t, sessionsCommand(context.Background(), path, 0, &out))

	var env struct {
		Success bool                  `json:"success"`
		Data    []archive.SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, 2, env.Data[0].Values)
	assert.Greater(t, env.Data[0].ID, env.Data[1].ID)
}

func TestSessionsCommand_Empty(t *testing.T) {
	path := seedArchive(t, 0)

	var out bytes.Buffer
	require.NoError(t, sessionsCommand(context.Background(), path, 0, &out))
	assert.Equal(t, "No sessions in "+path+"\n", out.String())
}

func TestSessionsCommand_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.db")
	err := sessionsCommand(context.Background(), path, 0, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, smerrors.IsCode(err, smerrors.ErrArchive))
	assert.NoFileExists(t, path)
}

func TestSessionsCommand_DefaultsToConfigPath(t *testing.T) {
	path := seedArchive(t, 1)
	useConfig(t, "archive:\n  path: "+path+"\n")

	var out bytes.Buffer
	require.NoError(t, sessionsCommand(context.Background(), "", 0, &out))
	assert.Contains(t, out.String(), "climate")
}
