package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensormon/internal/config"
)

// useConfig writes body as the --config file for the duration of the test.
func useConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	old := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = old })
	return path
}

func withMachineMode(t *testing.T) {
	t.Helper()
	old := machineMode
	machineMode = true
	t.Cleanup(func() { machineMode = old })
}
