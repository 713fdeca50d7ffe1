package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetSummaries(t *testing.T) {
	summaries, err := presetSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	byName := map[string]PresetSummary{}
	for _, s := range summaries {
		byName[s.Name] = s
	}
	assert.Equal(t, []string{"Temperature (°C)", "Humidity (%)"}, byName["climate"].Channels)
	assert.Equal(t, "http", byName["thingspeak"].Source)
	assert.Equal(t, []string{"Voltage (V)"}, byName["voltage"].Channels)
	assert.Len(t, byName["triple"].Channels, 3)
}

func TestPresetsCommand_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, presetsCommand(&out))

	text := out.String()
	for _, want := range []string{"NAME", "climate", "thingspeak", "triple", "voltage"} {
		assert.Contains(t, text, want)
	}
}

func TestPresetsCommand_JSON(t *testing.T) {
	withMachineMode(t)

	var out bytes.Buffer
	require.NoError(t, presetsCommand(&out))

	var env struct {
		Success bool            `json:"success"`
		Data    []PresetSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 4)
}
