package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensormon/internal/errors"
)

func TestMachineMode(t *testing.T) {
	oldMode := machineMode
	defer func() { machineMode = oldMode }()

	machineMode = false
	assert.False(t, MachineMode())
	machineMode = true
	assert.True(t, MachineMode())
}

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, []PresetSummary{{Name: "climate", Source: "serial"}}))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	items, ok := env.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "climate", items[0].(map[string]interface{})["name"])
}

func TestErrorToJSON(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *JSONError
	}{
		{name: "nil", err: nil, want: nil},
		{
			name: "structured",
			err:  errors.New(errors.ErrLock, "Port is busy", "Stop the other session"),
			want: &JSONError{Code: "LOCK", Message: "Port is busy", Suggestion: "Stop the other session"},
		},
		{
			name: "structured with cause, wrapped",
			err: fmt.Errorf("monitor: %w",
				errors.WrapWithCode(fmt.Errorf("no such file"), errors.ErrConnect, "Can't open /dev/ttyUSB0", "")),
			want: &JSONError{Code: "CONNECT", Message: "Can't open /dev/ttyUSB0", Cause: "no such file"},
		},
		{
			name: "plain",
			err:  fmt.Errorf("boom"),
			want: &JSONError{Code: ErrCodeUnknown, Message: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorToJSON(tt.err))
		})
	}
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONFromError(&buf, errors.New(errors.ErrConfig, "Config file not found", "Run 'sensormon init'")))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFIG", env.Error.Code)
	assert.Equal(t, "Run 'sensormon init'", env.Error.Suggestion)
}
