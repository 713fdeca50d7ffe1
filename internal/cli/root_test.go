package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unknown command error", err: errors.New(`unknown command "foo" for "sensormon"`), want: true},
		{name: "unknown flag error", err: errors.New(`unknown flag: --foo`), want: true},
		{name: "other error", err: errors.New("connection failed"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestRenderError(t *testing.T) {
	structured := smerrors.New(smerrors.ErrConfig, "Bad config", "Fix it")
	assert.Equal(t, structured.Error(), renderError(structured))

	assert.Equal(t, ui.SymbolFail+" boom", renderError(errors.New("boom")))
}

func TestLevelFor(t *testing.T) {
	old := debugFlag
	defer func() { debugFlag = old }()

	debugFlag = false
	assert.Equal(t, "warn", levelFor("warn"))

	debugFlag = true
	assert.Equal(t, "debug", levelFor("warn"))
}

func TestRootCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"monitor", "record", "init", "ports", "presets", "plot", "sessions", "version", "completion"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"config", "debug", "log-file", "no-color", "json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}
