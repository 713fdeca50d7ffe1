package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionScripts(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{shell: "bash", want: "# bash completion"},
		{shell: "zsh", want: "#compdef sensormon"},
		{shell: "fish", want: "complete -c sensormon"},
		{shell: "powershell", want: "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			defer completionCmd.SetOut(nil)

			require.NoError(t, completionCmd.RunE(completionCmd, []string{tt.shell}))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCompletePresets(t *testing.T) {
	names, directive := completePresets(nil, nil, "")
	assert.Equal(t, []string{"climate", "thingspeak", "triple", "voltage"}, names)
	assert.NotZero(t, directive)
}
