package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrConnect,
		ErrLink,
		ErrParse,
		ErrThreshold,
		ErrExport,
		ErrArchive,
		ErrLock,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .sensormon.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "connect error",
			code:       ErrConnect,
			message:    "Cannot open /dev/ttyUSB0",
			suggestion: "Run 'sensormon ports' to list available ports",
		},
		{
			name:       "export error",
			code:       ErrExport,
			message:    "No data to export",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .sensormon.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .sensormon.yaml syntax"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(errors.New("no such file"), ErrConnect, "Cannot open port", ""),
			expectedParts: []string{"Cannot open port", "no such file"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrLink, "Serial link lost", ""),
			expectedParts: []string{"Serial link lost"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("device not configured"),
		ErrConnect,
		"Cannot open /dev/cu.usbserial-110",
		"Run: sensormon ports",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Contains(t, lines[0], "Cannot open /dev/cu.usbserial-110")
}

func TestWrap(t *testing.T) {
	cause := errors.New("input/output error")
	wrapped := Wrap(cause, "Serial link lost")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrLink, wrapped.Code, "Wrap should default to ErrLink code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "No data", New(ErrExport, "No data", "hint").Short())
	assert.Equal(t, "Cannot open port: busy",
		WrapWithCode(errors.New("busy"), ErrConnect, "Cannot open port", "hint").Short())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Summary(nil))
	assert.Equal(t, "plain", Summary(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapWithCode(errors.New("eof"), ErrLink, "Link lost", ""))
	assert.Equal(t, "Link lost: eof", Summary(wrapped))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrLink))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.True(t, IsCode(fmt.Errorf("ctx: %w", err), ErrConfig))
}
