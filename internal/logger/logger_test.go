package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{in: "", want: zerolog.InfoLevel},
		{in: "info", want: zerolog.InfoLevel},
		{in: "DEBUG", want: zerolog.DebugLevel},
		{in: "warning", want: zerolog.WarnLevel},
		{in: " error ", want: zerolog.ErrorLevel},
		{in: "loud", want: zerolog.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_WritesToBuffer(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	closeFn, err := Setup(Options{Level: "debug", Out: &buf, NoColor: true})
	require.NoError(t, err)
	defer closeFn()

	Named("session").Debug("opened %s", "/dev/ttyUSB0")
	assert.Contains(t, buf.String(), "opened /dev/ttyUSB0")
	assert.Contains(t, buf.String(), "component=session")
}

func TestSetup_LevelFilters(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	closeFn, err := Setup(Options{Level: "warn", Out: &buf, NoColor: true})
	require.NoError(t, err)
	defer closeFn()

	l := Default()
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_File(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	path := filepath.Join(t.TempDir(), "sensormon.log")
	closeFn, err := Setup(Options{File: path})
	require.NoError(t, err)

	Default().Error("link lost")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "link lost")
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(Options{Level: "verbose", Out: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Debug("debug %d", 1)
	l.Warn("dropped %d lines", 3)

	msgs := l.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug 1"}, msgs[0])
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("warn", "3 lines"))

	l.Clear()
	assert.Empty(t, l.Messages())
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Info("line %d", j)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, l.Messages(), 400)
}
