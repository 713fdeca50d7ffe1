package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	t.Setenv("USER", "ada")
	home, _ := os.UserHomeDir()

	orig := now
	now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "no variables", input: "/var/log/sensormon.log", expected: "/var/log/sensormon.log"},
		{name: "user", input: "/data/${USER}/runs", expected: "/data/ada/runs"},
		{name: "home", input: "${HOME}/captures", expected: home + "/captures"},
		{name: "date", input: "exports/${DATE}", expected: "exports/2026-10-19"},
		{name: "tmp", input: "${TMP}/locks", expected: os.TempDir() + "/locks"},
		{name: "unknown left alone", input: "${NOPE}/x", expected: "${NOPE}/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.input))
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "data"), ExpandTilde("~/data"))
	assert.Equal(t, "~other/data", ExpandTilde("~other/data"))
	assert.Equal(t, "", ExpandTilde(""))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("USER", "ada")
	assert.Equal(t, filepath.Join(home, "ada.db"), ExpandPath("~/${USER}.db"))
}
