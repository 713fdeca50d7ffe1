package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"
)

// now is swapped in tests.
var now = time.Now

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a string with their values.
// Supported variables:
//   - ${USER} - current username
//   - ${HOME} - user's home directory
//   - ${TMP}  - the OS temp directory
//   - ${DATE} - today's date as YYYY-MM-DD
func Expand(s string) string {
	if s == "" || !strings.Contains(s, "${") {
		return s
	}

	result := s

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${HOME}") {
		home, _ := os.UserHomeDir()
		result = strings.ReplaceAll(result, "${HOME}", home)
	}

	if strings.Contains(result, "${TMP}") {
		result = strings.ReplaceAll(result, "${TMP}", os.TempDir())
	}

	if strings.Contains(result, "${DATE}") {
		result = strings.ReplaceAll(result, "${DATE}", now().Format("2006-01-02"))
	}

	return result
}

// ExpandPath applies Expand and then ExpandTilde.
func ExpandPath(path string) string {
	return ExpandTilde(Expand(path))
}

func getUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
