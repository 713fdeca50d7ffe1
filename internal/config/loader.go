package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sensormon.yaml"
	// GlobalConfigDir is the directory for the per-user config, under the
	// user config dir (e.g. ~/.config).
	GlobalConfigDir = "sensormon"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path, layering it over the preset it
// names (or the default preset).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sensormon init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sensormon.yaml in current directory
// 3. .sensormon.yaml in parent directories (stops at git root or home)
// 4. <user config dir>/sensormon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		globalConfig := filepath.Join(userDir, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
// The returned path is empty when defaults were used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with the preset
// merged in underneath.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	if name := v.GetString("preset"); name != "" {
		preset, err := Preset(name)
		if err != nil {
			return nil, err
		}
		cfg = preset
	}

	// A file that lists channels replaces the preset's channels outright
	// rather than merging index by index.
	if v.IsSet("channels") {
		cfg.Channels = nil
	}

	setDefaults(v)

	// Durations decode from strings like "1.5s" through viper's default
	// decode hooks.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg.Export.Dir = ExpandPath(cfg.Export.Dir)
	cfg.Archive.Path = ExpandPath(cfg.Archive.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	cfg.Lock.Dir = ExpandPath(cfg.Lock.Dir)

	return cfg, nil
}

// setDefaults registers defaults for keys no preset varies.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("log.level", "info")
	v.SetDefault("export.dpi", 300)
	v.SetDefault("archive.batch_size", 20)
	v.SetDefault("archive.flush_interval", "5s")
}

// ApplyOverrides applies command-line overrides on top of a loaded config.
// Empty values leave the config untouched.
func ApplyOverrides(cfg *Config, port string, baud int) {
	if port != "" {
		cfg.Source.Serial.Port = port
	}
	if baud > 0 {
		cfg.Source.Serial.Baud = baud
	}
}
