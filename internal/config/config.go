package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const defaultBreakTimeMinutes = 60

// Config holds user preferences. Keys other than the ones daybook knows
// about are kept in extra so an edited config file round-trips intact.
type Config struct {
	BreakTimeMinutes int

	extra map[string]any
}

func DefaultConfig() *Config {
	return &Config{
		BreakTimeMinutes: defaultBreakTimeMinutes,
		extra:            map[string]any{},
	}
}

func DaybookDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".daybook"), nil
}

func ConfigPath() (string, error) {
	dir, err := DaybookDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := DaybookDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "daybook.sqlite"), nil
}

func SessionPath() (string, error) {
	dir, err := DaybookDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func ErrorLogPath() (string, error) {
	dir, err := DaybookDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "errors.log"), nil
}

func EnsureDirectories() error {
	dir, err := DaybookDir()
	if err != nil {
		return err
	}

	// Create main directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create db subdirectory
	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return LoadFile(configPath)
}

// LoadFile reads a config file, merging its keys over the defaults. A file
// that cannot be read or parsed yields the defaults; preferences are not
// worth refusing to start over.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return cfg, nil
	}

	for key, value := range raw {
		switch key {
		case "break_time_minutes":
			if n, ok := value.(int64); ok {
				cfg.BreakTimeMinutes = int(n)
			}
		default:
			cfg.extra[key] = value
		}
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, cfg)
}

func SaveFile(path string, cfg *Config) error {
	raw := map[string]any{}
	for key, value := range cfg.extra {
		raw[key] = value
	}
	raw["break_time_minutes"] = cfg.BreakTimeMinutes

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(raw)
}
