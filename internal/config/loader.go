package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns the configuration path next to the executable.
// It falls back to the working directory when the executable cannot be located.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), FileName)
}

// Exists reports whether a configuration document is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// Load reads the document at path. A missing document yields the defaults
// without touching the filesystem. Paths are kept as written; see BinDir.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	return decode(path, data)
}

// Save writes cfg to path, creating parent directories as needed.
// JSON output keeps non-ASCII text literal and uses two-space indentation.
func Save(path string, cfg *Config) error {
	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// EnsureExists writes the defaults to path when no document is there yet.
// It reports whether a new document was created.
func EnsureExists(path string) (bool, error) {
	if Exists(path) {
		return false, nil
	}
	if err := Save(path, Default()); err != nil {
		return false, err
	}

	return true, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decode(path string, data []byte) (*Config, error) {
	var cfg Config

	if isYAML(path) {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if err := validateValue(raw); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}

		return &cfg, nil
	}

	if err := Validate(data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func encode(path string, cfg *Config) ([]byte, error) {
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}

		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return buf.Bytes(), nil
}
