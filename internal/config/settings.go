// Package config loads CLI settings and declarative sweep files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/agentic-research/nestly/internal/logging"
)

const (
	// EnvPrefix is the prefix of environment overrides, e.g. NESTLY_CONTROL_NAME.
	EnvPrefix = "NESTLY_"

	DefaultControlName = "control.json"
	DefaultIndent      = 2

	maxFileSize = 1024 * 1024 // 1MB
)

// Settings are the tool-wide options that are not part of a sweep.
type Settings struct {
	ControlName string         `koanf:"control_name"`
	Indent      int            `koanf:"indent"`
	Log         logging.Config `koanf:"log"`
}

// LoadSettings loads settings from an optional YAML file, then applies
// environment overrides.
//
// Precedence (highest to lowest):
//  1. Environment variables (NESTLY_CONTROL_NAME, NESTLY_LOG_LEVEL, ...)
//  2. The YAML file at path, when path is non-empty
//  3. Defaults
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readLimited(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
	}

	// NESTLY_LOG_LEVEL -> log.level, NESTLY_CONTROL_NAME -> control_name
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if rest, ok := strings.CutPrefix(key, "log_"); ok {
			return "log." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	applyDefaults(&s, k)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return &s, nil
}

func applyDefaults(s *Settings, k *koanf.Koanf) {
	if s.ControlName == "" {
		s.ControlName = DefaultControlName
	}
	if !k.Exists("indent") {
		s.Indent = DefaultIndent
	}
	def := logging.NewDefaultConfig()
	if s.Log.Level == "" {
		s.Log.Level = def.Level
	}
	if s.Log.Format == "" {
		s.Log.Format = def.Format
	}
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	if strings.ContainsAny(s.ControlName, `/\`) {
		return fmt.Errorf("control_name %q must be a file name, not a path", s.ControlName)
	}
	if s.Indent < 0 {
		return fmt.Errorf("indent must be >= 0, got %d", s.Indent)
	}
	return s.Log.Validate()
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%s is too large (%d bytes, max %d)", path, info.Size(), maxFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}
