package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Save controls how the contact file is written back.
type Save struct {
	// Overwrite replaces the target in place. When false, the previous file
	// is renamed to <file>.old before the new content is written.
	Overwrite bool `toml:"overwrite"`
}

// UI contains front-end preferences.
type UI struct {
	Language    string `toml:"language"`
	DefaultFile string `toml:"default_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Settings is the on-disk user configuration.
type Settings struct {
	Save    Save    `toml:"save"`
	UI      UI      `toml:"ui"`
	Logging Logging `toml:"log"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Save:    Save{Overwrite: DefaultOverwrite},
		UI:      UI{Language: DefaultLanguage},
		Logging: Logging{Level: DefaultLogLevel},
	}
}

// DefaultSettingsPath returns the platform-specific settings file location.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName), nil
}

// LoadSettings reads the TOML file at path on top of the defaults.
// An empty path selects DefaultSettingsPath. A missing file is not an error;
// the returned bool reports whether a file was read.
func LoadSettings(path string) (Settings, bool, error) {
	s := DefaultSettings()

	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return s, false, err
		}
		path = p
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, false, nil
		}
		return s, false, fmt.Errorf("%s: %w", ErrSettingsOpen, err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewDecoder(f).Decode(&s); err != nil {
		return s, false, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}

	s.normalize()
	if err := s.Validate(); err != nil {
		return s, true, err
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyFile, path,
		LogKeyOverwrite, s.Save.Overwrite)
	return s, true, nil
}

func (s *Settings) normalize() {
	s.UI.Language = strings.ToLower(strings.TrimSpace(s.UI.Language))
	if s.UI.Language == "" {
		s.UI.Language = DefaultLanguage
	}
	s.UI.DefaultFile = strings.TrimSpace(s.UI.DefaultFile)
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	if s.Logging.Level == "" {
		s.Logging.Level = DefaultLogLevel
	}
}

// Validate rejects values the application cannot honor.
func (s Settings) Validate() error {
	switch s.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%s: %q", ErrLogLevel, s.Logging.Level)
	}
	if !slices.Contains(SupportedLanguages, s.UI.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.UI.Language)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (s Settings) SlogLevel() slog.Level {
	switch s.Logging.Level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteSample writes the default settings as TOML to path.
// An existing file is only replaced when force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %s", ErrSettingsExists, path)
		}
	}

	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	if err := os.WriteFile(path, data, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	return nil
}
