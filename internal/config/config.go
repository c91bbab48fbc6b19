package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "pertloom.toml"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings read from pertloom.toml.
type Config struct {
	DataDir     string `toml:"data_dir"`
	FilePattern string `toml:"file_pattern"` // must contain one %d
	StateDir    string `toml:"state_dir"`
	Color       bool   `toml:"color"`
	SaveRuns    bool   `toml:"save_runs"`
	ViewerPort  int    `toml:"viewer_port"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:     "Fichiers_a_test",
		FilePattern: "table%d.txt",
		StateDir:    ".pertloom",
		Color:       true,
		SaveRuns:    false,
		ViewerPort:  7272,
	}
}

// Load reads path on top of the defaults. An empty path means DefaultPath,
// which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			slog.Debug("no config file, using defaults", "path", path)
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if strings.Count(c.FilePattern, "%d") != 1 {
		return fmt.Errorf("%w: file_pattern %q must contain exactly one %%d", ErrInvalidConfig, c.FilePattern)
	}
	if c.ViewerPort <= 0 || c.ViewerPort > 65535 {
		return fmt.Errorf("%w: viewer_port %d out of range", ErrInvalidConfig, c.ViewerPort)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%w: state_dir is empty", ErrInvalidConfig)
	}
	return nil
}

// FileFor returns the name of test file n according to FilePattern.
func (c Config) FileFor(n int) string {
	return fmt.Sprintf(c.FilePattern, n)
}

// Encode writes the settings as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
