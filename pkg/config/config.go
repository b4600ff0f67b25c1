// Package config loads rebang's layered configuration: embedded defaults,
// then config files, then REBANG_* environment variables.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Config is rebang's resolved configuration.
type Config struct {
	// Root is the install root. Empty means resolve from environment or cwd
	// (see pkg/paths).
	Root string `koanf:"root" toml:"root"`

	Patch PatchConfig `koanf:"patch" toml:"patch"`
	Log   LogConfig   `koanf:"log" toml:"log"`
}

// PatchConfig controls the tree walk.
type PatchConfig struct {
	// Exclude holds doublestar globs, relative to each scan root, whose
	// matches the patcher never visits.
	Exclude []string `koanf:"exclude" toml:"exclude"`
}

// LogConfig controls log output.
type LogConfig struct {
	// File enables the state-directory log file in addition to stderr.
	File bool `koanf:"file" toml:"file"`
}

// Load builds the configuration: embedded defaults, then each existing file
// from p.ConfigFilePaths() in order, then REBANG_* environment variables.
func Load(p paths.Paths) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	for _, path := range p.ConfigFilePaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	err := k.Load(env.Provider("REBANG_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "REBANG_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}

// Default returns the built-in defaults without touching files or env.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal defaults")
	}
	return &cfg, nil
}

// DefaultTOML renders the built-in defaults as TOML, for `rebang genconfig`.
func DefaultTOML() (string, error) {
	cfg, err := Default()
	if err != nil {
		return "", err
	}
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to marshal defaults")
	}
	return string(out), nil
}
