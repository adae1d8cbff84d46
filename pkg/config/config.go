package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/fields"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides: LNEDIT_REPLACE_SAVEBACKUP
// sets replace.savebackup
const EnvPrefix = "LNEDIT_"

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the effective lnedit configuration
type Config struct {
	Root    Root    `koanf:"root"`
	Replace Replace `koanf:"replace"`
	Swap    Swap    `koanf:"swap"`
	Move    Move    `koanf:"move"`
	Output  Output  `koanf:"output"`

	// Source is the user file that was loaded, if any
	Source string `koanf:"-"`
}

// Root configures root-relative suggestions
type Root struct {
	Marker string `koanf:"marker"`
	Path   string `koanf:"path"`
}

// Replace configures the edit command
type Replace struct {
	Atomic       bool   `koanf:"atomic"`
	AllowBroken  bool   `koanf:"allowbroken"`
	SaveBackup   bool   `koanf:"savebackup"`
	BackupSuffix string `koanf:"backupsuffix"`
}

// Swap configures the swap command
type Swap struct {
	Relative bool `koanf:"relative"`
}

// Move configures the move command
type Move struct {
	Relative bool `koanf:"relative"`
}

// Output configures terminal output
type Output struct {
	DumpFormat string `koanf:"dumpformat"`
	Color      string `koanf:"color"`
}

// Default returns the embedded defaults
func Default() *Config {
	cfg, err := load("", false)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration from the embedded defaults, the user file
// and the environment. An empty configFile means the default location,
// which may be absent; an explicit file must exist.
func Load(configFile string) (*Config, error) {
	return load(configFile, true)
}

func load(configFile string, withUser bool) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	source := ""
	if withUser {
		// 2. User file
		path, err := userConfigPath(configFile)
		if err != nil {
			return nil, err
		}
		if path != "" {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
					WithDetail("path", path)
			}
			source = path
		}

		// 3. Environment
		err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.Source = source

	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// userConfigPath returns the file to load, or "" when the default file is
// absent
func userConfigPath(explicit string) (string, error) {
	if explicit != "" {
		path := paths.ExpandHome(explicit)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path).
				WithDetail("path", path)
		}
		return path, nil
	}

	path := paths.ConfigFilePath()
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

func postProcessConfig(cfg *Config) error {
	cfg.Root.Marker = strings.TrimSpace(cfg.Root.Marker)
	if cfg.Root.Marker == "" {
		cfg.Root.Marker = paths.DefaultRootMarker
	}
	cfg.Root.Path = paths.ExpandHome(strings.TrimSpace(cfg.Root.Path))

	if cfg.Replace.BackupSuffix == "" {
		return errors.New(errors.ErrConfigParse, "replace.backupsuffix must not be empty").
			WithDetail("key", "replace.backupsuffix")
	}

	format, err := fields.ParseFormat(cfg.Output.DumpFormat)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "invalid output.dumpformat").
			WithDetail("key", "output.dumpformat")
	}
	cfg.Output.DumpFormat = string(format)

	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
	switch cfg.Output.Color {
	case "":
		cfg.Output.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Newf(errors.ErrConfigParse, "invalid output.color %q (want auto, always or never)", cfg.Output.Color).
			WithDetail("key", "output.color")
	}
	return nil
}

// ToMap flattens the configuration for display
func (c *Config) ToMap() map[string]interface{} {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(map[string]interface{}{
		"root.marker":          c.Root.Marker,
		"root.path":            c.Root.Path,
		"replace.atomic":       c.Replace.Atomic,
		"replace.allowbroken":  c.Replace.AllowBroken,
		"replace.savebackup":   c.Replace.SaveBackup,
		"replace.backupsuffix": c.Replace.BackupSuffix,
		"swap.relative":        c.Swap.Relative,
		"move.relative":        c.Move.Relative,
		"output.dumpformat":    c.Output.DumpFormat,
		"output.color":         c.Output.Color,
	}, "."), nil)
	return k.Raw()
}
