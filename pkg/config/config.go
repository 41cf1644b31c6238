// Package config loads railmacro.toml project settings.
//
// A config file sets project-wide defaults for the CLI; command-line flags
// override it. Example:
//
//	keep_internal = false
//	fold = true
//	legend = true
//	title = ""
//
//	[theme]
//	stroke = "#333333"
//	font_size = 13
//
//	[cache]
//	dir = ".railmacro-cache"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	prefix = "myproject:"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/railmacro/pkg/cache"
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/pipeline"
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

// FileName is the config file looked up by [Find].
const FileName = "railmacro.toml"

// Config is the decoded config file.
type Config struct {
	KeepInternal bool `toml:"keep_internal"`

	// Fold is nil when the file does not mention it.
	Fold *bool `toml:"fold"`

	// Legend is nil when the file does not mention it.
	Legend *bool `toml:"legend"`

	Title   string `toml:"title"`
	NoTitle bool   `toml:"no_title"`

	Theme styles.Theme `toml:"theme"`
	Cache CacheConfig  `toml:"cache"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Disabled bool `toml:"disabled"`

	// Dir overrides the file cache directory. Relative paths are resolved
	// against the config file's directory.
	Dir string `toml:"dir"`

	// Redis enables the Redis backend when Addr is set.
	Redis cache.RedisConfig `toml:"redis"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, rmerrors.Wrap(rmerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, rmerrors.Wrap(rmerrors.ErrCodeInvalidConfig, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, rmerrors.New(rmerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads the nearest railmacro.toml at or above startDir.
// Without one it returns an empty config.
func LoadDefault(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Config{}, nil
	}
	return Load(path)
}

// Find walks up from startDir to locate railmacro.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	t := c.Theme
	for name, v := range map[string]float64{
		"theme.stroke_width": t.StrokeWidth,
		"theme.font_size":    t.FontSize,
		"theme.char_width":   t.CharWidth,
	} {
		if v < 0 {
			return rmerrors.New(rmerrors.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	if c.Title != "" && c.NoTitle {
		return rmerrors.New(rmerrors.ErrCodeInvalidConfig, "title and no_title are mutually exclusive")
	}
	if c.Cache.Redis.DB < 0 {
		return rmerrors.New(rmerrors.ErrCodeInvalidConfig, "cache.redis.db must not be negative")
	}
	return nil
}

// Apply copies the config onto opts. Fields already set in opts win, so
// flags parsed into opts before Apply override the file.
func (c *Config) Apply(opts *pipeline.Options) {
	opts.KeepInternal = opts.KeepInternal || c.KeepInternal
	if c.Fold != nil && !*c.Fold {
		opts.NoFold = true
	}
	if c.Legend != nil && !*c.Legend {
		opts.NoLegend = true
	}
	if opts.Title == "" && !opts.NoTitle {
		opts.Title = c.Title
		opts.NoTitle = c.NoTitle
	}
	opts.Theme = opts.Theme.Merge(c.Theme)
}
