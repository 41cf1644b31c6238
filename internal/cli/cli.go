// Package cli implements the railmacro command-line interface.
//
// # Commands
//
//   - render: draw the railroad diagram of macro declarations
//   - annotate: splice diagrams into annotated macros of Rust sources
//   - tree: dump the diagram tree after a lowering stage
//   - cache: manage the diagram cache
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging and
// --config to point at a railmacro.toml; without it the nearest one above
// the working directory is used.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/railmacro/pkg/buildinfo"
	"github.com/matzehuels/railmacro/pkg/cache"
	"github.com/matzehuels/railmacro/pkg/config"
	"github.com/matzehuels/railmacro/pkg/observability"
	"github.com/matzehuels/railmacro/pkg/pipeline"
	"github.com/matzehuels/railmacro/pkg/splice"
)

// appName is the application name used for display.
const appName = "railmacro"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config

	// labels generates fallback labels; nil draws random ones.
	labels splice.LabelGenerator
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline and
// cache events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "railmacro draws railroad diagrams of macro_rules! macros",
		Long: `railmacro turns the matcher side of a macro_rules! declaration into a
railroad diagram, encodes it as an SVG data URI and splices it into the
macro's documentation.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: nearest "+config.FileName+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.annotateCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault(".")
	}
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return nil
}

func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		return &config.Config{}
	}
	return c.cfg
}

// pipelineOptions merges command flags with the config file.
func (c *CLI) pipelineOptions(flags pipeline.Options) pipeline.Options {
	opts := flags
	c.config().Apply(&opts)
	opts.Logger = c.Logger
	opts.Labels = c.labels
	return opts
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	store, keyer := c.newCache(ctx, noCache)
	return pipeline.NewRunner(store, keyer, c.Logger)
}

// newCache picks the backend: none, Redis when configured and reachable,
// otherwise the file cache. Cache setup problems never fail a command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer) {
	cfg := c.config().Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err == nil {
			var keyer cache.Keyer
			if cfg.Redis.Prefix != "" {
				keyer = cache.NewScopedKeyer(nil, cfg.Redis.Prefix)
			}
			return rc, keyer
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "error", err)
	}

	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}
