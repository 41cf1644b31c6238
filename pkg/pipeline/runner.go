package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/railmacro/pkg/cache"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/grammar/transform"
	"github.com/matzehuels/railmacro/pkg/observability"
	"github.com/matzehuels/railmacro/pkg/payload"
	"github.com/matzehuels/railmacro/pkg/splice"
	"github.com/matzehuels/railmacro/pkg/splice/rustsrc"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// payloadEntry is the cached form of a built diagram.
type payloadEntry struct {
	Name   string  `msgpack:"name"`
	SVG    string  `msgpack:"svg"`
	Rules  int     `msgpack:"rules"`
	Nodes  int     `msgpack:"nodes"`
	Width  float64 `msgpack:"width"`
	Height float64 `msgpack:"height"`
}

// Execute builds the diagram payload of src, consulting the cache first.
// Cache failures are logged and never fail the run.
func (r *Runner) Execute(ctx context.Context, src string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := r.Keyer.PayloadKey(cache.Hash([]byte(src)), opts.PayloadKeyOpts())
	if res, ok := r.cachedPayload(ctx, key); ok {
		r.Logger.Debug("payload from cache", "name", res.Name, "bytes", res.Stats.Size)
		return res, nil
	}

	res, err := Build(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	data, err := msgpack.Marshal(payloadEntry{
		Name:   res.Name,
		SVG:    res.SVG,
		Rules:  res.Stats.Rules,
		Nodes:  res.Stats.Nodes,
		Width:  res.Stats.Width,
		Height: res.Stats.Height,
	})
	if err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLPayload); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "payload", len(data))
		}
	}

	r.Logger.Info("built diagram",
		"name", res.Name,
		"rules", res.Stats.Rules,
		"bytes", res.Stats.Size)
	return res, nil
}

func (r *Runner) cachedPayload(ctx context.Context, key string) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "payload")
		return nil, false
	}

	var entry payloadEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		// Undecodable entries are recomputed and overwritten.
		hooks.OnCacheMiss(ctx, "payload")
		return nil, false
	}
	hooks.OnCacheHit(ctx, "payload")

	start := time.Now()
	p := payload.Encode(entry.SVG)
	return &Result{
		Name:    entry.Name,
		SVG:     entry.SVG,
		Payload: p,
		Stats: Stats{
			Rules:      entry.Rules,
			Nodes:      entry.Nodes,
			Width:      entry.Width,
			Height:     entry.Height,
			Size:       len(p.DataURI()),
			EncodeTime: time.Since(start),
		},
		CacheInfo: CacheInfo{PayloadHit: true},
	}, true
}

// Tree parses src and returns its diagram tree after stage, with caching.
// The bool reports a cache hit.
func (r *Runner) Tree(ctx context.Context, src string, opts Options, stage transform.Stage) (grammar.Tree, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.TreeKey(cache.Hash([]byte(src)), opts.TreeKeyOpts(stage))

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var t grammar.Tree
		if err := msgpack.Unmarshal(data, &t); err == nil && grammar.Validate(t.Root) == nil {
			observability.Cache().OnCacheHit(ctx, "tree")
			return t, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "tree")

	m, err := Parse(src)
	if err != nil {
		return grammar.Tree{}, false, fmt.Errorf("parse: %w", opts.Origin.Locate(err))
	}
	t, err := Lower(m, opts.TransformOptions(), stage)
	if err != nil {
		return grammar.Tree{}, false, fmt.Errorf("lower: %w", err)
	}

	if data, err := msgpack.Marshal(t); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLTree); err == nil {
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		}
	}
	return t, false, nil
}

// Annotate builds the diagram of one scanned item and splices it into the
// item's attributes. A label argument on the annotation takes precedence
// over opts.Label. It returns the new declaration and the label used.
func (r *Runner) Annotate(ctx context.Context, item rustsrc.Item, opts Options) (splice.Declaration, string, error) {
	r.applyLogger(&opts)
	label, err := splice.ParseLabelArg(item.LabelArg)
	if err != nil {
		return splice.Declaration{}, "", fmt.Errorf("macro %s: %w", item.Name, err)
	}
	if label != "" {
		opts.Label = label
	}

	res, err := r.Execute(ctx, item.Source, opts)
	if err != nil {
		return splice.Declaration{}, "", fmt.Errorf("macro %s: %w", item.Name, err)
	}

	decl, used := splice.Splice(item.Declaration(), res.Payload, splice.Options{
		Label:  opts.Label,
		Labels: opts.Labels,
	})
	r.Logger.Debug("spliced diagram", "macro", item.Name, "label", used, "attrs", len(decl.Attrs))
	return decl, used, nil
}

// AnnotateSource rewrites every annotated macro in a Rust source file and
// returns the new source with the number of annotated macros.
//
// A macro that fails keeps its original text and the others are still
// annotated, so the returned source is usable even when err is non-nil.
// The error joins the failures, with syntax positions relative to src.
func (r *Runner) AnnotateSource(ctx context.Context, src string, opts Options) (string, int, error) {
	count := 0
	out, err := rustsrc.Rewrite(src, func(it rustsrc.Item) (splice.Declaration, error) {
		if err := ctx.Err(); err != nil {
			return splice.Declaration{}, err
		}
		o := opts
		o.Origin = Origin{File: src, Offset: it.AttrsEnd}
		decl, _, err := r.Annotate(ctx, it, o)
		if err != nil {
			return splice.Declaration{}, err
		}
		count++
		return decl, nil
	})
	return out, count, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
