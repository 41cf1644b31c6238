// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional: the pipeline calls the registered hooks
// around each stage and the defaults do nothing. The CLI registers
// [LogHooks] when running with --verbose.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnParseStart(ctx, name)
//	// ... do parsing ...
//	observability.Pipeline().OnParseComplete(ctx, name, rules, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the diagram pipeline.
type PipelineHooks interface {
	// Parse events. name is the macro name, empty for a bare clause list.
	OnParseStart(ctx context.Context, name string)
	OnParseComplete(ctx context.Context, name string, rules int, duration time.Duration, err error)

	// Lowering events. nodes is the size of the final tree.
	OnLowerStart(ctx context.Context, name string, rules int)
	OnLowerComplete(ctx context.Context, name string, nodes int, duration time.Duration, err error)

	// Render events.
	OnRenderStart(ctx context.Context, name string)
	OnRenderComplete(ctx context.Context, name string, width, height float64, duration time.Duration, err error)

	// OnEncodeComplete reports the size of the finished payload in bytes.
	OnEncodeComplete(ctx context.Context, name string, size int)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string)                                             {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error)               {}
func (NoopPipelineHooks) OnLowerStart(context.Context, string, int)                                        {}
func (NoopPipelineHooks) OnLowerComplete(context.Context, string, int, time.Duration, error)               {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, float64, float64, time.Duration, error) {}
func (NoopPipelineHooks) OnEncodeComplete(context.Context, string, int)                                    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
