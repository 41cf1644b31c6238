package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every pipeline and cache event to a logger at debug level.
// Failures are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that log to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) done(stage, name string, d time.Duration, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(stage+" failed", "macro", name, "error", err)
		return
	}
	h.Logger.Debug(stage+" done", append([]any{"macro", name, "took", d.Round(time.Microsecond)}, kv...)...)
}

func (h *LogHooks) OnParseStart(_ context.Context, name string) {
	h.Logger.Debug("parse", "macro", name)
}

func (h *LogHooks) OnParseComplete(_ context.Context, name string, rules int, d time.Duration, err error) {
	h.done("parse", name, d, err, "rules", rules)
}

func (h *LogHooks) OnLowerStart(_ context.Context, name string, rules int) {
	h.Logger.Debug("lower", "macro", name, "rules", rules)
}

func (h *LogHooks) OnLowerComplete(_ context.Context, name string, nodes int, d time.Duration, err error) {
	h.done("lower", name, d, err, "nodes", nodes)
}

func (h *LogHooks) OnRenderStart(_ context.Context, name string) {
	h.Logger.Debug("render", "macro", name)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, name string, w, ht float64, d time.Duration, err error) {
	h.done("render", name, d, err, "width", w, "height", ht)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, name string, size int) {
	h.Logger.Debug("encode done", "macro", name, "bytes", size)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
