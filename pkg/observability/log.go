package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug line to Logger.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to l, or to the default logger when l
// is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

// Register installs h for all three hook categories.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnExtractStart(_ context.Context, name string) {
	h.Logger.Debug("extract start", "document", name)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, name string, records, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("extract failed", "document", name, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("extract done", "document", name, "records", records, "edges", edges, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, direction string, nodes int) {
	h.Logger.Debug("layout start", "direction", direction, "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, direction string, crossings int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("layout failed", "direction", direction, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("layout done", "direction", direction, "crossings", crossings, "duration", d)
}

func (h *LogHooks) OnPatchStart(_ context.Context, name string, records int) {
	h.Logger.Debug("patch start", "document", name, "records", records)
}

func (h *LogHooks) OnPatchComplete(_ context.Context, name string, patched, skipped int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("patch failed", "document", name, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("patch done", "document", name, "patched", patched, "skipped", skipped, "duration", d)
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

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
