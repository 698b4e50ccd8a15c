// Package local wraps a GGUF-format transformer model behind a small,
// mutex-serialized state machine that produces L2-normalized sentence
// embeddings. It never panics across its call boundary: every failure mode
// collapses to a plain "no embedding" result, logged once at warning
// level.
package local

import (
	"log/slog"
	"math"
	"sync"
)

// Engine is the local embedding backend (C2). Zero value is not usable;
// construct with NewEngine.
type Engine struct {
	mu     sync.Mutex
	engine NativeEngine
	logger *slog.Logger

	loadedPath string
	handle     uintptr
	hasHandle  bool
}

// NewEngine wraps engine (typically local.DefaultNativeEngine, or a
// build-tagged real binding) in the Idle state.
func NewEngine(engine NativeEngine, logger *slog.Logger) *Engine {
	if engine == nil {
		engine = DefaultNativeEngine
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		engine: engine,
		logger: logger.With("component", "local-embedding-engine"),
	}
}

// IsAvailable reports whether the local backend can be used at all, per
// the capability gates in Capability.
func (e *Engine) IsAvailable(cap Capability) bool {
	return IsAvailable(e.engine, cap)
}

// Embed loads modelPath (reloading only if it differs from the currently
// loaded model) and runs one embedding forward pass over text. It returns
// (nil, false) on any failure; calls never propagate a panic and always
// serialize on the engine's internal mutex, so concurrent callers execute
// sequentially rather than racing the model handle.
func (e *Engine) Embed(modelPath, text string) ([]float32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasHandle && e.loadedPath != modelPath {
		e.engine.Release(e.handle)
		e.hasHandle = false
		e.loadedPath = ""
	}

	if !e.hasHandle {
		handle, ok := e.engine.Init(modelPath)
		if !ok {
			e.logger.Warn("local embedding model load failed", "path", modelPath)
			return nil, false
		}
		e.handle = handle
		e.loadedPath = modelPath
		e.hasHandle = true
	}

	vector, ok := e.engine.Embed(e.handle, text)
	if !ok {
		e.logger.Warn("local embedding forward pass failed", "path", modelPath)
		return nil, false
	}

	return normalizeL2(vector), true
}

// Close releases the currently loaded model handle, if any, returning the
// engine to Idle.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasHandle {
		e.engine.Release(e.handle)
		e.hasHandle = false
		e.loadedPath = ""
	}
}

// normalizeL2 scales v to unit L2 norm. A zero vector is returned
// unchanged rather than dividing by zero.
func normalizeL2(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
