package local

// NativeEngine is the FFI boundary over a GGUF-format transformer runtime
// (e.g. llama.cpp). It is deliberately narrow: init/embed/release, nothing
// else crosses the boundary. A concrete build wires a real implementation
// (cgo bindings against the vendored inference library) behind this
// interface; the pure-Go fallback below reports itself unavailable so the
// resolver falls back to the remote backend on hosts that were not built
// with the native runtime linked in.
type NativeEngine interface {
	// Loaded reports whether the backend library initialized successfully
	// at process start. This is the "native implementation loaded" gate
	// from the capability probe; it is independent of any specific model
	// file.
	Loaded() bool

	// Init loads the GGUF model at path and returns an opaque handle.
	// ok is false on any load failure (bad path, corrupt file, OOM).
	Init(path string) (handle uintptr, ok bool)

	// Embed runs a single forward pass over text using handle, returning
	// the last-token-pooled hidden state. ok is false on tokenizer,
	// decode, or context-allocation failure.
	Embed(handle uintptr, text string) (vector []float32, ok bool)

	// Release tears down a handle returned by Init. Safe to call once per
	// successful Init; a no-op on the zero handle.
	Release(handle uintptr)
}

// unavailableEngine is the default NativeEngine: the process was not built
// with the native GGUF runtime linked in. Loaded always reports false so
// the capability probe fails closed and the resolver never attempts a
// local call.
type unavailableEngine struct{}

func (unavailableEngine) Loaded() bool { return false }

func (unavailableEngine) Init(string) (uintptr, bool) { return 0, false }

func (unavailableEngine) Embed(uintptr, string) ([]float32, bool) { return nil, false }

func (unavailableEngine) Release(uintptr) {}

// DefaultNativeEngine is the fallback used when no build-tagged native
// implementation registers itself. Real deployments that link the GGUF
// runtime assign their own NativeEngine to this variable during process
// init, or pass it to NewEngine directly.
var DefaultNativeEngine NativeEngine = unavailableEngine{}
