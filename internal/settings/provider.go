// Package settings defines the read/observe contract the indexing and
// search subsystems use to reach host-owned configuration. The core never
// persists settings itself; a host-provided Provider backs this interface
// (a key/value store, a config file watcher, whatever fits the embedding
// application).
package settings

import "github.com/oakbridge-labs/studyrag/pkg/models"

// Provider is the settings collaborator consumed by the embedding backend
// resolver and the OCR step. Implementations must be safe for concurrent
// reads; Watch may be a no-op that never fires for hosts without live
// config reload.
type Provider interface {
	// EmbeddingMode reports the configured local/remote policy.
	EmbeddingMode() models.EmbeddingMode

	// EmbeddingConfig reports the remote embedding endpoint, if any.
	EmbeddingConfig() models.EmbeddingConfig

	// VisionProvider reports the provider used for OCR page recognition.
	VisionProvider() models.Provider

	// Watch registers a callback invoked whenever settings change.
	// Returns an unsubscribe function. Implementations that do not support
	// live reload may return a no-op unsubscribe and never invoke fn.
	Watch(fn func()) (unsubscribe func())
}
