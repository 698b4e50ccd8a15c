package models

// EmbeddingMode selects the policy the backend resolver uses to choose
// between the local engine and the remote embedding service.
type EmbeddingMode string

const (
	// EmbeddingModeLocalPreferred tries the local engine first and falls
	// back to remote per-call.
	EmbeddingModeLocalPreferred EmbeddingMode = "local_preferred"
	// EmbeddingModeRemoteOnly never attempts the local engine, regardless
	// of device capability.
	EmbeddingModeRemoteOnly EmbeddingMode = "remote_only"
)

// EmbeddingConfig describes a remote embeddings endpoint. It is valid iff
// all three fields are non-empty.
type EmbeddingConfig struct {
	APIURL string `yaml:"api_url" json:"api_url"`
	APIKey string `yaml:"api_key" json:"api_key"`
	Model  string `yaml:"model" json:"model"`
}

// Valid reports whether every field required to make a remote call is set.
func (c EmbeddingConfig) Valid() bool {
	return c.APIURL != "" && c.APIKey != "" && c.Model != ""
}

// EmbeddingBackendState is the resolved outcome of applying an
// EmbeddingMode against local capability and remote configuration.
type EmbeddingBackendState struct {
	UseLocal     bool
	RemoteConfig *EmbeddingConfig
}
