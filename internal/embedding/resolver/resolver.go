// Package resolver implements the embedding backend resolver (C7): it
// decides, once per build, whether to use the local engine or the remote
// client, materializing the local model asset on first use, and then
// mediates every subsequent embed call through that decision with
// per-call fallback.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/oakbridge-labs/studyrag/internal/embedding/local"
	"github.com/oakbridge-labs/studyrag/internal/embedding/remote"
	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/internal/settings"
	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// ErrUnconfigured is returned by Resolve when neither the local engine nor
// a valid remote config is usable.
var ErrUnconfigured = errors.New("embedding model unconfigured")

const queryPrefix = "Instruct: Given a web search query, retrieve relevant passages that answer the query\nQuery:"

// Resolver mediates embedding calls for a single build. Callers construct
// one Resolver per buildIndex invocation (or per query) so that the
// per-call local-to-remote downgrade in Resolve/Embed applies only for
// that build's lifetime, per the "remainder of the build" rule in §4.7.
type Resolver struct {
	settings     settings.Provider
	localEngine  *local.Engine
	remoteClient *remote.Client
	capability   local.Capability
	assets       fs.FS
	assetName    string
	modelDir     string
	metrics      *metrics.Metrics
	logger       *slog.Logger

	mu           sync.Mutex
	resolved     bool
	useLocal     bool
	remoteConfig *models.EmbeddingConfig
	modelPath    string
}

// New builds a Resolver. assets/assetName/modelDir describe where the
// embedded local model file lives and where it should be materialized to
// on first use; see local.Materialize.
func New(
	settingsProvider settings.Provider,
	localEngine *local.Engine,
	remoteClient *remote.Client,
	capability local.Capability,
	assets fs.FS,
	assetName string,
	modelDir string,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		settings:     settingsProvider,
		localEngine:  localEngine,
		remoteClient: remoteClient,
		capability:   capability,
		assets:       assets,
		assetName:    assetName,
		modelDir:     modelDir,
		metrics:      m,
		logger:       logger.With("component", "embedding-resolver"),
	}
}

// Resolve applies the decision rule in §4.7 exactly once for this
// Resolver's lifetime and caches the outcome; later calls return the
// cached state (as mutated by any per-call downgrade in Embed).
func (r *Resolver) Resolve() (models.EmbeddingBackendState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked()
}

func (r *Resolver) resolveLocked() (models.EmbeddingBackendState, error) {
	if r.resolved {
		return r.stateLocked(), nil
	}

	policy := r.settings.EmbeddingMode()
	remoteConfig := r.settings.EmbeddingConfig()
	var validRemote *models.EmbeddingConfig
	if remoteConfig.Valid() {
		validRemote = &remoteConfig
	}

	useLocal := false
	if policy == models.EmbeddingModeLocalPreferred && r.localEngine.IsAvailable(r.capability) {
		path, err := local.Materialize(r.assets, r.assetName, r.modelDir)
		if err != nil {
			r.logger.Warn("local model materialization failed, falling back", "error", err)
		} else {
			useLocal = true
			r.modelPath = path
		}
	}

	if !useLocal && validRemote == nil {
		return models.EmbeddingBackendState{}, ErrUnconfigured
	}

	r.useLocal = useLocal
	r.remoteConfig = validRemote
	r.resolved = true
	return r.stateLocked(), nil
}

func (r *Resolver) stateLocked() models.EmbeddingBackendState {
	return models.EmbeddingBackendState{UseLocal: r.useLocal, RemoteConfig: r.remoteConfig}
}

// Embed resolves the backend if needed, then embeds text. When isQuery is
// true, text is wrapped with the query-side instruction prefix before
// being passed to either backend; chunk texts are passed verbatim. On a
// local failure, useLocal is downgraded to false for the remainder of
// this Resolver's lifetime and the call retries against remote; if no
// remote is configured the call fails.
func (r *Resolver) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	r.mu.Lock()
	state, err := r.resolveLocked()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	useLocal := state.UseLocal
	remoteConfig := state.RemoteConfig
	modelPath := r.modelPath
	r.mu.Unlock()

	input := text
	if isQuery {
		input = queryPrefix + text
	}

	if useLocal {
		start := time.Now()
		vector, ok := r.localEngine.Embed(modelPath, input)
		if ok {
			r.metrics.RecordEmbed("local", "success", time.Since(start))
			return vector, nil
		}
		r.metrics.RecordEmbed("local", "error", time.Since(start))
		r.logger.Warn("local embedding failed, downgrading to remote for remainder of build")
		r.mu.Lock()
		r.useLocal = false
		r.mu.Unlock()
		if remoteConfig == nil {
			return nil, fmt.Errorf("local embedding failed and no remote configured")
		}
	}

	if remoteConfig == nil {
		return nil, ErrUnconfigured
	}
	start := time.Now()
	vector, ok := r.remoteClient.Embed(ctx, input, *remoteConfig)
	if !ok {
		r.metrics.RecordEmbed("remote", "error", time.Since(start))
		return nil, fmt.Errorf("remote embedding failed")
	}
	r.metrics.RecordEmbed("remote", "success", time.Since(start))
	return vector, nil
}
