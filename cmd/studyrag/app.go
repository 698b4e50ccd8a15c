package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/oakbridge-labs/studyrag/internal/embedding/local"
	"github.com/oakbridge-labs/studyrag/internal/embedding/remote"
	"github.com/oakbridge-labs/studyrag/internal/embedding/resolver"
	"github.com/oakbridge-labs/studyrag/internal/index"
	"github.com/oakbridge-labs/studyrag/internal/metrics"
	"github.com/oakbridge-labs/studyrag/internal/ocr"
	"github.com/oakbridge-labs/studyrag/internal/search"
	"github.com/oakbridge-labs/studyrag/internal/settings"
	"github.com/oakbridge-labs/studyrag/internal/store"
)

// app bundles the collaborators every subcommand needs, built fresh per
// invocation so the resolver's per-build local-to-remote downgrade never
// leaks across separate CLI calls.
type app struct {
	resolver *resolver.Resolver
	store    *store.Store
	builder  *index.Builder
	search   *search.Engine
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func newApp(logger *slog.Logger) (*app, error) {
	settingsProvider, err := settings.LoadFileConfig(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	idxStore, err := store.New(indexDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}

	metricsInstance := metrics.NewMetrics()

	localEngine := local.NewEngine(local.DefaultNativeEngine, logger)
	remoteClient := remote.NewClient(logger)
	modelDir, err := os.UserCacheDir()
	if err != nil {
		modelDir = os.TempDir()
	}
	resolverInstance := resolver.New(
		settingsProvider,
		localEngine,
		remoteClient,
		local.HostCapability{},
		os.DirFS("."),
		"models/qwen3-embedding.gguf",
		modelDir,
		metricsInstance,
		logger,
	)

	ocrStep := ocr.New(metricsInstance, logger)
	builder := index.New(resolverInstance, idxStore, ocrStep, index.DefaultPDFRenderer, settingsProvider, metricsInstance, logger)
	searchEngine := search.New(resolverInstance, idxStore, metricsInstance, logger)

	return &app{
		resolver: resolverInstance,
		store:    idxStore,
		builder:  builder,
		search:   searchEngine,
		metrics:  metricsInstance,
		logger:   logger,
	}, nil
}
