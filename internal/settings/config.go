package settings

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// FileConfig is a YAML-file-backed Provider. It is the default host
// implementation: load once at startup, then Reload() on a file-change
// notification, either from the caller or from WatchFile.
type FileConfig struct {
	mu   sync.RWMutex
	path string
	data configData

	watchersMu sync.Mutex
	watchers   []func()
}

type configData struct {
	EmbeddingMode   models.EmbeddingMode   `yaml:"embedding_mode"`
	EmbeddingConfig models.EmbeddingConfig `yaml:"embedding_config"`
	VisionProvider  models.Provider        `yaml:"vision_provider"`
}

var _ Provider = (*FileConfig)(nil)

// LoadFileConfig reads and parses the YAML settings file at path.
func LoadFileConfig(path string) (*FileConfig, error) {
	fc := &FileConfig{path: path}
	if err := fc.Reload(); err != nil {
		return nil, err
	}
	return fc, nil
}

// Reload re-reads the backing file and notifies watchers on success.
func (f *FileConfig) Reload() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}

	var parsed configData
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	if parsed.EmbeddingMode == "" {
		parsed.EmbeddingMode = models.EmbeddingModeLocalPreferred
	}

	f.mu.Lock()
	f.data = parsed
	f.mu.Unlock()

	f.watchersMu.Lock()
	watchers := append([]func(){}, f.watchers...)
	f.watchersMu.Unlock()
	for _, w := range watchers {
		w()
	}
	return nil
}

// EmbeddingMode implements Provider.
func (f *FileConfig) EmbeddingMode() models.EmbeddingMode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data.EmbeddingMode
}

// EmbeddingConfig implements Provider.
func (f *FileConfig) EmbeddingConfig() models.EmbeddingConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data.EmbeddingConfig
}

// VisionProvider implements Provider.
func (f *FileConfig) VisionProvider() models.Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data.VisionProvider
}

// Watch implements Provider.
func (f *FileConfig) Watch(fn func()) func() {
	f.watchersMu.Lock()
	defer f.watchersMu.Unlock()
	f.watchers = append(f.watchers, fn)
	idx := len(f.watchers) - 1
	return func() {
		f.watchersMu.Lock()
		defer f.watchersMu.Unlock()
		if idx < len(f.watchers) {
			f.watchers[idx] = func() {}
		}
	}
}

// Static is an in-memory Provider for tests and simple embedders that have
// no file-backed configuration.
type Static struct {
	Mode     models.EmbeddingMode
	Embed    models.EmbeddingConfig
	Vision   models.Provider
}

var _ Provider = Static{}

func (s Static) EmbeddingMode() models.EmbeddingMode        { return s.Mode }
func (s Static) EmbeddingConfig() models.EmbeddingConfig    { return s.Embed }
func (s Static) VisionProvider() models.Provider            { return s.Vision }
func (s Static) Watch(func()) func()                        { return func() {} }
