package testsupport

import (
	"path/filepath"
	"testing"

	"chmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Registry pacing and retries are disabled and postcode enrichment is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Registry.APIKey = "test-key"
	cfgVal.Registry.BaseURL = "http://127.0.0.1:0"
	cfgVal.Registry.RequestDelayMS = 0
	cfgVal.Registry.RequestsPerMinute = 600000
	cfgVal.Registry.MaxRetries = 0
	cfgVal.Registry.TimeoutSeconds = 5
	cfgVal.Postcodes.Enabled = false
	cfgVal.Postcodes.RequestDelayMS = 0
	cfgVal.Logging.Quiet = true

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAPIKey sets the registry API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.APIKey = key
	}
}

// WithRegistryURL points the registry client at a fake server.
func WithRegistryURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.BaseURL = url
	}
}

// WithPostcodesURL enables postcode enrichment against a fake server.
func WithPostcodesURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Postcodes.Enabled = true
		b.cfg.Postcodes.BaseURL = url
	}
}

// WithCache toggles the registry response cache.
func WithCache(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.CacheEnabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
