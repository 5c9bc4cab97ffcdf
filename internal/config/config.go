package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains data and log directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Registry contains configuration for the Companies House REST API.
type Registry struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestDelayMS    int    `toml:"request_delay_ms"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	MaxRetries        int    `toml:"max_retries"`
	CacheEnabled      bool   `toml:"cache_enabled"`
	CacheTTLHours     int    `toml:"cache_ttl_hours"`
}

// Postcodes contains configuration for the postcodes.io district lookup.
type Postcodes struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RequestDelayMS int    `toml:"request_delay_ms"`
}

// Matching holds the scoring points and decision thresholds used by the
// resolver. Every number the scorer awards is configurable here.
type Matching struct {
	LongNameLength          int      `toml:"long_name_length"`
	MediumNameLength        int      `toml:"medium_name_length"`
	LongContainmentPoints   int      `toml:"long_containment_points"`
	MediumContainmentPoints int      `toml:"medium_containment_points"`
	ShortContainmentPoints  int      `toml:"short_containment_points"`
	WordOverlapPoints       int      `toml:"word_overlap_points"`
	DatePoints              int      `toml:"date_points"`
	LocationPoints          int      `toml:"location_points"`
	MultipleMatchThreshold  int      `toml:"multiple_match_threshold"`
	ReviewBelow             int      `toml:"review_below"`
	FallbackExactConfidence int      `toml:"fallback_exact_confidence"`
	Stopwords               []string `toml:"stopwords"`
}

// Fields maps logical record fields to ordered lists of workbook headers.
type Fields struct {
	Identifier            []string `toml:"identifier"`
	PrimaryName           []string `toml:"primary_name"`
	FallbackName          []string `toml:"fallback_name"`
	IncorporationDate     []string `toml:"incorporation_date"`
	Headquarters          []string `toml:"headquarters"`
	Postcode              []string `toml:"postcode"`
	Placeholders          []string `toml:"placeholders"`
	PadNumericIdentifiers bool     `toml:"pad_numeric_identifiers"`
}

// Workbook contains output workbook settings.
type Workbook struct {
	Enrich                     bool   `toml:"enrich"`
	ReviewFill                 string `toml:"review_fill"`
	HeadquartersColumn         string `toml:"headquarters_column"`
	PreviousHeadquartersColumn string `toml:"previous_headquarters_column"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Quiet  bool   `toml:"quiet"`
}

// Config encapsulates all configuration values for chmatch.
//
// Configuration sections by subsystem:
//   - Paths: data directory (run store, lock) and log directory
//   - Registry: Companies House credentials, pacing, retries, cache
//   - Postcodes: postcodes.io headquarters enrichment
//   - Matching: scorer points and resolver thresholds
//   - Fields: workbook header aliases and placeholder values
//   - Workbook: output enrichment and review styling
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Registry  Registry  `toml:"registry"`
	Postcodes Postcodes `toml:"postcodes"`
	Matching  Matching  `toml:"matching"`
	Fields    Fields    `toml:"fields"`
	Workbook  Workbook  `toml:"workbook"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is loaded first so COMPANIES_HOUSE_API_KEY can live
// there. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the SQLite database holding runs, outcomes and the registry cache.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "chmatch.db")
}

// LockPath returns the lock file guarding batch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "chmatch.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML with the API key masked.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.Registry.APIKey != "" {
		clone.Registry.APIKey = "********"
	}
	return toml.Marshal(clone)
}
