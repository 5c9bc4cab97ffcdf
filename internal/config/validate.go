package config

import (
	"errors"
	"fmt"
	"regexp"

	"chmatch/internal/services"
)

var hexColorPattern = regexp.MustCompile(`^[0-9A-F]{6}$`)

// Validate ensures the configuration is usable. The registry API key is not
// checked here so offline commands (config, runs) work without one; see
// RequireAPIKey.
func (c *Config) Validate() error {
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validatePostcodes(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateWorkbook(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireAPIKey reports a configuration error when no registry key is set.
func (c *Config) RequireAPIKey() error {
	if c.Registry.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return services.Wrap(services.ErrConfiguration, "config", "registry", fmt.Sprintf(
		"registry.api_key is required. Set COMPANIES_HOUSE_API_KEY (env or .env), pass --api-key, or edit %s (create with 'chmatch config init')",
		defaultPath), nil)
}

func (c *Config) validateRegistry() error {
	if err := ensurePositiveMap(map[string]int{
		"registry.timeout_seconds":     c.Registry.TimeoutSeconds,
		"registry.requests_per_minute": c.Registry.RequestsPerMinute,
	}); err != nil {
		return err
	}
	if c.Registry.RequestDelayMS < 0 {
		return errors.New("registry.request_delay_ms must be >= 0")
	}
	if c.Registry.MaxRetries < 0 {
		return errors.New("registry.max_retries must be >= 0")
	}
	if c.Registry.CacheEnabled && c.Registry.CacheTTLHours <= 0 {
		return errors.New("registry.cache_ttl_hours must be positive when registry.cache_enabled is true")
	}
	return nil
}

func (c *Config) validatePostcodes() error {
	if !c.Postcodes.Enabled {
		return nil
	}
	if c.Postcodes.TimeoutSeconds <= 0 {
		return errors.New("postcodes.timeout_seconds must be positive")
	}
	if c.Postcodes.RequestDelayMS < 0 {
		return errors.New("postcodes.request_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.MediumNameLength <= 0 || m.LongNameLength <= m.MediumNameLength {
		return errors.New("matching.long_name_length must be greater than matching.medium_name_length, which must be positive")
	}
	for key, value := range map[string]int{
		"matching.long_containment_points":   m.LongContainmentPoints,
		"matching.medium_containment_points": m.MediumContainmentPoints,
		"matching.short_containment_points":  m.ShortContainmentPoints,
		"matching.word_overlap_points":       m.WordOverlapPoints,
		"matching.date_points":               m.DatePoints,
		"matching.location_points":           m.LocationPoints,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	if m.MultipleMatchThreshold < 1 || m.MultipleMatchThreshold > 10 {
		return errors.New("matching.multiple_match_threshold must be between 1 and 10")
	}
	if m.ReviewBelow < 1 || m.ReviewBelow > 10 {
		return errors.New("matching.review_below must be between 1 and 10")
	}
	// A fallback exact match is always reviewed, so a confidence of 10 would
	// break the "10 never needs review" rule.
	if m.FallbackExactConfidence < 1 || m.FallbackExactConfidence > 9 {
		return errors.New("matching.fallback_exact_confidence must be between 1 and 9")
	}
	return nil
}

func (c *Config) validateFields() error {
	if len(c.Fields.Identifier) == 0 {
		return errors.New("fields.identifier must list at least one header")
	}
	if len(c.Fields.PrimaryName) == 0 {
		return errors.New("fields.primary_name must list at least one header")
	}
	return nil
}

func (c *Config) validateWorkbook() error {
	if !hexColorPattern.MatchString(c.Workbook.ReviewFill) {
		return fmt.Errorf("workbook.review_fill must be a 6 digit hex colour, got %q", c.Workbook.ReviewFill)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
