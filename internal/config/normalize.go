package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRegistry()
	c.normalizePostcodes()
	c.normalizeMatching()
	c.normalizeFields()
	c.normalizeWorkbook()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRegistry() {
	c.Registry.APIKey = strings.TrimSpace(c.Registry.APIKey)
	if c.Registry.APIKey == "" {
		if value, ok := os.LookupEnv("COMPANIES_HOUSE_API_KEY"); ok {
			c.Registry.APIKey = strings.TrimSpace(value)
		}
	}
	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = defaultRegistryBaseURL
	}
}

func (c *Config) normalizePostcodes() {
	c.Postcodes.BaseURL = strings.TrimRight(strings.TrimSpace(c.Postcodes.BaseURL), "/")
	if c.Postcodes.BaseURL == "" {
		c.Postcodes.BaseURL = defaultPostcodesBaseURL
	}
}

func (c *Config) normalizeMatching() {
	if len(c.Matching.Stopwords) == 0 {
		c.Matching.Stopwords = append([]string(nil), DefaultStopwords...)
		return
	}
	c.Matching.Stopwords = lowerUnique(c.Matching.Stopwords, false)
}

func (c *Config) normalizeFields() {
	c.Fields.Identifier = trimAliases(c.Fields.Identifier)
	c.Fields.PrimaryName = trimAliases(c.Fields.PrimaryName)
	c.Fields.FallbackName = trimAliases(c.Fields.FallbackName)
	c.Fields.IncorporationDate = trimAliases(c.Fields.IncorporationDate)
	c.Fields.Headquarters = trimAliases(c.Fields.Headquarters)
	c.Fields.Postcode = trimAliases(c.Fields.Postcode)
	if len(c.Fields.Placeholders) == 0 {
		c.Fields.Placeholders = append([]string(nil), DefaultPlaceholders...)
		return
	}
	c.Fields.Placeholders = lowerUnique(c.Fields.Placeholders, true)
}

func (c *Config) normalizeWorkbook() {
	fill := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c.Workbook.ReviewFill), "#"))
	if fill == "" {
		fill = defaultReviewFill
	}
	c.Workbook.ReviewFill = fill
	c.Workbook.HeadquartersColumn = strings.TrimSpace(c.Workbook.HeadquartersColumn)
	if c.Workbook.HeadquartersColumn == "" {
		c.Workbook.HeadquartersColumn = defaultHeadquartersColumn
	}
	c.Workbook.PreviousHeadquartersColumn = strings.TrimSpace(c.Workbook.PreviousHeadquartersColumn)
	if c.Workbook.PreviousHeadquartersColumn == "" {
		c.Workbook.PreviousHeadquartersColumn = defaultPreviousHQColumn
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("CHMATCH_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// trimAliases drops blank header aliases but keeps inner whitespace, since
// real headers such as the Companies House name column contain newlines.
func trimAliases(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func lowerUnique(values []string, keepEmpty bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		normalized := strings.ToLower(strings.TrimSpace(v))
		if normalized == "" && !keepEmpty {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
