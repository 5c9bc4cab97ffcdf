package config

const (
	defaultConfigPath         = "~/.config/chmatch/config.toml"
	defaultDataDir            = "~/.local/share/chmatch"
	defaultLogDir             = "~/.local/share/chmatch/logs"
	defaultRegistryBaseURL    = "https://api.company-information.service.gov.uk"
	defaultRegistryTimeout    = 15
	defaultRegistryDelayMS    = 400
	defaultRequestsPerMinute  = 120
	defaultRegistryMaxRetries = 3
	defaultCacheTTLHours      = 24 * 7
	defaultPostcodesBaseURL   = "https://api.postcodes.io"
	defaultPostcodesTimeout   = 10
	defaultPostcodesDelayMS   = 100
	defaultReviewFill         = "FFC7CE"
	defaultHeadquartersColumn = "Headquarters"
	defaultPreviousHQColumn   = "Previous Headquarter Locations"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// DefaultStopwords are legal-form and generic terms dropped before word overlap scoring.
var DefaultStopwords = []string{
	"limited", "ltd", "llp", "plc", "inc", "incorporated", "corporation", "corp",
	"company", "co", "group", "holdings", "holding", "services", "international",
	"uk", "the", "and", "of",
}

// DefaultPlaceholders are cell values treated as absent.
var DefaultPlaceholders = []string{
	"n/a", "na", "nan", "", "none", "sole trader", "freelancer", "self employed",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Registry: Registry{
			BaseURL:           defaultRegistryBaseURL,
			TimeoutSeconds:    defaultRegistryTimeout,
			RequestDelayMS:    defaultRegistryDelayMS,
			RequestsPerMinute: defaultRequestsPerMinute,
			MaxRetries:        defaultRegistryMaxRetries,
			CacheEnabled:      true,
			CacheTTLHours:     defaultCacheTTLHours,
		},
		Postcodes: Postcodes{
			Enabled:        true,
			BaseURL:        defaultPostcodesBaseURL,
			TimeoutSeconds: defaultPostcodesTimeout,
			RequestDelayMS: defaultPostcodesDelayMS,
		},
		Matching: Matching{
			LongNameLength:          15,
			MediumNameLength:        10,
			LongContainmentPoints:   7,
			MediumContainmentPoints: 4,
			ShortContainmentPoints:  2,
			WordOverlapPoints:       3,
			DatePoints:              3,
			LocationPoints:          2,
			MultipleMatchThreshold:  6,
			ReviewBelow:             10,
			FallbackExactConfidence: 8,
			Stopwords:               append([]string(nil), DefaultStopwords...),
		},
		Fields: Fields{
			Identifier: []string{
				"Company Registration Number",
				"Companies Registration Number",
				"CRN",
			},
			PrimaryName: []string{
				"Companies House name\n(or note Sole Trader/ Freelancer)",
				"Companies House name",
				"Company Name",
			},
			FallbackName: []string{
				"Organisation Name",
				"Organization Name",
				"Trading Name",
			},
			IncorporationDate: []string{
				"Date Company Incorporated",
				"Incorporation Date",
			},
			Headquarters: []string{
				"Headquarters",
				"Headquarters Location",
				"HQ Location",
			},
			Postcode: []string{
				"Registered Postcode",
				"Postcode",
			},
			Placeholders:          append([]string(nil), DefaultPlaceholders...),
			PadNumericIdentifiers: true,
		},
		Workbook: Workbook{
			Enrich:                     true,
			ReviewFill:                 defaultReviewFill,
			HeadquartersColumn:         defaultHeadquartersColumn,
			PreviousHeadquartersColumn: defaultPreviousHQColumn,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
