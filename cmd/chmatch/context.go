package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"chmatch/internal/config"
	"chmatch/internal/logging"
	"chmatch/internal/matching"
	"chmatch/internal/records"
	"chmatch/internal/registry"
	"chmatch/internal/store"
)

type commandContext struct {
	configFlag *string
	apiKeyFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, apiKeyFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiKeyFlag: apiKeyFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiKeyFlag != nil {
			if key := strings.TrimSpace(*c.apiKeyFlag); key != "" {
				cfg.Registry.APIKey = key
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openStore opens the run store; callers close it.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// engine bundles the collaborators a matching command needs.
type engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	client   *registry.Client
	accessor *records.Accessor
	resolver *matching.Resolver
}

func (e *engine) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// newEngine builds a registry client (cached through the run store unless
// noCache is set) and the resolver around it.
func (c *commandContext) newEngine(noCache bool) (*engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	st, err := c.openStore()
	if err != nil {
		return nil, err
	}
	var cache registry.Cache
	if !noCache {
		cache = st
	}
	client, err := registry.NewFromConfig(cfg, cache, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	accessor := records.NewAccessor(cfg.Fields)
	return &engine{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   client,
		accessor: accessor,
		resolver: matching.NewResolver(client, accessor, matching.PolicyFromConfig(cfg.Matching), logger),
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
