package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/config"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
	"github.com/parthubhe/DeepFakeStudio/internal/notifications"
	"github.com/parthubhe/DeepFakeStudio/internal/statecache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	clientOnce sync.Once
	client     *backend.Client
	clientErr  error

	storeOnce sync.Once
	store     *statecache.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns the operator-supplied --config value, empty when the
// default search order should apply.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the file-backed logger once. Console output stays on
// stdout for the operator; diagnostics go to the log file.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) ensureClient() (*backend.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		c.client = backend.NewClient(cfg, c.ensureLogger())
	})
	return c.client, c.clientErr
}

func (c *commandContext) withClient(fn func(*backend.Client) error) error {
	client, err := c.ensureClient()
	if err != nil {
		return err
	}
	return fn(client)
}

// ensureStore opens the console state database. Commands that merely read
// backend state never call this, so a broken database does not block them.
func (c *commandContext) ensureStore() (*statecache.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = statecache.Open(cfg.Paths.StateDir)
	})
	return c.store, c.storeErr
}

func (c *commandContext) notifier() notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil {
		return notifications.NewNop()
	}
	return notifications.NewService(cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
