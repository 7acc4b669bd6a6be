package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"whisperwiz/internal/config"
	"whisperwiz/internal/engine"
	"whisperwiz/internal/media"
)

// loaderFactory builds the recognition backend selected by cfg.
type loaderFactory func(cfg *config.Config, logger *slog.Logger) (engine.Loader, error)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	// newLoader and runner are replaced in tests.
	newLoader loaderFactory
	runner    media.Runner
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		newLoader:  newEngineLoader,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
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
