package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"adreel/internal/config"
	"adreel/internal/logging"
	"adreel/internal/overlay"
	"adreel/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrFilesystem, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
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
			c.loggerErr = services.Wrap(services.ErrConfiguration, "logging", "init", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// programResources is everything a run reads besides the TOML config.
type programResources struct {
	Program      config.Program
	WelcomeLines []string
	OverlayLines []string
}

// loadProgramResources reads the program file and both text resources. The
// program file is required; a missing or empty text resource turns its
// feature off.
func loadProgramResources(cfg *config.Config, logger *slog.Logger) (programResources, error) {
	program, err := config.LoadProgram(cfg.Paths.ProgramConfig)
	if err != nil {
		return programResources{}, services.Wrap(services.ErrConfiguration, "config", "load program", cfg.Paths.ProgramConfig, err)
	}
	res := programResources{Program: program}

	res.WelcomeLines, err = optionalLines(logger, "welcome text", cfg.Paths.WelcomeText, "welcome clip skipped")
	if err != nil {
		return programResources{}, err
	}
	res.OverlayLines, err = optionalLines(logger, "overlay text", cfg.Paths.OverlayText, "programs encoded without watermark")
	if err != nil {
		return programResources{}, err
	}
	return res, nil
}

func optionalLines(logger *slog.Logger, name, path, impact string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		logger.Info(name+" not configured", logging.String("impact", impact))
		return nil, nil
	}
	lines, err := overlay.LoadLines(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info(name+" not found",
			logging.String("path", path),
			logging.String("impact", impact),
		)
		return nil, nil
	case err != nil:
		return nil, services.Wrap(services.ErrConfiguration, "config", "load "+name, path, err)
	case len(lines) == 0:
		logger.Info(name+" has no lines",
			logging.String("path", path),
			logging.String("impact", impact),
		)
	}
	return lines, nil
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
