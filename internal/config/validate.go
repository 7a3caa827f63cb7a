package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateEditor(); err != nil {
		return err
	}
	if err := c.validateResolutions(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackend() error {
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme %q is not supported", parsed.Scheme)
	}
	if c.Backend.RequestTimeout <= 0 {
		return errors.New("backend.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.StatusPollInterval <= 0 {
		return errors.New("workflow.status_poll_interval must be positive (seconds)")
	}
	if c.Workflow.BannerSeconds <= 0 {
		return errors.New("workflow.banner_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEditor() error {
	if c.Editor.PreviewWidth <= 0 {
		return errors.New("editor.preview_width must be positive")
	}
	return nil
}

func (c *Config) validateResolutions() error {
	for project, res := range c.Resolutions {
		if strings.TrimSpace(project) == "" {
			return errors.New("resolutions: project key must not be empty")
		}
		if res.Width <= 0 || res.Height <= 0 {
			return fmt.Errorf("resolutions.%s: width and height must be positive", project)
		}
	}
	if _, ok := c.Resolutions[defaultResolutionKey]; !ok {
		return errors.New("resolutions: a \"default\" entry is required")
	}
	return nil
}
