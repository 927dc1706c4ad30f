package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/subtran/internal/subtitle"
	"github.com/mgpai22/subtran/internal/translate"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranslate(); err != nil {
		return err
	}
	return c.validateProviders()
}

func (c *Config) validateTranslate() error {
	t := c.Translate
	if _, ok := translate.Lookup(translate.Provider(strings.ToLower(t.Provider))); !ok {
		return fmt.Errorf("translate.provider: unknown provider %q", t.Provider)
	}
	if t.BatchSize < 0 {
		return fmt.Errorf("translate.batch_size must be positive, got %d", t.BatchSize)
	}
	if t.TimeoutSeconds < 0 {
		return fmt.Errorf("translate.timeout_seconds must not be negative, got %d", t.TimeoutSeconds)
	}
	if _, err := subtitle.LookupEncoding(t.Encoding); err != nil {
		return fmt.Errorf("translate.encoding: %w", err)
	}
	for key, value := range map[string]string{"backoff": t.Backoff, "pace": t.Pace} {
		if err := validateDuration(value); err != nil {
			return fmt.Errorf("translate.%s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validateProviders() error {
	for name, p := range c.Providers {
		if _, ok := translate.Lookup(translate.Provider(name)); !ok {
			return fmt.Errorf("providers.%s: unknown provider", name)
		}
		if p.BatchSize < 0 {
			return fmt.Errorf("providers.%s.batch_size must be positive, got %d", name, p.BatchSize)
		}
		if err := validateDuration(p.Delay); err != nil {
			return fmt.Errorf("providers.%s.delay: %w", name, err)
		}
	}
	return nil
}

func validateDuration(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative, got %s", value)
	}
	return nil
}
