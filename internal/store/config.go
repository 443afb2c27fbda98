package store

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	ProviderYahoo         = "yahoo"
	ProviderYahooCalendar = "yahoo-calendar"
	ProviderStatic        = "static"
)

type Config struct {
	Output   string `yaml:"output"`
	Provider struct {
		Name        string        `yaml:"name"`
		BaseURL     string        `yaml:"base_url"`
		CookieURL   string        `yaml:"cookie_url"`
		CalendarURL string        `yaml:"calendar_url"`
		UserAgent   string        `yaml:"user_agent"`
		Timeout     time.Duration `yaml:"timeout"`
		MinInterval time.Duration `yaml:"min_interval"`
		StaticFile  string        `yaml:"static_file"`
	} `yaml:"provider"`
	Timezone struct {
		Source string `yaml:"source"`
		Target string `yaml:"target"`
	} `yaml:"timezone"`
	Extraction struct {
		FiscalFallbacks bool `yaml:"fiscal_fallbacks"`
	} `yaml:"extraction"`
	Report struct {
		Color bool `yaml:"color"`
	} `yaml:"report"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	var c Config
	c.Output = "earnings_dates.csv"
	c.Provider.Name = ProviderYahoo
	c.Provider.Timeout = 30 * time.Second
	c.Provider.MinInterval = time.Second
	c.Timezone.Source = "America/New_York"
	c.Timezone.Target = "America/New_York"
	c.Extraction.FiscalFallbacks = true
	c.Report.Color = true
	return &c
}

func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderYahoo, ProviderYahooCalendar:
	case ProviderStatic:
		if c.Provider.StaticFile == "" {
			return errors.New("provider.static_file is required for the static provider")
		}
	default:
		return fmt.Errorf("invalid provider.name '%s': must be '%s', '%s' or '%s'",
			c.Provider.Name, ProviderYahoo, ProviderYahooCalendar, ProviderStatic)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	if c.Provider.MinInterval < 0 {
		return fmt.Errorf("provider.min_interval cannot be negative, got %s", c.Provider.MinInterval)
	}
	if _, err := time.LoadLocation(c.Timezone.Source); err != nil {
		return fmt.Errorf("timezone.source: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone.Target); err != nil {
		return fmt.Errorf("timezone.target: %w", err)
	}
	if c.Output == "" {
		return errors.New("output cannot be empty")
	}
	return nil
}

// LoadConfig reads path over the defaults. A missing file is not an error:
// every setting has a usable default.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EARNINGS_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("EARNINGS_STATIC_FILE"); v != "" {
		c.Provider.StaticFile = v
	}
	if v := os.Getenv("EARNINGS_OUTPUT"); v != "" {
		c.Output = v
	}
}
