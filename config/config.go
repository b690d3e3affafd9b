package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported calendar providers.
const (
	ProviderGoogle = "google"
	ProviderCalDAV = "caldav"
	ProviderICS    = "ics"
)

const (
	DefaultPath        = "trainingcal.yaml"
	defaultCredentials = "credentials.json"
	defaultToken       = "token.json"
	defaultTimezone    = "America/Chicago"
	defaultICSDir      = "."
	defaultMaxEvents   = 2500
)

// CalDAVConfig holds the server and basic auth credentials for the caldav
// provider.
type CalDAVConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config is the application configuration.
type Config struct {
	// Provider selects the calendar service: google, caldav or ics.
	Provider string `yaml:"provider"`

	// Credentials is the Google OAuth client secret file.
	Credentials string `yaml:"credentials"`
	// Token is where the Google OAuth token is cached.
	Token string `yaml:"token"`
	// Timezone is the IANA time zone given to newly created Google calendars.
	Timezone string `yaml:"timezone"`
	// MaxEvents caps the number of events read from a template calendar.
	MaxEvents int `yaml:"max_events"`

	// ICSDir is the directory holding .ics calendars for the ics provider.
	ICSDir string `yaml:"ics_dir"`

	CalDAV CalDAVConfig `yaml:"caldav"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in zero values with defaults and lowercases the provider.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGoogle
	}
	if c.Credentials == "" {
		c.Credentials = defaultCredentials
	}
	if c.Token == "" {
		c.Token = defaultToken
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = defaultMaxEvents
	}
	if c.ICSDir == "" {
		c.ICSDir = defaultICSDir
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderICS:
	case ProviderCalDAV:
		if c.CalDAV.URL == "" {
			return errors.New("caldav provider requires caldav.url")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s, %s or %s)", c.Provider, ProviderGoogle, ProviderCalDAV, ProviderICS)
	}
	return nil
}

// Load reads the YAML file at path, then a .env file in the working
// directory, then TRAININGCAL_* environment variables, each overriding the
// previous. Missing files are not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("could not parse %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for key, dst := range map[string]*string{
		"TRAININGCAL_PROVIDER":        &c.Provider,
		"TRAININGCAL_CREDENTIALS":     &c.Credentials,
		"TRAININGCAL_TOKEN":           &c.Token,
		"TRAININGCAL_TIMEZONE":        &c.Timezone,
		"TRAININGCAL_ICS_DIR":         &c.ICSDir,
		"TRAININGCAL_CALDAV_URL":      &c.CalDAV.URL,
		"TRAININGCAL_CALDAV_USERNAME": &c.CalDAV.Username,
		"TRAININGCAL_CALDAV_PASSWORD": &c.CalDAV.Password,
	} {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("TRAININGCAL_MAX_EVENTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRAININGCAL_MAX_EVENTS must be a number: %w", err)
		}
		c.MaxEvents = n
	}
	return nil
}
