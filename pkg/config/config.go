package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultKeyword is the word that marks an event as a coaching session
	DefaultKeyword = "coaching"

	defaultHubSpotAPIURL = "https://api.hubapi.com"
	defaultHubSpotAppURL = "https://app.hubspot.com/contacts/"
	defaultNATSSubject   = "coaching.appointments"
	defaultServerAddr    = ":8080"
	defaultCallTimeout   = 10 * time.Second
)

// DefaultContactProperties is the CRM property set requested for every lookup
var DefaultContactProperties = []string{
	"firstname",
	"lastname",
	"email",
	"phone",
	"createdate",
	"lifecyclestage",
	"hs_lead_status",
	"lastmodifieddate",
	"notes_last_contacted",
	"num_notes",
	"total_revenue",
}

type Config struct {
	Google   GoogleConfig   `yaml:"google"`
	HubSpot  HubSpotConfig  `yaml:"hubspot"`
	Coaching CoachingConfig `yaml:"coaching"`
	Retry    RetryConfig    `yaml:"retry"`
	NATS     NATSConfig     `yaml:"nats"`
	Sentry   SentryConfig   `yaml:"sentry"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type GoogleConfig struct {
	// Endpoint overrides the Calendar API base URL; empty uses the public API
	Endpoint               string        `yaml:"endpoint"`
	MaxConcurrentCalendars int           `yaml:"max_concurrent_calendars"`
	Timeout                time.Duration `yaml:"timeout"`
}

type HubSpotConfig struct {
	Token      string        `yaml:"token"`
	APIURL     string        `yaml:"api_url"`
	AppURL     string        `yaml:"app_url"`
	Properties []string      `yaml:"properties"`
	Timeout    time.Duration `yaml:"timeout"`
}

type CoachingConfig struct {
	Keyword  string        `yaml:"keyword"`
	Timezone string        `yaml:"timezone"`
	Roster   []CoachConfig `yaml:"roster"`
}

// CoachConfig names one roster member and the fragments that identify them
type CoachConfig struct {
	Name   string   `yaml:"name"`
	Tokens []string `yaml:"tokens"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type WatchConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultRoster returns the four known coaches
func DefaultRoster() []CoachConfig {
	return []CoachConfig{
		{Name: "Craig Wallace", Tokens: []string{"craig"}},
		{Name: "Stephanie V", Tokens: []string{"stephanie"}},
		{Name: "Teri", Tokens: []string{"teri"}},
		{Name: "Veronica", Tokens: []string{"veronica"}},
	}
}

// Default returns a configuration that works without a config file
func Default() *Config {
	properties := make([]string, len(DefaultContactProperties))
	copy(properties, DefaultContactProperties)

	return &Config{
		HubSpot: HubSpotConfig{
			Properties: properties,
		},
		Coaching: CoachingConfig{
			Roster: DefaultRoster(),
		},
	}
}

// Load reads the YAML file at configPath on top of the defaults. Environment
// references such as ${HUBSPOT_TOKEN} are expanded before parsing. An empty
// path returns the defaults.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if config.HubSpot.Token == "" {
		config.HubSpot.Token = os.Getenv("HUBSPOT_TOKEN")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Location returns the zone used for day windows and rendered times
func (c *Config) Location() *time.Location {
	if c.Coaching.Timezone == "" || c.Coaching.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Coaching.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) validate() error {
	if c.Coaching.Keyword == "" {
		c.Coaching.Keyword = DefaultKeyword
	}
	if c.Coaching.Timezone != "" && c.Coaching.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Coaching.Timezone); err != nil {
			return fmt.Errorf("coaching.timezone: %w", err)
		}
	}
	if len(c.Coaching.Roster) == 0 {
		c.Coaching.Roster = DefaultRoster()
	}
	for i, coach := range c.Coaching.Roster {
		if coach.Name == "" {
			return fmt.Errorf("coaching.roster[%d]: name is required", i)
		}
		if len(coach.Tokens) == 0 {
			return fmt.Errorf("coaching.roster[%d]: at least one token is required", i)
		}
	}

	if c.Google.MaxConcurrentCalendars < 0 {
		return fmt.Errorf("google.max_concurrent_calendars must not be negative")
	}
	if c.Google.MaxConcurrentCalendars == 0 {
		c.Google.MaxConcurrentCalendars = 4
	}
	if c.Google.Timeout < 0 {
		return fmt.Errorf("google.timeout must be positive")
	}
	if c.Google.Timeout == 0 {
		c.Google.Timeout = defaultCallTimeout
	}

	if c.HubSpot.APIURL == "" {
		c.HubSpot.APIURL = defaultHubSpotAPIURL
	}
	if c.HubSpot.AppURL == "" {
		c.HubSpot.AppURL = defaultHubSpotAppURL
	}
	if len(c.HubSpot.Properties) == 0 {
		c.HubSpot.Properties = append([]string(nil), DefaultContactProperties...)
	}
	if c.HubSpot.Timeout < 0 {
		return fmt.Errorf("hubspot.timeout must be positive")
	}
	if c.HubSpot.Timeout == 0 {
		c.HubSpot.Timeout = defaultCallTimeout
	}

	// A single attempt per external call unless configured otherwise
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must not be negative")
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 5 * time.Second
	}

	if c.NATS.Subject == "" {
		c.NATS.Subject = defaultNATSSubject
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}

	if c.Watch.PollInterval == 0 {
		c.Watch.PollInterval = 5 * time.Minute // default
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	return nil
}
