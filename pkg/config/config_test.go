package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	t.Setenv("TEST_HUBSPOT_TOKEN", "pat-na1-secret")

	configContent := `
hubspot:
  token: "${TEST_HUBSPOT_TOKEN}"
  timeout: "3s"

coaching:
  keyword: "mentoring"
  timezone: "America/New_York"
  roster:
    - name: "Alex Morgan"
      tokens: ["alex", "amorgan"]

nats:
  url: "nats://localhost:4222"

watch:
  poll_interval: "2m"

logging:
  level: "debug"
  format: "text"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := Load(configFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.HubSpot.Token != "pat-na1-secret" {
		t.Errorf("Expected expanded HubSpot token, got '%s'", config.HubSpot.Token)
	}

	if config.HubSpot.Timeout != 3*time.Second {
		t.Errorf("Expected HubSpot timeout 3s, got %v", config.HubSpot.Timeout)
	}

	if config.Coaching.Keyword != "mentoring" {
		t.Errorf("Expected keyword 'mentoring', got '%s'", config.Coaching.Keyword)
	}

	if len(config.Coaching.Roster) != 1 || config.Coaching.Roster[0].Name != "Alex Morgan" {
		t.Errorf("Expected roster to be replaced by the configured coach, got %+v", config.Coaching.Roster)
	}

	if config.Location().String() != "America/New_York" {
		t.Errorf("Expected America/New_York location, got %s", config.Location())
	}

	if config.NATS.Subject != "coaching.appointments" {
		t.Errorf("Expected default NATS subject, got '%s'", config.NATS.Subject)
	}

	if config.Watch.PollInterval != 2*time.Minute {
		t.Errorf("Expected poll interval 2m, got %v", config.Watch.PollInterval)
	}

	if len(config.HubSpot.Properties) != len(DefaultContactProperties) {
		t.Errorf("Expected default property list, got %v", config.HubSpot.Properties)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HUBSPOT_TOKEN", "from-env")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if config.HubSpot.Token != "from-env" {
		t.Errorf("Expected token from HUBSPOT_TOKEN, got '%s'", config.HubSpot.Token)
	}
	if config.Coaching.Keyword != DefaultKeyword {
		t.Errorf("Expected default keyword, got '%s'", config.Coaching.Keyword)
	}
	if len(config.Coaching.Roster) != 4 {
		t.Errorf("Expected 4 default coaches, got %d", len(config.Coaching.Roster))
	}
	if config.Retry.MaxAttempts != 1 {
		t.Errorf("Expected a single attempt by default, got %d", config.Retry.MaxAttempts)
	}
	if config.HubSpot.AppURL != "https://app.hubspot.com/contacts/" {
		t.Errorf("Unexpected app URL '%s'", config.HubSpot.AppURL)
	}
	if config.Location() != time.Local {
		t.Errorf("Expected local time zone by default, got %s", config.Location())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{
			name:      "empty config gets defaults",
			config:    Config{},
			expectErr: false,
		},
		{
			name: "unknown timezone",
			config: Config{
				Coaching: CoachingConfig{Timezone: "Mars/Olympus"},
			},
			expectErr: true,
		},
		{
			name: "coach without tokens",
			config: Config{
				Coaching: CoachingConfig{Roster: []CoachConfig{{Name: "Teri"}}},
			},
			expectErr: true,
		},
		{
			name: "coach without name",
			config: Config{
				Coaching: CoachingConfig{Roster: []CoachConfig{{Tokens: []string{"teri"}}}},
			},
			expectErr: true,
		},
		{
			name: "negative timeout",
			config: Config{
				HubSpot: HubSpotConfig{Timeout: -time.Second},
			},
			expectErr: true,
		},
		{
			name: "negative attempts",
			config: Config{
				Retry: RetryConfig{MaxAttempts: -1},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no validation error, got: %v", err)
			}
		})
	}
}
