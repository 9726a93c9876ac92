package domain

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
// It is assembled once at startup (defaults, then YAML file, then
// environment) and treated as read-only afterwards.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Services  ServicesConfig  `yaml:"services"`
	Display   DisplayConfig   `yaml:"display"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ServicesConfig holds the per-service credentials and defaults.
type ServicesConfig struct {
	Trello TrelloConfig `yaml:"trello"`
	Slack  SlackConfig  `yaml:"slack"`
	GitHub GitHubConfig `yaml:"github"`
}

// TrelloConfig holds Trello credentials and the default board.
type TrelloConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Token   string `yaml:"token"`
	BoardID string `yaml:"board_id"`
}

// SlackConfig holds the Slack bot token.
type SlackConfig struct {
	BaseURL  string `yaml:"base_url"`
	BotToken string `yaml:"bot_token"`
	TeamID   string `yaml:"team_id"`
}

// GitHubConfig holds the GitHub token and the default repository.
type GitHubConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
}

// DisplayConfig controls how formatted results render timestamps.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// APIConfig defines the companion HTTP endpoint settings.
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig defines the log level.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Environment variables that override the configuration file.
const (
	EnvTrelloAPIKey  = "TRELLO_API_KEY"
	EnvTrelloToken   = "TRELLO_TOKEN"
	EnvTrelloBoardID = "TRELLO_BOARD_ID"
	EnvSlackBotToken = "SLACK_BOT_TOKEN"
	EnvSlackTeamID   = "SLACK_TEAM_ID"
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvGitHubOwner   = "GITHUB_OWNER"
	EnvGitHubRepo    = "GITHUB_REPO"
	EnvTransport     = "MCP_TRANSPORT"
	EnvAPIPort       = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
)

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type: "stdio",
			HTTP: HTTPConfig{Host: "127.0.0.1", Port: 8080},
		},
		Services: ServicesConfig{
			Trello: TrelloConfig{BaseURL: "https://api.trello.com/1"},
			Slack:  SlackConfig{BaseURL: "https://slack.com/api"},
			GitHub: GitHubConfig{BaseURL: "https://api.github.com"},
		},
		Display: DisplayConfig{Timezone: "UTC"},
		API:     APIConfig{Host: "0.0.0.0", Port: 3000},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from a YAML file on top of the defaults.
// The result is not validated; callers apply the environment first and
// then call Validate.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
	}

	return config, nil
}

// ApplyEnv overlays environment variables onto the configuration.
// lookup has the signature of os.LookupEnv; empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(name string, target *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}

	set(EnvTrelloAPIKey, &c.Services.Trello.APIKey)
	set(EnvTrelloToken, &c.Services.Trello.Token)
	set(EnvTrelloBoardID, &c.Services.Trello.BoardID)
	set(EnvSlackBotToken, &c.Services.Slack.BotToken)
	set(EnvSlackTeamID, &c.Services.Slack.TeamID)
	set(EnvGitHubToken, &c.Services.GitHub.Token)
	set(EnvGitHubOwner, &c.Services.GitHub.Owner)
	set(EnvGitHubRepo, &c.Services.GitHub.Repo)
	set(EnvTransport, &c.Transport.Type)
	set(EnvLogLevel, &c.Logging.Level)

	if v, ok := lookup(EnvAPIPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.API.Port = port
		}
	}
}

// Validate checks the configuration for completeness and correctness.
// Missing service credentials are not an error here: the tools that need
// them report a configuration error when they are called.
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	for name, baseURL := range map[string]string{
		"Trello": c.Services.Trello.BaseURL,
		"Slack":  c.Services.Slack.BaseURL,
		"GitHub": c.Services.GitHub.BaseURL,
	} {
		if err := validateBaseURL(name, baseURL); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid display timezone '%s': %v", c.Display.Timezone, err))
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid API port %d: must be between 1 and 65535", c.API.Port))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.Logging.Level))
	}

	if len(errors) > 0 {
		// map iteration above is unordered; keep the message stable
		sort.Strings(errors)
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Location returns the display time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	if c.Transport.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

func validateBaseURL(service, baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("%s base_url is required", service)
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%s base_url is invalid: %v", service, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s base_url must use http or https scheme", service)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s base_url must include a host", service)
	}
	return nil
}
