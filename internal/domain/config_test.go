package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

// TestLoadConfig_ValidYAML tests loading a complete configuration file.
func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
transport:
  type: http
  http:
    host: localhost
    port: 9090
services:
  trello:
    api_key: key
    token: token
    board_id: board1
  slack:
    bot_token: xoxb
  github:
    token: ghp
    owner: acme
    repo: widgets
display:
  timezone: Europe/Paris
logging:
  level: debug
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Transport.Type != "http" || config.Transport.HTTP.Port != 9090 {
		t.Errorf("unexpected transport: %+v", config.Transport)
	}
	if config.Services.Trello.BoardID != "board1" {
		t.Errorf("expected board1, got '%s'", config.Services.Trello.BoardID)
	}
	if config.Services.GitHub.Owner != "acme" || config.Services.GitHub.Repo != "widgets" {
		t.Errorf("unexpected github config: %+v", config.Services.GitHub)
	}
	// defaults survive when the file does not mention them
	if config.Services.Trello.BaseURL != "https://api.trello.com/1" {
		t.Errorf("expected default Trello base URL, got '%s'", config.Services.Trello.BaseURL)
	}
	if config.API.Port != 3000 {
		t.Errorf("expected default API port 3000, got %d", config.API.Port)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_InvalidYAMLSyntax(t *testing.T) {
	path := writeConfig(t, "transport:\n  type: [stdio\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "invalid YAML syntax") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestApplyEnv tests that environment variables override the file.
func TestApplyEnv(t *testing.T) {
	config := DefaultConfig()
	config.Services.Trello.BoardID = "from-file"

	config.ApplyEnv(envLookup(map[string]string{
		EnvTrelloAPIKey:  "env-key",
		EnvTrelloToken:   "env-token",
		EnvTrelloBoardID: " env-board ",
		EnvSlackBotToken: "xoxb-env",
		EnvSlackTeamID:   "T1",
		EnvGitHubToken:   "ghp-env",
		EnvGitHubOwner:   "octo",
		EnvGitHubRepo:    "hello",
		EnvTransport:     "http",
		EnvAPIPort:       "4000",
		EnvLogLevel:      "debug",
	}))

	if config.Services.Trello.APIKey != "env-key" || config.Services.Trello.Token != "env-token" {
		t.Errorf("unexpected Trello credentials: %+v", config.Services.Trello)
	}
	if config.Services.Trello.BoardID != "env-board" {
		t.Errorf("expected trimmed env board, got '%s'", config.Services.Trello.BoardID)
	}
	if config.Services.Slack.BotToken != "xoxb-env" || config.Services.Slack.TeamID != "T1" {
		t.Errorf("unexpected Slack config: %+v", config.Services.Slack)
	}
	if config.Services.GitHub.Owner != "octo" || config.Services.GitHub.Repo != "hello" {
		t.Errorf("unexpected GitHub config: %+v", config.Services.GitHub)
	}
	if config.Transport.Type != "http" {
		t.Errorf("expected http transport, got '%s'", config.Transport.Type)
	}
	if config.API.Port != 4000 {
		t.Errorf("expected API port 4000, got %d", config.API.Port)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected debug level, got '%s'", config.Logging.Level)
	}
}

// TestApplyEnv_EmptyValuesIgnored tests that blank variables keep the file value.
func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	config := DefaultConfig()
	config.Services.GitHub.Owner = "file-owner"

	config.ApplyEnv(envLookup(map[string]string{
		EnvGitHubOwner: "   ",
		EnvAPIPort:     "not-a-number",
	}))

	if config.Services.GitHub.Owner != "file-owner" {
		t.Errorf("expected file owner to survive, got '%s'", config.Services.GitHub.Owner)
	}
	if config.API.Port != 3000 {
		t.Errorf("expected default port to survive, got %d", config.API.Port)
	}
}

// TestValidate_NoCredentialsIsValid tests that credentials are not required at startup.
func TestValidate_NoCredentialsIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing transport", func(c *Config) { c.Transport.Type = "" }, "transport type is required"},
		{"invalid transport", func(c *Config) { c.Transport.Type = "grpc" }, "invalid transport type 'grpc'"},
		{"http without host", func(c *Config) {
			c.Transport.Type = "http"
			c.Transport.HTTP.Host = ""
		}, "HTTP host is required"},
		{"http invalid port", func(c *Config) {
			c.Transport.Type = "http"
			c.Transport.HTTP.Port = 70000
		}, "invalid HTTP port 70000"},
		{"missing base url", func(c *Config) { c.Services.Slack.BaseURL = "" }, "Slack base_url is required"},
		{"bad scheme", func(c *Config) { c.Services.GitHub.BaseURL = "ftp://github.com" }, "GitHub base_url must use http or https scheme"},
		{"missing host", func(c *Config) { c.Services.Trello.BaseURL = "https://" }, "Trello base_url must include a host"},
		{"bad timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }, "invalid display timezone 'Mars/Olympus'"},
		{"bad api port", func(c *Config) { c.API.Port = 0 }, "invalid API port 0"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level 'verbose'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing '%s', got '%v'", tt.want, err)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	config := DefaultConfig()
	if config.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", config.Location())
	}

	config.Display.Timezone = "America/Sao_Paulo"
	if got := config.Location().String(); got != "America/Sao_Paulo" {
		t.Errorf("expected America/Sao_Paulo, got %s", got)
	}

	config.Display.Timezone = "nowhere"
	if config.Location() != time.UTC {
		t.Errorf("expected UTC fallback, got %v", config.Location())
	}
}
