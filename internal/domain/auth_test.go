package domain

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestNewAuthenticationManagerFromConfig tests that all three services are registered.
func TestNewAuthenticationManagerFromConfig(t *testing.T) {
	am := NewAuthenticationManagerFromConfig(ServicesConfig{
		Trello: TrelloConfig{APIKey: "k", Token: "t"},
		Slack:  SlackConfig{BotToken: "xoxb"},
		GitHub: GitHubConfig{Token: "ghp"},
	})

	tests := []struct {
		service  string
		authType AuthType
		token    string
	}{
		{ServiceTrello, QueryAuth, "t"},
		{ServiceSlack, BearerAuth, "xoxb"},
		{ServiceGitHub, TokenAuth, "ghp"},
	}

	for _, tt := range tests {
		creds, ok := am.credentials[tt.service]
		if !ok {
			t.Fatalf("expected %s credentials", tt.service)
		}
		if creds.Type != tt.authType {
			t.Errorf("%s: expected %v, got %v", tt.service, tt.authType, creds.Type)
		}
		if creds.Token != tt.token {
			t.Errorf("%s: expected token '%s', got '%s'", tt.service, tt.token, creds.Token)
		}
		if err := am.ValidateCredentials(tt.service); err != nil {
			t.Errorf("%s: unexpected validation error: %v", tt.service, err)
		}
	}
}

// TestValidateCredentials_Missing tests the configuration error naming the missing variables.
func TestValidateCredentials_Missing(t *testing.T) {
	am := NewAuthenticationManagerFromConfig(ServicesConfig{
		Trello: TrelloConfig{Token: "t"},
	})

	tests := []struct {
		service string
		want    string
	}{
		{ServiceTrello, "Trello credentials are not configured (missing TRELLO_API_KEY)"},
		{ServiceSlack, "Slack credentials are not configured (missing SLACK_BOT_TOKEN)"},
		{ServiceGitHub, "GitHub credentials are not configured (missing GITHUB_TOKEN)"},
		{"jira", "no credentials configured for service: jira"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			err := am.ValidateCredentials(tt.service)
			if err == nil {
				t.Fatal("expected error")
			}
			var domainErr *Error
			if !errors.As(err, &domainErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if domainErr.Code != ConfigurationError {
				t.Errorf("expected code %d, got %d", ConfigurationError, domainErr.Code)
			}
			if domainErr.Message != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, domainErr.Message)
			}
		})
	}
}

// TestValidateCredentials_BothTrelloMissing tests that both Trello variables are listed.
func TestValidateCredentials_BothTrelloMissing(t *testing.T) {
	am := NewAuthenticationManagerFromConfig(ServicesConfig{})

	err := am.ValidateCredentials(ServiceTrello)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "TRELLO_API_KEY, TRELLO_TOKEN") {
		t.Errorf("expected both variables in message, got '%s'", err.Error())
	}
}

// TestGetAuthenticatedClient tests that each auth type is attached to outgoing requests.
func TestGetAuthenticatedClient(t *testing.T) {
	am := NewAuthenticationManagerFromConfig(ServicesConfig{
		Trello: TrelloConfig{APIKey: "trello-key", Token: "trello-token"},
		Slack:  SlackConfig{BotToken: "xoxb-1"},
		GitHub: GitHubConfig{Token: "ghp_1"},
	})

	tests := []struct {
		service string
		check   func(t *testing.T, r *http.Request)
	}{
		{
			service: ServiceTrello,
			check: func(t *testing.T, r *http.Request) {
				if got := r.URL.Query().Get("key"); got != "trello-key" {
					t.Errorf("expected key query param, got '%s'", got)
				}
				if got := r.URL.Query().Get("token"); got != "trello-token" {
					t.Errorf("expected token query param, got '%s'", got)
				}
				if got := r.URL.Query().Get("fields"); got != "name" {
					t.Errorf("expected existing query to survive, got '%s'", got)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("expected no Authorization header for query auth")
				}
			},
		},
		{
			service: ServiceSlack,
			check: func(t *testing.T, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer xoxb-1" {
					t.Errorf("expected bearer header, got '%s'", got)
				}
			},
		},
		{
			service: ServiceGitHub,
			check: func(t *testing.T, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "token ghp_1" {
					t.Errorf("expected token header, got '%s'", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client, err := am.GetAuthenticatedClient(tt.service)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			req, _ := http.NewRequest(http.MethodGet, server.URL+"/path?fields=name", nil)
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if req.Header.Get("Authorization") != "" || req.URL.Query().Get("token") != "" {
				t.Error("original request must not be modified")
			}
		})
	}
}

// TestGetAuthenticatedClient_UnknownService tests that unregistered services are rejected.
func TestGetAuthenticatedClient_UnknownService(t *testing.T) {
	am := NewAuthenticationManager(map[string]*Credentials{})

	if _, err := am.GetAuthenticatedClient("jira"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestAuthTypeString(t *testing.T) {
	tests := map[AuthType]string{
		QueryAuth:    "query",
		BearerAuth:   "bearer",
		TokenAuth:    "token",
		AuthType(99): "unknown",
	}
	for authType, want := range tests {
		if got := authType.String(); got != want {
			t.Errorf("expected '%s', got '%s'", want, got)
		}
	}
}
