package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// Service identifiers used for credentials, logging and tool prefixes.
const (
	ServiceTrello = "trello"
	ServiceSlack  = "slack"
	ServiceGitHub = "github"
)

// AuthType defines how credentials are attached to outgoing requests.
type AuthType int

const (
	// QueryAuth appends key and token as query-string parameters (Trello).
	QueryAuth AuthType = iota
	// BearerAuth sends "Authorization: Bearer <token>" (Slack).
	BearerAuth
	// TokenAuth sends "Authorization: token <token>" (GitHub).
	TokenAuth
)

// String returns the string representation of AuthType.
func (a AuthType) String() string {
	switch a {
	case QueryAuth:
		return "query"
	case BearerAuth:
		return "bearer"
	case TokenAuth:
		return "token"
	default:
		return "unknown"
	}
}

// Credentials stores the opaque secrets of one service together with the
// environment variable names that supply them, so a missing value can be
// reported by name.
type Credentials struct {
	Type     AuthType
	Key      string // query auth only
	Token    string
	KeyVar   string
	TokenVar string
}

// missing returns the environment variables whose values are empty.
func (c *Credentials) missing() []string {
	var names []string
	if c.Type == QueryAuth && c.Key == "" {
		names = append(names, c.KeyVar)
	}
	if c.Token == "" {
		names = append(names, c.TokenVar)
	}
	return names
}

// AuthenticationManager holds the credentials of every integrated service
// and hands out HTTP clients that attach them.
type AuthenticationManager struct {
	credentials map[string]*Credentials
}

// NewAuthenticationManager creates a new authentication manager keyed by service name.
func NewAuthenticationManager(credentials map[string]*Credentials) *AuthenticationManager {
	return &AuthenticationManager{
		credentials: credentials,
	}
}

// NewAuthenticationManagerFromConfig builds the credentials of all three services.
// Services with empty credentials are still registered; ValidateCredentials
// reports them when a tool needs them.
func NewAuthenticationManagerFromConfig(services ServicesConfig) *AuthenticationManager {
	return NewAuthenticationManager(map[string]*Credentials{
		ServiceTrello: {
			Type:     QueryAuth,
			Key:      services.Trello.APIKey,
			Token:    services.Trello.Token,
			KeyVar:   EnvTrelloAPIKey,
			TokenVar: EnvTrelloToken,
		},
		ServiceSlack: {
			Type:     BearerAuth,
			Token:    services.Slack.BotToken,
			TokenVar: EnvSlackBotToken,
		},
		ServiceGitHub: {
			Type:     TokenAuth,
			Token:    services.GitHub.Token,
			TokenVar: EnvGitHubToken,
		},
	})
}

// ValidateCredentials returns a configuration error when the service has no
// credentials or some of them are empty. Tools call this before any network
// request.
func (am *AuthenticationManager) ValidateCredentials(service string) error {
	creds, ok := am.credentials[service]
	if !ok {
		return NewConfigurationError("no credentials configured for service: %s", service)
	}

	if missing := creds.missing(); len(missing) > 0 {
		return NewConfigurationError("%s credentials are not configured (missing %s)",
			serviceTitle(service), strings.Join(missing, ", "))
	}

	return nil
}

// GetAuthenticatedClient returns an HTTP client that attaches the service's
// credentials to every request. The client is returned even when credentials
// are incomplete; ValidateCredentials is the gate.
func (am *AuthenticationManager) GetAuthenticatedClient(service string) (*http.Client, error) {
	creds, ok := am.credentials[service]
	if !ok {
		return nil, fmt.Errorf("no credentials configured for service: %s", service)
	}

	return &http.Client{
		Transport: &authenticatedTransport{
			base:        http.DefaultTransport,
			credentials: creds,
		},
	}, nil
}

// authenticatedTransport is an http.RoundTripper that adds authentication to requests.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	switch t.credentials.Type {
	case QueryAuth:
		query := clonedReq.URL.Query()
		query.Set("key", t.credentials.Key)
		query.Set("token", t.credentials.Token)
		clonedReq.URL.RawQuery = query.Encode()
	case BearerAuth:
		clonedReq.Header.Set("Authorization", "Bearer "+t.credentials.Token)
	case TokenAuth:
		clonedReq.Header.Set("Authorization", "token "+t.credentials.Token)
	}

	return t.base.RoundTrip(clonedReq)
}

func serviceTitle(service string) string {
	switch service {
	case ServiceTrello:
		return "Trello"
	case ServiceSlack:
		return "Slack"
	case ServiceGitHub:
		return "GitHub"
	default:
		return service
	}
}
