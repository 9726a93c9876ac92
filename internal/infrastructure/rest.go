package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"taskbridge-mcp-server/internal/domain"
)

// restClient issues one JSON request against a service and decodes the reply.
// Authentication is attached by the http.Client's transport.
type restClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

func newRESTClient(service, baseURL string, httpClient *http.Client, headers map[string]string) restClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return restClient{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		headers:    headers,
	}
}

// do executes method on path. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded response. Network failures and unparseable
// bodies become transport errors, non-2xx statuses become domain.HTTPError.
func (c restClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransportError("%s request failed: %v", c.service, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewTransportError("failed to read %s response: %v", c.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewHTTPError(c.service, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewTransportError("failed to decode %s response: %v", c.service, err)
	}
	return nil
}
