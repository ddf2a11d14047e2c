// Package poeditor is a small client for the POEditor API v2.
//
// Every API call is an HTTP POST of form values (api_token, id and
// call-specific fields). Responses share one envelope:
//
//	{
//	  "response": { "status": "success", "code": "200", "message": "OK" },
//	  "result":   { ... }
//	}
//
// Exports are downloaded separately with a plain GET of the URL returned by
// projects/export.
package poeditor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the POEditor API v2 endpoint.
const DefaultBaseURL = "https://api.poeditor.com/v2"

// ExportType is the export format requested from projects/export: a flat
// key/value object per language.
const ExportType = "key_value_json"

// Options configures a Client.
type Options struct {
	// Token is the POEditor API token.
	Token string
	// ProjectID is the POEditor project id.
	ProjectID string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout (0 = 60s).
	Timeout time.Duration
}

// Client talks to one POEditor project.
type Client struct {
	token     string
	projectID string
	baseURL   string
	http      *http.Client
}

// New returns a client for the project in opts.
func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		token:     opts.Token,
		projectID: opts.ProjectID,
		baseURL:   strings.TrimRight(base, "/"),
		http:      makeHTTPClient(opts.Proxy, timeout),
	}
}

// APIError is a failure reported by POEditor inside the response envelope.
type APIError struct {
	Action  string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("poeditor %s: %s (code %s)", e.Action, e.Message, e.Code)
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

type envelope struct {
	Response struct {
		Status  string `json:"status"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"response"`
	Result json.RawMessage `json:"result"`
}

// call POSTs an API action and decodes its result into out (if non-nil).
func (c *Client) call(ctx context.Context, action string, params url.Values, out any) error {
	form := url.Values{}
	form.Set("api_token", c.token)
	form.Set("id", c.projectID)
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	endpoint := c.baseURL + "/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("poeditor %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("poeditor %s: reading response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poeditor %s: API returned status %d: %s", action, resp.StatusCode, truncate(string(body), 300))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("poeditor %s: parsing response: %w", action, err)
	}
	if env.Response.Status != "success" {
		return &APIError{Action: action, Code: env.Response.Code, Message: env.Response.Message}
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("poeditor %s: parsing result: %w", action, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
