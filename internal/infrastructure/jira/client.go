// Package jira exports approved intakes to Jira Cloud through the REST v3 API.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// APIError is a non-2xx answer from Jira.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API error: %d - %s", e.Status, strings.TrimSpace(e.Body))
}

// Temporary reports whether retrying may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IssueFields is the subset of issue fields the exporter sets.
type IssueFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description Node       `json:"description"`
	IssueType   IssueType  `json:"issuetype"`
	Labels      []string   `json:"labels,omitempty"`
	Parent      *IssueRef  `json:"parent,omitempty"`
}

type ProjectRef struct {
	Key string `json:"key"`
}

type IssueType struct {
	Name string `json:"name"`
}

type IssueRef struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Self string `json:"self,omitempty"`
}

// Client talks to one Jira Cloud site with basic auth (email + API token).
type Client struct {
	baseURL    string
	email      string
	token      string
	httpClient *http.Client
	retryCfg   retry.Config
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetry sets the attempt budget for transient failures (5xx, 429, transport).
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.retryCfg.MaxAttempts = attempts
		c.retryCfg.InitialDelay = initialDelay
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL, email, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		token:      token,
		httpClient: http.DefaultClient,
		retryCfg: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  200 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BrowseURL is the human link to an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// CreateIssue posts a new issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, fields IssueFields) (*IssueRef, error) {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal issue: %w", err)
	}

	var ref IssueRef
	if err := c.do(ctx, http.MethodPost, "/issue", body, &ref); err != nil {
		return nil, err
	}
	if ref.Key == "" {
		return nil, fmt.Errorf("jira returned no issue key")
	}
	return &ref, nil
}

type response struct {
	status int
	body   []byte
}

// do runs one API call under the timeout, retrying transient failures.
// Permanent 4xx answers are returned as a response, not an error, so the
// retryer stops at once.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	url := c.baseURL + "/rest/api/3" + endpoint
	c.logger.Debug("jira: request", "method", method, "url", url)

	r := retry.New[*response](c.retryCfg)
	t := timeout.New[*response](timeout.Config{DefaultTimeout: c.timeout})

	resp, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*response, error) {
		return r.Do(ctx, func(ctx context.Context) (*response, error) {
			res, err := c.send(ctx, method, url, body)
			if err != nil {
				return nil, err
			}
			if apiErr := toAPIError(res); apiErr != nil && apiErr.Temporary() {
				return nil, apiErr
			}
			return res, nil
		})
	})
	if err != nil {
		return err
	}
	if apiErr := toAPIError(resp); apiErr != nil {
		c.logger.Error("jira: request failed", "method", method, "url", url, "status", apiErr.Status)
		return apiErr
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode jira response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, body []byte) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return &response{status: res.StatusCode, body: data}, nil
}

func toAPIError(r *response) *APIError {
	if r.status >= 200 && r.status < 300 {
		return nil
	}
	return &APIError{Status: r.status, Body: string(r.body)}
}
