package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport marks failures where no usable answer came back: the request
// could not be sent, the status was an error without an {erro} body, or the
// body was not valid JSON.
var ErrTransport = errors.New("backend transport failure")

// API defines the calls the monitor needs. *Client implements it.
type API interface {
	Submit(ctx context.Context, req AnalysisRequest) (*SubmitResponse, error)
	FetchStatus(ctx context.Context, processID string) (*StatusResponse, error)
}

var _ API = (*Client)(nil)

// Client talks to the analysis backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultAPIBind   = "127.0.0.1:5000"
	defaultUserAgent = "prodwatch/0.1"
	requestTimeout   = 5 * time.Second
	maxBodyBytes     = 1 << 20
)

// NewClient builds a Client for the given host:port or base URL.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HostPort returns the TCP address the backend listens on, filling in the
// scheme's default port when none is given.
func (c *Client) HostPort() string {
	if port := c.baseURL.Port(); port != "" {
		return c.baseURL.Host
	}
	port := "80"
	if c.baseURL.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(c.baseURL.Hostname(), port)
}

// Submit creates an analysis job for req.URL.
func (c *Client) Submit(ctx context.Context, req AnalysisRequest) (*SubmitResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var payload SubmitResponse
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/registro"}, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchStatus retrieves the progress of a submitted process.
func (c *Client) FetchStatus(ctx context.Context, processID string) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id := strings.TrimSpace(processID)
	if id == "" {
		return nil, fmt.Errorf("process id required")
	}
	rel := &url.URL{Path: "/status/" + id, RawPath: "/status/" + url.PathEscape(id)}
	var payload StatusResponse
	if err := c.do(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Ping calls the root route; a nil error means the backend is serving.
func (c *Client) Ping(ctx context.Context) (*HelloResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload HelloResponse
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/"}, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body []byte, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: execute request: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		// The backend answers unknown ids and refused jobs with an {erro}
		// body; those are answers, not transport failures.
		var envelope ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && strings.TrimSpace(envelope.Error) != "" && dest != nil {
			return decode(raw, dest)
		}
		return fmt.Errorf("%w: api %s returned status %d", ErrTransport, rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return decode(raw, dest)
}

func decode(raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = DefaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
