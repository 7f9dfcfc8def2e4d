package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Analysis endpoints exposed by the backend
const (
	EndpointContent       = "/analyze/content"
	EndpointSEO           = "/analyze/seo"
	EndpointPerformance   = "/analyze/performance"
	EndpointLighthouse    = "/analyze/lighthouse"
	EndpointAccessibility = "/analyze/accessibility"
	EndpointSecurity      = "/analyze/security"
	EndpointBroken        = "/analyze/broken"
	EndpointThemePlugin   = "/analyze/theme-plugin"
	EndpointUsers         = "/analyze/users"
	EndpointDownloadCSV   = "/download_csv"
	EndpointReports       = "/reports"
)

const maxResponseBody = 32 << 20

// TransportError is returned when the backend answers with a non-2xx status
// or with a body that is not JSON. RawBody keeps the response text.
type TransportError struct {
	Endpoint string
	Status   int
	RawBody  string
}

func (e *TransportError) Error() string {
	body := strings.TrimSpace(e.RawBody)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.Status >= 200 && e.Status < 300 {
		return fmt.Sprintf("%s: non-JSON response: %s", e.Endpoint, body)
	}
	if body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, body)
}

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration // per call, 0 means none
	RequestsPerSecond float64       // 0 means unlimited
	UserAgent         string
	HTTPClient        *http.Client
}

// Client issues requests to the analysis backend
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	userAgent string
}

// New creates a backend client
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL: %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient = &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "wpaudit/1.0"
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}, nil
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Call POSTs payload as JSON to endpoint and decodes the JSON response into out.
// The shape of out is trusted to match the endpoint; no schema validation is done.
func (c *Client) Call(ctx context.Context, endpoint string, payload any, out any) error {
	status, header, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	return decodeJSON(endpoint, status, header, body, out)
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	status, header, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return decodeJSON(endpoint, status, header, body, out)
}

// Delete issues a DELETE and decodes the JSON response into out when out is not nil.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	status, header, body, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return decodeJSON(endpoint, status, header, body, out)
}

// Download POSTs payload as JSON and returns the raw response body, for
// endpoints that stream files instead of JSON.
func (c *Client) Download(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	status, _, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{Endpoint: endpoint, Status: status, RawBody: string(body)}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (int, http.Header, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("%s: failed to encode request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%s: failed to read response: %w", endpoint, err)
	}
	return resp.StatusCode, resp.Header, data, nil
}

func (c *Client) resolve(endpoint string) string {
	return c.baseURL.JoinPath(endpoint).String()
}

// ReportsEndpoint builds /reports/{host}[/{filename}]
func ReportsEndpoint(host string, filename ...string) string {
	parts := append([]string{EndpointReports, url.PathEscape(host)}, filename...)
	for i := 2; i < len(parts); i++ {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

func decodeJSON(endpoint string, status int, header http.Header, body []byte, out any) error {
	if status < 200 || status > 299 {
		return &TransportError{Endpoint: endpoint, Status: status, RawBody: string(body)}
	}
	if !isJSON(header.Get("Content-Type")) {
		return &TransportError{Endpoint: endpoint, Status: status, RawBody: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
