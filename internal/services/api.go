// Raw HTTP access to the Reddit API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/compilations/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultAPIBase   = "https://oauth.reddit.com"
	defaultUserAgent = "compilations/1.0"

	// maxBodySize caps how much of any remote response body is read.
	maxBodySize = 4 << 20
)

// NewHTTPClient returns the client shared by every outbound call site.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// APIService performs token-authorized requests against the Reddit API.
//
// Requests are paced by an optional [rate.Limiter] and always carry the configured User-Agent.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service instance for the Reddit OAuth API.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		userAgent:  defaultUserAgent,
	}
}

// SetUserAgent replaces the User-Agent header sent with every request.
func (a *APIService) SetUserAgent(ua string) {
	if ua != "" {
		a.userAgent = ua
	}
}

// SetRateLimit paces requests to limit per second with the given burst. A limit <= 0 disables pacing.
func (a *APIService) SetRateLimit(limit float64, burst int) {
	if limit <= 0 {
		a.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	a.limiter = rate.NewLimiter(rate.Limit(limit), burst)
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UpstreamError is a non-success response from a remote server, kept whole so it can be forwarded unchanged.
type UpstreamError struct {
	Response *APIResponse
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%v: upstream status %d", shared.ErrAPIRequest, e.Response.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Get performs an authorized GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, token *oauth2.Token, path string, query url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return a.do(req, token)
}

// PostForm performs an authorized, form-encoded POST request and returns the raw response.
func (a *APIService) PostForm(ctx context.Context, token *oauth2.Token, path string, form url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.do(req, token)
}

func (a *APIService) do(req *http.Request, token *oauth2.Token) (*APIResponse, error) {
	if token == nil {
		return nil, shared.ErrNotAuthenticated
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	token.SetAuthHeader(req)
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return readAPIResponse(resp)
}

// readAPIResponse drains at most [maxBodySize] bytes of resp into an [APIResponse]. The caller closes the body.
func readAPIResponse(resp *http.Response) (*APIResponse, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// userAgentTransport sets a User-Agent on requests that do not carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("User-Agent") != "" {
		return base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return base.RoundTrip(r)
}
